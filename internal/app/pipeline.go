package app

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/atomesh/internal/capture"
	"github.com/ayusman/atomesh/internal/detector"
	"github.com/ayusman/atomesh/internal/gesture"
	"github.com/ayusman/atomesh/internal/hook"
)

// maxDetectionReuse bounds how long a still camera may skip the detector.
const maxDetectionReuse = time.Second

// runPipeline is the landmark loop: read a frame, detect hands, draw the
// preview and feed the result to the session at the inference rate. Losing
// the camera ends the loop; the animation keeps running with the failure
// as its status.
func (a *App) runPipeline(stop <-chan struct{}) {
	defer a.wg.Done()

	ticker := time.NewTicker(interval(a.settings.InferenceFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			err := a.processFrame(now)
			switch {
			case errors.Is(err, capture.ErrDeviceBusy):
				a.session.Fail(err)
				log.Printf("Camera lost: %v", err)
				return
			case err != nil:
				log.Printf("Error processing frame: %v", err)
			}
		}
	}
}

// processFrame runs one landmark step. Read and detection errors skip the
// frame; the session keeps its previous signal.
func (a *App) processFrame(now time.Time) error {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	if !a.IsEnabled() {
		a.detected = false
		a.session.OnResults(nil, now)
		return nil
	}

	hands, err := a.detect(frame, now)
	if err != nil {
		return fmt.Errorf("detect hands: %w", err)
	}

	if a.settings.Preview {
		if len(hands) > 0 {
			capture.DrawHand(frame, hands[0])
		}
		jpeg, err := capture.EncodeJPEG(frame)
		if err != nil {
			log.Printf("Error encoding preview: %v", err)
		} else {
			a.setPreview(jpeg)
		}
	}

	if cmd := a.session.OnResults(hands, now); cmd != gesture.CommandNone {
		log.Printf("Gesture triggered: %s", cmd)
		a.notify(cmd, hook.SourceGesture, now)
	}
	return nil
}

// detect runs the detector, or reuses its last answer while the motion gate
// sees a still frame.
func (a *App) detect(frame *gocv.Mat, now time.Time) ([]detector.HandLandmarks, error) {
	if a.gate != nil {
		moved, _ := a.gate.Changed(frame)
		if !moved && a.detected && now.Sub(a.lastDetect) < maxDetectionReuse {
			return a.lastHands, nil
		}
	}

	hands, err := a.Detector().Detect(frame)
	if err != nil {
		a.detected = false
		return nil, err
	}
	a.lastHands, a.lastDetect, a.detected = hands, now, true
	return hands, nil
}

// runAnimation is the render loop: advance the session and fan the frame
// out to subscribers at the render rate.
func (a *App) runAnimation(stop <-chan struct{}) {
	defer a.wg.Done()

	ticker := time.NewTicker(interval(a.settings.RenderFPS))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			a.tick(now)
		}
	}
}

func (a *App) tick(now time.Time) Frame {
	var f Frame
	a.session.Tick(now, &f)

	a.frameMu.Lock()
	a.latest = f
	a.frameMu.Unlock()

	a.publish(f)
	return f
}
