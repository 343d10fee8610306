package detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const (
	// ServiceScript is the MediaPipe Hands wrapper the detector runs.
	ServiceScript = "hand_service.py"

	// IdleShutdown stops the service after this long without frames.
	IdleShutdown = 30 * time.Second
)

// ErrServiceNotFound is returned when the landmark service script cannot be located.
var ErrServiceNotFound = errors.New(ServiceScript + " not found")

// MediaPipeDetector runs MediaPipe Hands in a Python subprocess. The process
// starts on the first frame, restarts after a broken exchange and exits
// when idle.
type MediaPipeDetector struct {
	mu     sync.Mutex
	config Config
	svc    *service
	idle   *time.Timer
}

// NewMediaPipeDetector locates the service script and interpreter. It does
// not start the process.
func NewMediaPipeDetector(cfg Config) (*MediaPipeDetector, error) {
	script := cfg.Script
	if script == "" {
		script = firstExisting(searchPaths(filepath.Join("scripts", ServiceScript)))
	}
	if script == "" {
		return nil, ErrServiceNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceNotFound, err)
	}

	python := cfg.Python
	if python == "" {
		python = firstExisting(searchPaths(filepath.Join("venv", "bin", "python")))
	}
	if python == "" {
		python = "python3"
	}

	return &MediaPipeDetector{
		config: cfg,
		svc: newService(python, script,
			"--max-hands", strconv.Itoa(cfg.MaxHands),
			"--min-detection-confidence", strconv.FormatFloat(cfg.MinConfidence, 'f', -1, 64),
			"--min-tracking-confidence", strconv.FormatFloat(cfg.MinTrackingConf, 'f', -1, 64),
		),
	}, nil
}

// Detect returns the hands in frame, at most MaxHands of them.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.svc.running() {
		if err := d.svc.start(); err != nil {
			return nil, err
		}
		log.Printf("Landmark service started (%s)", d.svc.argv[1])
	}

	line, err := d.svc.exchange(buf.GetBytes())
	if err != nil {
		return nil, err
	}
	d.touch()

	return parseResponse(line, d.config)
}

// touch rearms the idle shutdown. Callers hold d.mu.
func (d *MediaPipeDetector) touch() {
	if d.idle != nil {
		d.idle.Reset(IdleShutdown)
		return
	}
	d.idle = time.AfterFunc(IdleShutdown, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.svc.running() {
			d.svc.stop()
			log.Println("Landmark service stopped (idle)")
		}
	})
}

func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.idle != nil {
		d.idle.Stop()
		d.idle = nil
	}
	return d.svc.stop()
}

type response struct {
	Hands []struct {
		Points     []Point3D `json:"points"`
		Handedness string    `json:"handedness"`
		Score      float64   `json:"score"`
	} `json:"hands"`
}

// parseResponse decodes one service line, keeping at most cfg.MaxHands hands.
func parseResponse(line []byte, cfg Config) ([]HandLandmarks, error) {
	var resp response
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse landmarks: %w", err)
	}

	hands := resp.Hands
	if cfg.MaxHands > 0 && len(hands) > cfg.MaxHands {
		hands = hands[:cfg.MaxHands]
	}

	out := make([]HandLandmarks, len(hands))
	for i, h := range hands {
		out[i] = HandLandmarks{Points: h.Points, Handedness: h.Handedness, Score: h.Score}
	}
	return out, nil
}

// searchPaths lists where rel is looked for: the working directory and its
// parents, next to the executable, then ~/.atomesh.
func searchPaths(rel string) []string {
	paths := []string{rel, filepath.Join("..", rel), filepath.Join("..", "..", rel)}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), rel))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".atomesh", rel))
	}
	return paths
}

// firstExisting returns the absolute path of the first existing candidate, or "".
func firstExisting(candidates []string) string {
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	return ""
}
