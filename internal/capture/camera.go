// Package capture provides camera capture and preview drawing using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"gocv.io/x/gocv"
)

const (
	DefaultFPS    = 15
	DefaultWidth  = 640
	DefaultHeight = 480

	// MaxReadFailures consecutive failed reads mean the device went away.
	MaxReadFailures = 30
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Camera is a source of BGR frames.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame; the caller closes it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// DeviceConfig selects and sizes a capture device. Zero fields take the defaults.
type DeviceConfig struct {
	ID     int
	Width  int
	Height int
	FPS    int
}

func (c DeviceConfig) withDefaults() DeviceConfig {
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	return c
}

// Device captures from a local camera through OpenCV.
type Device struct {
	mu       sync.Mutex
	cfg      DeviceConfig
	vc       *gocv.VideoCapture
	failures int
}

// NewCamera creates a closed Device.
func NewCamera(cfg DeviceConfig) *Device {
	return &Device{cfg: cfg.withDefaults()}
}

// Open starts capture. Failures wrap ErrPermissionDenied, ErrDeviceNotFound
// or ErrDeviceBusy where the cause can be told apart.
func (d *Device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc != nil {
		return nil
	}
	if err := probe(d.cfg.ID); err != nil {
		return err
	}

	vc, err := gocv.OpenVideoCapture(d.cfg.ID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", d.cfg.ID, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("open camera %d: %w", d.cfg.ID, ErrDeviceBusy)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(d.cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(d.cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(d.cfg.FPS))

	d.vc = vc
	d.failures = 0
	return nil
}

// probe checks the V4L2 node on Linux, where OpenCV reports every failure
// the same way.
func probe(id int) error {
	if runtime.GOOS != "linux" {
		return nil
	}

	node := fmt.Sprintf("/dev/video%d", id)
	f, err := os.Open(node)
	switch {
	case err == nil:
		return f.Close()
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%s: %w", node, ErrDeviceNotFound)
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%s: %w", node, ErrPermissionDenied)
	default:
		return fmt.Errorf("%s: %w", node, err)
	}
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc == nil {
		return nil
	}
	err := d.vc.Close()
	d.vc = nil
	return err
}

// ReadFrame grabs the next frame. After MaxReadFailures consecutive empty
// reads the error wraps ErrDeviceBusy: the camera was unplugged or taken.
func (d *Device) ReadFrame() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.vc == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if d.vc.Read(&mat) && !mat.Empty() {
		d.failures = 0
		return &mat, nil
	}
	mat.Close()

	d.failures++
	if d.failures >= MaxReadFailures {
		return nil, fmt.Errorf("camera %d: %d empty reads: %w", d.cfg.ID, d.failures, ErrDeviceBusy)
	}
	return nil, fmt.Errorf("camera %d: empty frame", d.cfg.ID)
}

// SetFPS changes the requested capture rate. Non-positive values are ignored.
func (d *Device) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.cfg.FPS = fps
	if d.vc != nil {
		d.vc.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (d *Device) FPS() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg.FPS
}

func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.vc != nil
}

// Config returns the device settings in effect.
func (d *Device) Config() DeviceConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}
