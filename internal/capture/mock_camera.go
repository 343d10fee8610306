package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// ErrEndOfFrames is returned by a non-looping MockCamera after its last frame.
var ErrEndOfFrames = errors.New("no more frames")

// MockCamera plays back fixed frames. It stands in for the device in tests
// and in keyboard simulation, where landmarks come from a MockDetector.
type MockCamera struct {
	mu      sync.Mutex
	frames  []*gocv.Mat
	next    int
	loop    bool
	open    bool
	reads   int
	openErr error
	readErr error
}

func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	return &MockCamera{frames: frames, loop: loop}
}

// NewBlankCamera loops a single black DefaultWidth x DefaultHeight frame.
func NewBlankCamera() *MockCamera {
	blank := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	return NewMockCamera([]*gocv.Mat{&blank}, true)
}

// SetOpenError makes Open fail with err.
func (c *MockCamera) SetOpenError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openErr = err
}

// SetReadError makes every following ReadFrame fail with err; nil restores playback.
func (c *MockCamera) SetReadError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readErr = err
}

// Reads returns how many frames have been handed out.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.openErr != nil {
		return c.openErr
	}
	c.open = true
	c.next = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	return nil
}

// ReadFrame returns a clone of the next frame.
func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case !c.open:
		return nil, ErrCameraNotOpen
	case c.readErr != nil:
		return nil, c.readErr
	case len(c.frames) == 0:
		return nil, ErrEndOfFrames
	}

	if c.next == len(c.frames) {
		if !c.loop {
			return nil, ErrEndOfFrames
		}
		c.next = 0
	}

	frame := c.frames[c.next].Clone()
	c.next++
	c.reads++
	return &frame, nil
}

func (c *MockCamera) SetFPS(int) {}

func (c *MockCamera) FPS() int { return DefaultFPS }

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}
