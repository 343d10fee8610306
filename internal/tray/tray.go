// Package tray provides a system tray menu for the atomic mesh.
package tray

import (
	"context"
	"sync"

	"github.com/getlantern/systray"
)

// Handlers are the actions behind the menu items. Nil handlers are skipped.
type Handlers struct {
	Toggle func(enabled bool)
	Layout func(contract bool)
	Viewer func()
	Quit   func()
}

// Tray is the menu bar item: tracking toggle, live status, a contract or
// expand item offering the opposite layout, viewer link and quit.
type Tray struct {
	h Handlers

	mu         sync.Mutex
	enabled    bool
	contracted bool
	status     string

	toggle *systray.MenuItem
	line   *systray.MenuItem
	layout *systray.MenuItem
}

func New(h Handlers) *Tray {
	return &Tray{h: h, enabled: true, status: "Status: starting"}
}

// Run shows the menu and blocks until Quit is chosen or ctx is done. It
// must be called from the main goroutine.
func (t *Tray) Run(ctx context.Context) {
	stop := context.AfterFunc(ctx, systray.Quit)
	defer stop()
	systray.Run(t.build, nil)
}

func (t *Tray) build() {
	systray.SetTitle("Atomesh")
	systray.SetTooltip("Atomic mesh hand tracking")

	t.mu.Lock()
	t.toggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume hand tracking")
	systray.AddSeparator()
	t.line = systray.AddMenuItem(t.status, "Gesture status")
	t.line.Disable()
	t.layout = systray.AddMenuItem(layoutTitle(t.contracted), "Contract or expand the mesh")
	t.mu.Unlock()

	systray.AddSeparator()
	viewer := systray.AddMenuItem("Open Viewer...", "Open the viewer in a browser")
	quit := systray.AddMenuItem("Quit", "Quit Atomesh")

	go func() {
		for {
			select {
			case <-t.toggle.ClickedCh:
				t.flipTracking()
			case <-t.layout.ClickedCh:
				t.requestLayout()
			case <-viewer.ClickedCh:
				call(t.h.Viewer)
			case <-quit.ClickedCh:
				call(t.h.Quit)
				systray.Quit()
				return
			}
		}
	}()
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}

func layoutTitle(contracted bool) string {
	if contracted {
		return "Expand"
	}
	return "Contract"
}

func (t *Tray) flipTracking() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.toggle != nil {
		t.toggle.SetTitle(toggleTitle(enabled))
	}
	t.mu.Unlock()

	if t.h.Toggle != nil {
		t.h.Toggle(enabled)
	}
}

func (t *Tray) requestLayout() {
	t.mu.Lock()
	contract := !t.contracted
	t.mu.Unlock()

	if t.h.Layout != nil {
		t.h.Layout(contract)
	}
}

// SetStatus shows the latest status text and layout.
func (t *Tray) SetStatus(status string, contracted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status, t.contracted = status, contracted
	if t.line != nil {
		t.line.SetTitle(status)
	}
	if t.layout != nil {
		t.layout.SetTitle(layoutTitle(contracted))
	}
}

func (t *Tray) IsEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Contracted returns the layout last reported through SetStatus.
func (t *Tray) Contracted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.contracted
}
