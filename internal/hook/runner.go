package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// ErrTimeout is returned when a hook outlives the runner's timeout.
var ErrTimeout = errors.New("hook timed out")

// Runner executes one hook at a time with a deadline.
type Runner struct {
	timeout time.Duration
}

// NewRunner creates a Runner. A non-positive timeout disables the deadline.
func NewRunner(timeout time.Duration) *Runner {
	return &Runner{timeout: timeout}
}

// Run sends ev to the hook on stdin. A hook that exits zero without output
// succeeded; otherwise stdout must hold a Response.
func (r *Runner) Run(ctx context.Context, h *Hook, ev Event) (*Response, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	cmd := exec.CommandContext(ctx, h.Executable)
	cmd.Dir = h.Dir
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children of a killed script can hold the output pipes open.
	cmd.WaitDelay = time.Second

	err = cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%s: %w after %v", h.Manifest.Name, ErrTimeout, r.timeout)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", h.Manifest.Name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", h.Manifest.Name, err)
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return &Response{Success: true}, nil
	}
	var resp Response
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("%s: parse response: %w", h.Manifest.Name, err)
	}
	return &resp, nil
}

// Dispatcher fans events out to subscribed hooks in the background so the
// landmark pipeline never waits on them.
type Dispatcher struct {
	manager *Manager
	runner  *Runner
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher over the hooks m has discovered.
func NewDispatcher(m *Manager, r *Runner) *Dispatcher {
	return &Dispatcher{manager: m, runner: r}
}

// Notify starts every hook subscribed to ev.Command and returns how many
// were started. Failures are logged.
func (d *Dispatcher) Notify(ev Event) int {
	hooks := d.manager.For(ev.Command)
	for _, h := range hooks {
		d.wg.Add(1)
		go func(h *Hook) {
			defer d.wg.Done()
			resp, err := d.runner.Run(context.Background(), h, ev)
			switch {
			case err != nil:
				log.Printf("Hook %s failed: %v", h.Manifest.Name, err)
			case !resp.Success:
				log.Printf("Hook %s reported failure: %s", h.Manifest.Name, resp.Error)
			}
		}(h)
	}
	return len(hooks)
}

// Wait blocks until every started hook has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
