// Command desktop-notify is a layout hook that raises a desktop
// notification through notify-send on Linux or AppleScript on macOS.
//
// Build it into the hook directory next to hook.yaml:
//
//	go build -o ~/.atomesh/hooks/desktop-notify/desktop-notify ./hooks/desktop-notify
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Event mirrors the payload atomesh writes to stdin.
type Event struct {
	Command    string `json:"command"`
	Source     string `json:"source"`
	Status     string `json:"status"`
	Contracted bool   `json:"contracted"`
}

// Response is written to stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

var titles = map[string]string{
	"contract": "Mesh contracted",
	"expand":   "Mesh expanded",
}

func main() {
	var ev Event
	if err := json.NewDecoder(os.Stdin).Decode(&ev); err != nil {
		respond(fmt.Errorf("decode event: %w", err))
		return
	}

	title, ok := titles[ev.Command]
	if !ok {
		respond(fmt.Errorf("unknown command: %s", ev.Command))
		return
	}

	respond(notify(title, fmt.Sprintf("%s (%s)", ev.Status, ev.Source)))
}

func notify(title, body string) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		return exec.Command("osascript", "-e", script).Run()
	case "linux":
		return exec.Command("notify-send", "--app-name=atomesh", title, body).Run()
	default:
		return fmt.Errorf("notifications not supported on %s", runtime.GOOS)
	}
}

func respond(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
