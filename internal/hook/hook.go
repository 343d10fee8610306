// Package hook runs external executables when the mesh changes layout.
//
// A hook lives in its own subdirectory of the hook directory and is
// described by a hook.yaml manifest. On every contract or expand command
// the executable receives the Event as JSON on stdin and may answer with a
// Response on stdout.
package hook

import "time"

// ManifestFile is the manifest name looked up in each hook directory.
const ManifestFile = "hook.yaml"

// Manifest describes a hook and the commands it wants to hear about.
type Manifest struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Executable  string   `yaml:"executable"`
	Events      []string `yaml:"events"`
}

// Event is sent to a hook when a layout command fires.
type Event struct {
	Command    string    `json:"command"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	Contracted bool      `json:"contracted"`
	SessionID  string    `json:"session_id"`
	Time       time.Time `json:"time"`
}

// Event sources.
const (
	SourceGesture = "gesture"
	SourceRequest = "request"
)

// Response is the optional reply a hook writes to stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Hook is a discovered hook with its resolved location.
type Hook struct {
	Manifest   Manifest
	Dir        string
	Executable string
}

// Wants reports whether the hook subscribed to command. A manifest without
// events receives every command.
func (h *Hook) Wants(command string) bool {
	if len(h.Manifest.Events) == 0 {
		return true
	}
	for _, e := range h.Manifest.Events {
		if e == command {
			return true
		}
	}
	return false
}
