package capture

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
)

// Acquisition failures, fatal to the landmark pipeline.
var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrDeviceBusy       = errors.New("camera busy or disconnected")
	ErrDeviceNotFound   = errors.New("camera device not found")
)

// Category groups acquisition failures by what the user must fix.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryPermission
	CategoryBusy
	CategoryNotFound
)

func (c Category) String() string {
	switch c {
	case CategoryPermission:
		return "permission"
	case CategoryBusy:
		return "busy"
	case CategoryNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Classify maps an acquisition error to its category.
func Classify(err error) Category {
	switch {
	case err == nil:
		return CategoryUnknown
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, os.ErrPermission):
		return CategoryPermission
	case errors.Is(err, ErrDeviceBusy), errors.Is(err, syscall.EBUSY):
		return CategoryBusy
	case errors.Is(err, ErrDeviceNotFound), errors.Is(err, os.ErrNotExist), errors.Is(err, syscall.ENODEV):
		return CategoryNotFound
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission"), strings.Contains(msg, "not authorized"):
		return CategoryPermission
	case strings.Contains(msg, "busy"), strings.Contains(msg, "in use"):
		return CategoryBusy
	case strings.Contains(msg, "no such device"), strings.Contains(msg, "not found"):
		return CategoryNotFound
	}
	return CategoryUnknown
}

// Message is the user-facing status line for an acquisition failure.
// The user has to fix the environment and restart; nothing is retried.
func Message(err error) string {
	switch Classify(err) {
	case CategoryPermission:
		return "❌ Error: allow this program to use the camera."
	case CategoryBusy:
		return "❌ Error: the camera is in use by another program or disconnected."
	case CategoryNotFound:
		return "❌ Error: no camera device found."
	default:
		return fmt.Sprintf("❌ Error: cannot start the camera. (%v)", err)
	}
}
