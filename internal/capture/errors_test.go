package capture

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"syscall"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, CategoryUnknown},
		{"wrapped permission", fmt.Errorf("/dev/video0: %w", ErrPermissionDenied), CategoryPermission},
		{"os permission", &fs.PathError{Op: "open", Path: "/dev/video0", Err: os.ErrPermission}, CategoryPermission},
		{"wrapped busy", fmt.Errorf("open camera 0: %w", ErrDeviceBusy), CategoryBusy},
		{"errno busy", &fs.PathError{Op: "open", Path: "/dev/video0", Err: syscall.EBUSY}, CategoryBusy},
		{"wrapped missing", fmt.Errorf("/dev/video3: %w", ErrDeviceNotFound), CategoryNotFound},
		{"errno no device", syscall.ENODEV, CategoryNotFound},
		{"message permission", errors.New("Permission denied by system policy"), CategoryPermission},
		{"message in use", errors.New("device is in use"), CategoryBusy},
		{"message not found", errors.New("camera not found"), CategoryNotFound},
		{"other", errors.New("codec exploded"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	seen := make(map[string]bool)
	for _, err := range []error{ErrPermissionDenied, ErrDeviceBusy, ErrDeviceNotFound} {
		msg := Message(err)
		if seen[msg] {
			t.Errorf("duplicate message for %v: %q", err, msg)
		}
		seen[msg] = true
	}

	generic := Message(errors.New("codec exploded"))
	if !strings.Contains(generic, "codec exploded") {
		t.Errorf("generic message should carry the cause, got %q", generic)
	}
}
