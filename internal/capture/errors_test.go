package capture

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sys/unix"
)

func TestClassifyErrno(t *testing.T) {
	tests := []struct {
		errno unix.Errno
		want  FailureKind
	}{
		{unix.EACCES, FailurePermissionDenied},
		{unix.EPERM, FailurePermissionDenied},
		{unix.EBUSY, FailureDeviceBusy},
		{unix.ENOENT, FailureDeviceRemoved},
		{unix.ENODEV, FailureDeviceRemoved},
		{unix.EINVAL, FailureUnsupportedConstraints},
		{unix.EIO, FailureUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.want.String(), func(t *testing.T) {
			wrapped := fmt.Errorf("open /dev/video0: %w", tc.errno)
			if got := Classify(wrapped); got != tc.want {
				t.Fatalf("Classify(%v) = %s, want %s", tc.errno, got, tc.want)
			}
		})
	}
}

func TestClassifyPreservesExistingKind(t *testing.T) {
	inner := &Error{Kind: FailureDeviceBusy, Device: "/dev/video0", Err: errors.New("busy")}
	wrapped := fmt.Errorf("start session: %w", inner)
	if got := Classify(wrapped); got != FailureDeviceBusy {
		t.Fatalf("expected busy classification through wrapping, got %s", got)
	}
}

func TestNewErrorDoesNotReclassify(t *testing.T) {
	original := &Error{Kind: FailurePermissionDenied, Err: errors.New("denied")}
	rewrapped := newError(FailureUnknown, "/dev/video1", original)
	if rewrapped.Kind != FailurePermissionDenied {
		t.Fatalf("expected original kind preserved, got %s", rewrapped.Kind)
	}
}

func TestRemediationDistinctPerKind(t *testing.T) {
	kinds := []FailureKind{
		FailurePermissionDenied,
		FailureNoDevice,
		FailureDeviceBusy,
		FailureDeviceRemoved,
		FailureUnsupportedConstraints,
		FailureUnknown,
	}
	seen := make(map[string]FailureKind, len(kinds))
	for _, kind := range kinds {
		message := Remediation(kind)
		if message == "" {
			t.Fatalf("empty remediation for %s", kind)
		}
		if prior, ok := seen[message]; ok {
			t.Fatalf("kinds %s and %s share a remediation message", prior, kind)
		}
		seen[message] = kind
	}
}
