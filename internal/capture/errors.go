package capture

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// FailureKind classifies why a capture operation failed. Each kind maps to a
// distinct remediation message so the CLI never shows a generic error for a
// fixable problem.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailurePermissionDenied
	FailureNoDevice
	FailureDeviceBusy
	FailureDeviceRemoved
	FailureUnsupportedConstraints
)

func (k FailureKind) String() string {
	switch k {
	case FailurePermissionDenied:
		return "permission_denied"
	case FailureNoDevice:
		return "no_device"
	case FailureDeviceBusy:
		return "device_busy"
	case FailureDeviceRemoved:
		return "device_removed"
	case FailureUnsupportedConstraints:
		return "unsupported_constraints"
	default:
		return "unknown"
	}
}

// Error carries a failure classification alongside the underlying cause.
type Error struct {
	Kind   FailureKind
	Device string
	Err    error
}

func (e *Error) Error() string {
	if e.Device != "" {
		return fmt.Sprintf("capture %s: %s: %v", e.Device, e.Kind, e.Err)
	}
	return fmt.Sprintf("capture: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// newError wraps err with a kind, preserving an existing classification.
func newError(kind FailureKind, device string, err error) *Error {
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}
	return &Error{Kind: kind, Device: device, Err: err}
}

// Classify extracts the failure kind from err, falling back to errno
// inspection for raw device errors.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}
	var captureErr *Error
	if errors.As(err, &captureErr) {
		return captureErr.Kind
	}
	return classifyErrno(err)
}

func classifyErrno(err error) FailureKind {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return FailureUnknown
	}
	switch errno {
	case unix.EACCES, unix.EPERM:
		return FailurePermissionDenied
	case unix.EBUSY:
		return FailureDeviceBusy
	case unix.ENOENT, unix.ENODEV, unix.ENXIO:
		return FailureDeviceRemoved
	case unix.EINVAL:
		return FailureUnsupportedConstraints
	default:
		return FailureUnknown
	}
}

// Remediation returns the user-facing guidance for a failure kind.
func Remediation(kind FailureKind) string {
	switch kind {
	case FailurePermissionDenied:
		return "Camera access denied. Grant your user permission to the video device (usually the 'video' group) and retry."
	case FailureNoDevice:
		return "No camera found. Connect a camera and retry."
	case FailureDeviceBusy:
		return "The camera is in use by another application. Close it and retry."
	case FailureDeviceRemoved:
		return "The camera was disconnected. Reconnect it and retry."
	case FailureUnsupportedConstraints:
		return "The camera does not support the requested capture settings. Adjust the scanner configuration and retry."
	default:
		return "Camera error. Retry, or enter the code manually."
	}
}
