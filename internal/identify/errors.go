package identify

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers distinguishing why a resolution failed. Callers that only
// care about success vs failure can ignore them; the CLI uses Reason for the
// message shown before manual entry.
var (
	ErrNotFound  = errors.New("not found")
	ErrTransport = errors.New("transport failure")
	ErrUpstream  = errors.New("upstream error")
)

// wrap tags an error with a classification marker and operation context.
func wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrUpstream
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Reason produces the human-readable explanation shown to the user when
// resolution fails and manual entry takes over.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "No movie found for this code. Enter the details manually."
	case errors.Is(err, ErrTransport):
		return "Could not reach the movie database. Enter the details manually."
	default:
		return "Movie lookup failed. Enter the details manually."
	}
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "resolution failure"
	}
	return strings.Join(parts, ": ")
}
