package workflow

import (
	"strings"

	"shelfscan/internal/catalog"
)

// FieldError reports one invalid field on a record up for confirmation.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError aggregates every invalid field so the CLI can show all
// problems at once instead of one per attempt.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		messages = append(messages, field.Error())
	}
	return "invalid record: " + strings.Join(messages, "; ")
}

// Validate checks the fields a record needs before it can be confirmed:
// a title, a scan code, and at least one non-empty cast member.
func Validate(record *catalog.Record) error {
	var fields []FieldError

	if record == nil {
		return &ValidationError{Fields: []FieldError{{Field: "record", Message: "missing"}}}
	}
	if strings.TrimSpace(record.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Message: "required"})
	}
	if strings.TrimSpace(record.ScanCode) == "" {
		fields = append(fields, FieldError{Field: "scan_code", Message: "required"})
	}
	if !hasCast(record.Cast) {
		fields = append(fields, FieldError{Field: "cast", Message: "at least one cast member required"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func hasCast(cast []string) bool {
	for _, member := range cast {
		if strings.TrimSpace(member) != "" {
			return true
		}
	}
	return false
}
