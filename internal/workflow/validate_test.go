package workflow

import (
	"errors"
	"strings"
	"testing"

	"shelfscan/internal/catalog"
)

func validRecord() *catalog.Record {
	return &catalog.Record{
		Title:    "Avatar",
		ScanCode: "024543273738",
		Cast:     []string{"Sam Worthington"},
	}
}

func TestValidateAcceptsCompleteRecord(t *testing.T) {
	if err := Validate(validRecord()); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateCollectsAllFieldErrors(t *testing.T) {
	err := Validate(&catalog.Record{Cast: []string{"  ", ""}})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(validationErr.Fields) != 3 {
		t.Fatalf("expected 3 field errors, got %d: %v", len(validationErr.Fields), validationErr)
	}
	for _, field := range []string{"title", "scan_code", "cast"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("missing %s in %q", field, err.Error())
		}
	}
}

func TestValidateRequiresNonBlankTitle(t *testing.T) {
	record := validRecord()
	record.Title = "   "
	if Validate(record) == nil {
		t.Fatal("blank title must fail")
	}
}

func TestValidateRequiresOneRealCastMember(t *testing.T) {
	record := validRecord()
	record.Cast = []string{"", "  "}
	if Validate(record) == nil {
		t.Fatal("whitespace-only cast must fail")
	}

	record.Cast = []string{"", "Zoe Saldana"}
	if err := Validate(record); err != nil {
		t.Fatalf("one real member should pass: %v", err)
	}
}

func TestValidateNilRecord(t *testing.T) {
	if Validate(nil) == nil {
		t.Fatal("nil record must fail")
	}
}
