package main

import (
	"strings"
	"testing"
)

func TestRenderTableRightAlignsCountColumns(t *testing.T) {
	out := renderTable(
		[]string{"Genre", "Count"},
		[][]string{
			{"Science Fiction", "12"},
			{"Drama", "5"},
		},
		1,
	)
	if !strings.Contains(out, "Science Fiction") || !strings.Contains(out, "Drama") {
		t.Fatalf("missing rows in output:\n%s", out)
	}
	if !strings.Contains(out, "    5 │") {
		t.Fatalf("count column not right-aligned:\n%s", out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"Setting", "Value"},
		[][]string{{"scanner.device"}},
	)
	for _, line := range strings.Split(out, "\n") {
		if n := strings.Count(line, "│"); n != 0 && n != 3 {
			t.Fatalf("ragged table line: %q", line)
		}
	}
}

func TestRenderTableNoHeaders(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
