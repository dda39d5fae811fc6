package fluka

import (
	"strings"
	"testing"
)

func TestCardLayout(t *testing.T) {
	line := Card("BEAM", []any{-0.001, 0.0, 0.0, 0.0, 0.0, 1.0}, "NEUTRON")

	if len(line) != sdumColumn+sdumWidth {
		t.Fatalf("expected %d columns, got %d", sdumColumn+sdumWidth, len(line))
	}
	if line[:10] != "BEAM      " {
		t.Errorf("keyword field: %q", line[:10])
	}
	if line[10:20] != "    -0.001" {
		t.Errorf("WHAT(1) field: %q", line[10:20])
	}
	if line[60:70] != "         1" {
		t.Errorf("WHAT(6) field: %q", line[60:70])
	}
	if line[70:] != "NEUTRON " {
		t.Errorf("SDUM field: %q", line[70:])
	}
}

func TestCardBlankFields(t *testing.T) {
	line := Card("DEFAULTS", []any{nil, nil, nil, nil, nil, nil}, "PRECISIO")

	if strings.TrimSpace(line[10:70]) != "" {
		t.Errorf("expected blank WHAT block, got %q", line[10:70])
	}
	if line[70:78] != "PRECISIO" {
		t.Errorf("SDUM field: %q", line[70:78])
	}
}

func TestCardStringField(t *testing.T) {
	line := Card("ASSIGNMA", []any{"VACUUM", "WORLDREG", nil, nil, nil, nil}, "")

	if line[10:20] != "    VACUUM" {
		t.Errorf("WHAT(1) field: %q", line[10:20])
	}
	if line[20:30] != "  WORLDREG" {
		t.Errorf("WHAT(2) field: %q", line[20:30])
	}
}

func TestCardPartialWhat(t *testing.T) {
	// Fewer than six fields still pads to the SDUM column.
	line := Card("RANDOMIZ", []any{1.0}, "")
	if len(line) != sdumColumn+sdumWidth {
		t.Fatalf("expected %d columns, got %d", sdumColumn+sdumWidth, len(line))
	}
}

func TestKeyword(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{Card("LOW-PWXS", []any{1.0}, "JEFF-3.3"), "LOW-PWXS"},
		{"STOP", "STOP"},
		{"", ""},
		{"GEOEND", "GEOEND"},
	}
	for _, tt := range tests {
		if got := Keyword(tt.line); got != tt.want {
			t.Errorf("Keyword(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}
