//go:build unit

package main

import (
	"os"
	"path/filepath"
	"testing"

	"garage-orchestrator/internal/domain/slot"
	"garage-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayout(t *testing.T) {
	raw := []byte(`
slots:
  - id: A-01
    floor: "1"
  - id: A-02
    type: REGULAR
    floor: "1"
  - id: E-01
    type: EMERGENCY
`)

	got, err := parseLayout(raw)

	require.NoError(t, err)
	assert.Equal(t, []usecase.SlotLayout{
		{ID: "A-01", Type: slot.TypeRegular, Floor: "1"},
		{ID: "A-02", Type: slot.TypeRegular, Floor: "1"},
		{ID: "E-01", Type: slot.TypeEmergency},
	}, got)
}

func TestParseLayout_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{"not yaml", "slots: [", "parse layout"},
		{"empty", "slots: []", "no slots"},
		{"missing id", "slots:\n  - floor: \"1\"", "without id"},
		{"duplicate", "slots:\n  - id: A-01\n  - id: A-01", `duplicate slot "A-01"`},
		{"unknown type", "slots:\n  - id: V-01\n    type: VALET", "V-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseLayout([]byte(tt.raw))
			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestReadLayout_MissingFile(t *testing.T) {
	_, err := readLayout(filepath.Join(t.TempDir(), "layout.yaml"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}
