// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCoordinate(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{48.8566, "48.8566"},
		{-34.8822366, "-34.8822366"},
		{2, "2"},
		{0, "0"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatCoordinate(tc.input))
		})
	}
}

func TestPointCell(t *testing.T) {
	paris := Point{Lat: 48.8566, Lng: 2.3522}

	cell, err := paris.Cell(IndexResolution)
	require.NoError(t, err)
	assert.NotZero(t, cell)

	// A point a few meters away falls in the same cell.
	near := Point{Lat: 48.85661, Lng: 2.35221}
	other, err := near.Cell(IndexResolution)
	require.NoError(t, err)
	assert.Equal(t, cell, other)

	_, err = paris.Cell(99)
	assert.Error(t, err)
}

func TestPointString(t *testing.T) {
	assert.Equal(t, "POINT(2.352200 48.856600)", Point{Lat: 48.8566, Lng: 2.3522}.String())
}
