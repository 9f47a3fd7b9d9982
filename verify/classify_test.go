// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		resolved string
		found    bool
		want     Outcome
	}{
		{"exact", "Paris", "Paris", true, Outcome{Status: StatusOK}},
		{"case and spaces", " Paris ", "paris", true, Outcome{Status: StatusOK}},
		{"upper case accents", "ORLÉANS", "Orléans", true, Outcome{Status: StatusOK}},
		{"tabs and newlines", "\tLyon\n", "LYON", true, Outcome{Status: StatusOK}},
		{"different", "Lyon", "Paris", true, Outcome{Status: StatusMismatch, Found: "Paris"}},
		{"mismatch keeps original", "Lyon", "  Saint-Étienne ", true, Outcome{Status: StatusMismatch, Found: "  Saint-Étienne "}},
		{"accents are significant", "Orleans", "Orléans", true, Outcome{Status: StatusMismatch, Found: "Orléans"}},
		{"empty resolved", "Paris", "", true, Outcome{Status: StatusMismatch, Found: ""}},
		{"not found", "Paris", "", false, Outcome{Status: StatusLocalityNotFound}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.expected, tc.resolved, tc.found)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, Classify(tc.expected, tc.resolved, tc.found))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Paris  ", "paris"},
		{"Île-de-France", "île-de-france"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalize(tc.input))
		})
	}
}
