// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractLocality(t *testing.T) {
	tests := []struct {
		name       string
		components map[string]string
		want       string
		found      bool
	}{
		{
			name:       "city wins over county",
			components: map[string]string{"county": "Île-de-France", "city": "Paris"},
			want:       "Paris",
			found:      true,
		},
		{
			name:       "town before village",
			components: map[string]string{"village": "Hameau", "town": "Bourg", "municipality": "Commune"},
			want:       "Bourg",
			found:      true,
		},
		{
			name:       "village before county",
			components: map[string]string{"county": "Finistère", "village": "Locronan"},
			want:       "Locronan",
			found:      true,
		},
		{
			name:       "municipality last",
			components: map[string]string{"municipality": "Arrondissement", "state": "Bretagne"},
			want:       "Arrondissement",
			found:      true,
		},
		{
			name:       "empty value still counts",
			components: map[string]string{"city": "", "town": "Bourg"},
			want:       "",
			found:      true,
		},
		{
			name:       "keys are case sensitive",
			components: map[string]string{"City": "Paris"},
			found:      false,
		},
		{
			name:       "other keys only",
			components: map[string]string{"road": "Rue de Rivoli", "state": "Île-de-France"},
			found:      false,
		},
		{
			name:       "nil map",
			components: nil,
			found:      false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, found := ExtractLocality(tc.components)
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.want, got)

			// Pure: a second call yields the same answer.
			again, foundAgain := ExtractLocality(tc.components)
			assert.Equal(t, got, again)
			assert.Equal(t, found, foundAgain)
		})
	}
}

func TestExtractLocalityIndependentOfInsertionOrder(t *testing.T) {
	for range 50 {
		components := make(map[string]string)
		for i := len(LocalityKeys) - 1; i >= 0; i-- {
			components[LocalityKeys[i]] = LocalityKeys[i]
		}

		got, found := ExtractLocality(components)
		assert.True(t, found)
		assert.Equal(t, "city", got)
	}
}
