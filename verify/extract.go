// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

package verify

// LocalityKeys are the address component kinds naming a commune, from the
// most to the least specific.
var LocalityKeys = []string{"city", "town", "village", "county", "municipality"}

// ExtractLocality returns the value of the first of LocalityKeys present in
// components. Keys are matched case-sensitively and an empty value still
// counts as present.
func ExtractLocality(components map[string]string) (string, bool) {
	for _, key := range LocalityKeys {
		if name, ok := components[key]; ok {
			return name, true
		}
	}

	return "", false
}
