// Crowd Analyzer - Crowd Density Analytics and Sensor Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crowdanalyzer

package locations

import (
	"slices"
	"strings"
)

// DefaultLocation is the current location for users with no saved preference.
const DefaultLocation = "Hitech City"

// MaxRecents caps the recent locations list.
const MaxRecents = 5

// Catalog is the built-in list of monitored locations, in display order.
var Catalog = []string{
	// Hyderabad
	"Uppal",
	"Bod Uppal",
	"Narapally",
	"Ghatkesar",
	"Miyapur",
	"Hitech City",
	"Kukatpally",
	"Ameerpet",
	"Dilsukhnagar",
	"LB Nagar",
	"Mehdipatnam",
	"Begumpet",
	"Secunderabad",
	"Jubilee Hills",
	"Gachibowli",
	"Madhapur",
	"KPHB",
	"Paradise",
	"Malakpet",
	"Charminar",
	// New York
	"Times Square",
	"Grand Central",
	"Central Park",
	"Brooklyn Bridge",
	// London
	"Piccadilly Circus",
	"Oxford Street",
	"Trafalgar Square",
	"Covent Garden",
	// Tokyo
	"Shibuya Crossing",
	"Shinjuku",
	"Akihabara",
	"Tokyo Tower",
}

// Search returns the names matching query, preserving order. A name matches
// when it contains the query or when the query's characters appear in the
// name in order, both case-insensitively. A blank query matches nothing.
func Search(query string, names []string) []string {
	q := strings.ToLower(query)
	if strings.TrimSpace(q) == "" {
		return []string{}
	}

	out := make([]string, 0)
	for _, name := range names {
		lower := strings.ToLower(name)
		if strings.Contains(lower, q) || isSubsequence(q, lower) {
			out = append(out, name)
		}
	}
	return out
}

func isSubsequence(needle, haystack string) bool {
	h := []rune(haystack)
	pos := 0
	for _, c := range needle {
		found := false
		for pos < len(h) {
			pos++
			if h[pos-1] == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Contains reports whether name is in the catalog.
func Contains(name string) bool {
	return slices.Contains(Catalog, name)
}
