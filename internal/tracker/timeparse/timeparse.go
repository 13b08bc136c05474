// Package timeparse turns the many timestamp spellings courier back ends use
// into a single comparable time.Time, or nil when nothing matches.
package timeparse

import (
	"strconv"
	"strings"
	"time"
)

// layouts is tried in order; the first successful parse wins.
var layouts = []string{
	"Mon, 02 Jan'06 3:04 PM",       // Bluedart scan rows
	"2006-01-02 15:04:05",          // 2024-12-05 11:03:59
	"2006-01-02 15:04:05.999999",   // 2025-04-02 19:36:37.0
	"02 Jan 2006 15:04",            // 07 Oct 2024 22:24
	"02-01-2006 15:04:05",          // 05-12-2024 11:03:59
	"2006-01-02T15:04:05.999999",   // ISO 8601 with fraction
	"2006-01-02T15:04:05",          // ISO 8601
}

// Parse interprets s as a timestamp. All-digit input is a Unix epoch value;
// more than ten digits means milliseconds. Otherwise each known textual
// layout is tried in order. An unrecognized value returns nil; the caller
// must treat that as "timestamp unknown", never as a failure.
func Parse(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if isDigits(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			if len(s) > 10 { // epoch milliseconds
				n /= 1000
			}
			t := time.Unix(n, 0).UTC()
			return &t
		}
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ParseEpoch converts an integer Unix epoch, applying the same
// milliseconds heuristic as Parse.
func ParseEpoch(n int64) time.Time {
	if n > 9_999_999_999 {
		n /= 1000
	}
	return time.Unix(n, 0).UTC()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
