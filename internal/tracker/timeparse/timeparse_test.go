package timeparse

import (
	"testing"
	"time"
)

func TestParse_KnownTextualFormats(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"bluedart scan", "Sat, 07 Dec'24 10:30 AM", time.Date(2024, 12, 7, 10, 30, 0, 0, time.UTC)},
		{"datetime", "2024-12-05 11:03:59", time.Date(2024, 12, 5, 11, 3, 59, 0, time.UTC)},
		{"datetime with fraction", "2025-04-02 19:36:37.0", time.Date(2025, 4, 2, 19, 36, 37, 0, time.UTC)},
		{"day month year", "07 Oct 2024 22:24", time.Date(2024, 10, 7, 22, 24, 0, 0, time.UTC)},
		{"dashed dmy", "05-12-2024 11:03:59", time.Date(2024, 12, 5, 11, 3, 59, 0, time.UTC)},
		{"iso with fraction", "2024-12-05T05:11:40.736000", time.Date(2024, 12, 5, 5, 11, 40, 736000000, time.UTC)},
		{"iso", "2024-12-05T05:11:40", time.Date(2024, 12, 5, 5, 11, 40, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.input)
			if got == nil {
				t.Fatalf("Parse(%q) = nil, want %v", tc.input, tc.want)
			}
			if !got.Equal(tc.want) {
				t.Errorf("Parse(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParse_EpochSeconds(t *testing.T) {
	got := Parse("1733397839")
	want := time.Unix(1733397839, 0).UTC()
	if got == nil || !got.Equal(want) {
		t.Fatalf("Parse epoch seconds = %v, want %v", got, want)
	}
}

func TestParse_EpochMilliseconds(t *testing.T) {
	// More than ten digits means milliseconds.
	got := Parse("1733397839000")
	want := time.Unix(1733397839, 0).UTC()
	if got == nil || !got.Equal(want) {
		t.Fatalf("Parse epoch milliseconds = %v, want %v", got, want)
	}
}

func TestParse_UnknownReturnsNil(t *testing.T) {
	for _, input := range []string{"", "  ", "yesterday", "12 o'clock", "2024/12/05"} {
		if got := Parse(input); got != nil {
			t.Errorf("Parse(%q) = %v, want nil", input, got)
		}
	}
}

func TestParseEpoch_Milliseconds(t *testing.T) {
	got := ParseEpoch(1733397839736)
	want := time.Unix(1733397839, 0).UTC()
	if !got.Equal(want) {
		t.Fatalf("ParseEpoch = %v, want %v", got, want)
	}
}
