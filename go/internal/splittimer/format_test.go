package splittimer

import (
	"math"
	"testing"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:000"},
		{0.001, "00:00:001"},
		{0.0009, "00:00:000"},
		{1.1, "00:01:100"},
		{19.5, "00:19:500"},
		{59.9999, "00:59:999"},
		{60, "01:00:000"},
		{65.234, "01:05:234"},
		{3599.999, "59:59:999"},
		{3600, "60:00:000"},
		{-5, "00:00:000"},
		{math.NaN(), "00:00:000"},
		{math.Inf(-1), "00:00:000"},
		{math.Inf(1), "153722867280912:55:807"},
		{1e300, "153722867280912:55:807"},
	}

	for _, tt := range tests {
		if got := FormatTime(tt.seconds); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatTimeTruncatesMilliseconds(t *testing.T) {
	// 12.3456 would round to 346
	if got := FormatTime(12.3456); got != "00:12:345" {
		t.Fatalf("FormatTime(12.3456) = %q, want 00:12:345", got)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name    string
		fastest float64
		elapsed float64
		verdict Verdict
		color   Color
	}{
		{"slower", 10.0, 10.5, VerdictSlower, ColorRed},
		{"faster", 20.0, 19.5, VerdictFaster, ColorGreen},
		{"tie", 30.0, 30.0, VerdictTie, ColorWhite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Compare(tt.fastest, tt.elapsed)
			if v != tt.verdict {
				t.Fatalf("Compare(%v, %v) = %v, want %v", tt.fastest, tt.elapsed, v, tt.verdict)
			}
			if v.Color() != tt.color {
				t.Fatalf("%v.Color() = %v, want %v", v, v.Color(), tt.color)
			}
		})
	}
}
