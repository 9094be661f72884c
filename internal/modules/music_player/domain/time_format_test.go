package domain

import (
	"math"
	"testing"
	"time"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name    string
		seconds float64
		want    string
	}{
		{name: "zero", seconds: 0, want: "0:00"},
		{name: "fraction is floored", seconds: 65.4, want: "1:05"},
		{name: "just below a minute", seconds: 59.99, want: "0:59"},
		{name: "exact minutes", seconds: 180, want: "3:00"},
		{name: "over an hour stays in minutes", seconds: 3725, want: "62:05"},
		{name: "NaN", seconds: math.NaN(), want: "0:00"},
		{name: "infinity", seconds: math.Inf(1), want: "0:00"},
		{name: "negative", seconds: -3, want: "0:00"},
		{name: "beyond int64 range", seconds: 1e300, want: "0:00"},
		{name: "max float", seconds: math.MaxFloat64, want: "0:00"},
		{name: "large value in range", seconds: 1 << 62, want: "76861433640456465:04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTime(tt.seconds); got != tt.want {
				t.Errorf("FormatTime(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(215500 * time.Millisecond); got != "3:35" {
		t.Errorf("FormatDuration() = %q, want %q", got, "3:35")
	}
}
