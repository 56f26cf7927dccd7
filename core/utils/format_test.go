package utils

import (
	"math"
	"testing"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{65, "1:05"},
		{9, "0:09"},
		{0, "0:00"},
		{59.99, "0:59"},
		{600, "10:00"},
		{3725.4, "62:05"},
		{math.NaN(), "0:00"},
		{math.Inf(1), "0:00"},
		{-3, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.in); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
