package model

import "testing"

func TestPlayModeNextCycles(t *testing.T) {
	tests := []struct {
		in   PlayMode
		want PlayMode
	}{
		{PlayModeOrder, PlayModeLoop},
		{PlayModeLoop, PlayModeShuffle},
		{PlayModeShuffle, PlayModeOrder},
		{PlayMode("bogus"), PlayModeOrder},
	}
	for _, tt := range tests {
		if got := tt.in.Next(); got != tt.want {
			t.Errorf("%q.Next() = %q, want %q", tt.in, got, tt.want)
		}
	}

	m := PlayModeOrder
	for i := 0; i < 3; i++ {
		m = m.Next()
	}
	if m != PlayModeOrder {
		t.Errorf("three switches should return to order, got %q", m)
	}
}

func TestParsePlayMode(t *testing.T) {
	for _, s := range []string{"order", "loop", "shuffle"} {
		m, err := ParsePlayMode(s)
		if err != nil {
			t.Fatalf("ParsePlayMode(%q): %v", s, err)
		}
		if string(m) != s {
			t.Errorf("got %q, want %q", m, s)
		}
		if m.Label() == "" {
			t.Errorf("missing label for %q", m)
		}
	}
	for _, s := range []string{"", "random", "ORDER"} {
		if _, err := ParsePlayMode(s); err == nil {
			t.Errorf("ParsePlayMode(%q) expected error", s)
		}
	}
}
