package turndetect

import "testing"

func TestEndOfTurn(t *testing.T) {
	d := NewMultilingual()

	cases := []struct {
		name       string
		transcript string
		silenceMs  int
		want       bool
	}{
		{"empty transcript never ends", "", 5000, false},
		{"whitespace only never ends", "   ", 5000, false},
		{"unfinished phrase short silence", "the price is", 500, false},
		{"unfinished phrase long silence", "the price is", 900, true},
		{"terminal punctuation short silence", "The price is ten dollars.", 400, true},
		{"terminal punctuation too early", "The price is ten dollars.", 200, false},
		{"question mark", "is that all?", 400, true},
		{"exclamation", "add product!", 400, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := d.EndOfTurn(tc.transcript, tc.silenceMs); got != tc.want {
				t.Fatalf("EndOfTurn(%q, %d) = %v, want %v", tc.transcript, tc.silenceMs, got, tc.want)
			}
		})
	}
}
