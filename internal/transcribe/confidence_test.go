package transcribe

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a float32, b float64) bool {
	return math.Abs(float64(a)-b) < 1e-5
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected float64
	}{
		{
			name:     "empty text",
			text:     "",
			expected: 0.0,
		},
		{
			name:     "whitespace only",
			text:     "   ",
			expected: 0.0,
		},
		{
			// base 0.5 + len>10 + keyword + digit
			name:     "typical application line",
			text:     "marriage license application no. 12345",
			expected: 0.9,
		},
		{
			// base 0.5 + len>10 + upper
			name:     "name clause without keywords or digits",
			text:     "I, Jane Doe, of Springfield",
			expected: 0.7,
		},
		{
			// base 0.5 - short penalty + upper
			name:     "very short text",
			text:     "Ab",
			expected: 0.4,
		},
		{
			// base 0.5 + len>10 + len>50 + keyword + digit + upper = 1.1, clamped
			name:     "long structured text clamps at one",
			text:     "Marriage License Application No. 12345 issued in the County of Greenville, 1950",
			expected: 1.0,
		},
		{
			// base 0.5 + len>10 - repetition penalty
			name:     "repetitive garbled output",
			text:     "the the the the the the the",
			expected: 0.5,
		},
		{
			// 3 runes (6 bytes): the short-text penalty keys on characters
			name:     "short multibyte text",
			text:     "ñéñ",
			expected: 0.3,
		},
		{
			// 8 runes (16 bytes): no length bonus despite the byte count
			name:     "multibyte text under length bonus",
			text:     "ñéñéñéñé",
			expected: 0.5,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Estimate(tc.text)
			if !almostEqual(got, tc.expected) {
				t.Errorf("Estimate(%q) = %v, want %v", tc.text, got, tc.expected)
			}
		})
	}
}

func TestEstimateBounds(t *testing.T) {
	// the score must stay in [0,1] for arbitrary inputs
	inputs := []string{
		"",
		" ",
		"a",
		"!!",
		strings.Repeat("x ", 200),
		strings.Repeat("marriage license affidavit 123 ABC ", 10),
		"\n\t\r",
		"x x x x x x x x x x",
	}
	for _, in := range inputs {
		got := Estimate(in)
		if got < 0.0 || got > 1.0 {
			t.Errorf("Estimate(%q) = %v, out of [0,1]", in, got)
		}
	}
}

func TestEstimateDeterministic(t *testing.T) {
	text := "Marriage License Application No. 12345"
	if Estimate(text) != Estimate(text) {
		t.Error("Estimate is not deterministic for identical input")
	}
}
