package service

import (
	"strings"
	"testing"
)

func TestCannedResponderMatchesKeywords(t *testing.T) {
	responder := NewCannedResponder()

	tests := []struct {
		name     string
		message  string
		contains string
	}{
		{
			name:     "fraction question",
			message:  "how do I add a fraction?",
			contains: "Fractions",
		},
		{
			name:     "case insensitive",
			message:  "What is a FRACTION",
			contains: "Fractions",
		},
		{
			name:     "science question",
			message:  "what does the nucleus do",
			contains: "nucleus",
		},
		{
			name:     "asking for a hint",
			message:  "I'm stuck on this one",
			contains: "one step at a time",
		},
		{
			name:     "greeting",
			message:  "hello!",
			contains: "study buddy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := responder.Respond(tt.message)
			if !strings.Contains(reply, tt.contains) {
				t.Errorf("Respond(%q) = %q, expected it to mention %q", tt.message, reply, tt.contains)
			}
		})
	}
}

func TestCannedResponderFallback(t *testing.T) {
	responder := NewCannedResponder()

	reply := responder.Respond("xyzzy plugh")
	if reply != responder.fallback {
		t.Errorf("expected fallback reply, got %q", reply)
	}
}

func TestCannedResponderFirstRuleWins(t *testing.T) {
	responder := NewCannedResponder()

	// "fraction" appears in an earlier rule than "help".
	reply := responder.Respond("help me with this fraction")
	if !strings.Contains(reply, "Fractions") {
		t.Errorf("expected the more specific fraction rule to win, got %q", reply)
	}
}
