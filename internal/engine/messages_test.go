package engine

import "testing"

func TestIsMatchQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		expect bool
	}{
		{input: "Am I a good match for any job?", expect: true},
		{input: "find a MATCH FOR Jane Doe", expect: true},
		{input: "which jobs would be a good fit?", expect: true},
		{input: "are there jobs for me?", expect: true},
		{input: "show me jobs that suit me", expect: true},
		{input: "what jobs are open?", expect: false},
		{input: "tell me about the company", expect: false},
	}

	for _, tt := range tests {
		if got := isMatchQuery(tt.input); got != tt.expect {
			t.Errorf("isMatchQuery(%q) = %v, expected %v", tt.input, got, tt.expect)
		}
	}
}
