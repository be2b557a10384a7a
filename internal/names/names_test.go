package names

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/talenttrack/hr-assistant/internal/hrms"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "labeled pattern",
			input:  "Hello, my name is Jane Doe and I want a job",
			expect: "Jane Doe",
		},
		{
			name:   "labeled pattern is case insensitive on the label",
			input:  "MY NAME IS Omar Hassan",
			expect: "Omar Hassan",
		},
		{
			name:   "adjacent capitalized pair fallback",
			input:  "is Jane Doe a good fit for any role?",
			expect: "Jane Doe",
		},
		{
			name:   "trailing punctuation stripped in fallback",
			input:  "please match John Smith, thanks",
			expect: "John Smith",
		},
		{
			name:   "no capitalized pair",
			input:  "what jobs are open",
			expect: "",
		},
		{
			name:   "single capitalized token is not enough",
			input:  "ask Jane about it",
			expect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Extract(tt.input); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "first and last", input: "Jane Doe", wantErr: false},
		{name: "three parts", input: "Mary Jane Watson", wantErr: false},
		{name: "single token", input: "Jane", wantErr: true},
		{name: "empty", input: "  ", wantErr: true},
		{name: "pronoun part", input: "My Name", wantErr: true},
		{name: "placeholder part", input: "Unknown User", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSplitCandidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect []Split
	}{
		{
			name:   "two tokens",
			input:  "Jane Doe",
			expect: []Split{{First: "Jane", Last: "Doe"}},
		},
		{
			name:  "three tokens tries compound first name before compound last name",
			input: "Mary Jane Watson",
			expect: []Split{
				{First: "Mary Jane", Last: "Watson"},
				{First: "Mary", Last: "Jane Watson"},
			},
		},
		{
			name:  "four tokens",
			input: "Juan Carlos de Silva",
			expect: []Split{
				{First: "Juan", Last: "Carlos de Silva"},
				{First: "Juan Carlos", Last: "de Silva"},
				{First: "Juan Carlos de", Last: "Silva"},
			},
		},
		{
			name:   "single token",
			input:  "Jane",
			expect: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SplitCandidates(tt.input); !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

// probeStore records CandidateByName probes and answers from a fixed table.
type probeStore struct {
	hrms.RelationalStore

	known  map[string]*hrms.Candidate
	err    error
	probes []Split
}

func (s *probeStore) CandidateByName(_ context.Context, first, last string) (*hrms.Candidate, error) {
	s.probes = append(s.probes, Split{First: first, Last: last})
	if s.err != nil {
		return nil, s.err
	}
	return s.known[first+"|"+last], nil
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("stops at first matching split", func(t *testing.T) {
		t.Parallel()

		want := &hrms.Candidate{ID: "7", FirstName: "Mary Jane", LastName: "Watson"}
		store := &probeStore{known: map[string]*hrms.Candidate{
			"Mary Jane|Watson": want,
		}}

		candidate, split, err := Resolve(context.Background(), store, "Mary Jane Watson")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if candidate != want {
			t.Fatalf("expected candidate %v, got %v", want, candidate)
		}
		if split != (Split{First: "Mary Jane", Last: "Watson"}) {
			t.Fatalf("unexpected split: %v", split)
		}
		if len(store.probes) != 1 {
			t.Fatalf("expected a single probe, got %d", len(store.probes))
		}
	})

	t.Run("falls through to later split", func(t *testing.T) {
		t.Parallel()

		want := &hrms.Candidate{ID: "3", FirstName: "Mary", LastName: "Jane Watson"}
		store := &probeStore{known: map[string]*hrms.Candidate{
			"Mary|Jane Watson": want,
		}}

		candidate, split, err := Resolve(context.Background(), store, "Mary Jane Watson")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if candidate != want {
			t.Fatalf("expected candidate %v, got %v", want, candidate)
		}
		if split != (Split{First: "Mary", Last: "Jane Watson"}) {
			t.Fatalf("unexpected split: %v", split)
		}
		if len(store.probes) != 2 {
			t.Fatalf("expected two probes, got %d", len(store.probes))
		}
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()

		store := &probeStore{}
		candidate, split, err := Resolve(context.Background(), store, "Jane Doe")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if candidate != nil || split != (Split{}) {
			t.Fatalf("expected no result, got %v %v", candidate, split)
		}
	})

	t.Run("store error propagates", func(t *testing.T) {
		t.Parallel()

		store := &probeStore{err: errors.New("db closed")}
		if _, _, err := Resolve(context.Background(), store, "Jane Doe"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestIsPronounOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		expect bool
	}{
		{name: "bare pronoun", input: "what is the status of my application?", expect: true},
		{name: "me with punctuation", input: "any jobs for me?", expect: true},
		{name: "named subject", input: "status of Jane Doe's application", expect: false},
		{name: "no pronoun", input: "what jobs are open", expect: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsPronounOnly(tt.input); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}
