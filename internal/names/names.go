// Package names extracts candidate full names from free text and resolves
// ambiguous multi-token names against the relational store.
package names

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/talenttrack/hr-assistant/internal/hrms"
)

// labeledPattern matches "my name is <Capitalized Words>". The label is
// case-insensitive, the name itself must be capitalized.
var labeledPattern = regexp.MustCompile(`(?i:my name is)\s+([A-Z][a-z]+(?: [A-Z][a-z]+)*)`)

// placeholders are tokens that can never be part of a real name. A name
// containing one of these is rejected rather than looked up.
var placeholders = map[string]struct{}{
	"me": {}, "myself": {}, "i": {}, "my": {}, "mine": {},
	"you": {}, "your": {}, "yours": {},
	"he": {}, "she": {}, "they": {}, "them": {}, "their": {}, "his": {}, "her": {},
	"user": {}, "unknown": {}, "n/a": {}, "none": {},
}

// Extract pulls a full name out of the utterance. It tries the labeled
// "my name is ..." pattern first and falls back to the first adjacent pair
// of capitalized tokens. Returns "" when nothing plausible is found.
func Extract(text string) string {
	if m := labeledPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	tokens := strings.Fields(text)
	for i := 0; i+1 < len(tokens); i++ {
		first := strings.Trim(tokens[i], ".,:;!?\"'")
		second := strings.Trim(tokens[i+1], ".,:;!?\"'")
		if isCapitalized(first) && isCapitalized(second) {
			return first + " " + second
		}
	}

	return ""
}

func isCapitalized(token string) bool {
	if token == "" {
		return false
	}
	runes := []rune(token)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

// Validate rejects names that cannot identify a candidate: fewer than two
// parts, or any part that is a pronoun or placeholder token.
func Validate(name string) error {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) < 2 {
		return fmt.Errorf("full name (first and last) is required, got %q", name)
	}

	for _, part := range parts {
		if _, ok := placeholders[strings.ToLower(part)]; ok {
			return fmt.Errorf("name %q contains a pronoun or placeholder", name)
		}
	}

	return nil
}

// Split is one (first, last) candidate pair tried during disambiguation.
type Split struct {
	First string
	Last  string
}

// SplitCandidates generates the ranked, deduplicated list of plausible
// (first, last) splits for a multi-token name. The order is part of the
// contract: probes stop at the first exact match, and ties between equally
// plausible splits are resolved by list position.
func SplitCandidates(name string) []Split {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) < 2 {
		return nil
	}

	var splits []Split
	switch {
	case len(parts) == 2:
		splits = []Split{{First: parts[0], Last: parts[1]}}
	case len(parts) == 3:
		splits = []Split{
			{First: parts[0] + " " + parts[1], Last: parts[2]},
			{First: parts[0], Last: parts[1] + " " + parts[2]},
		}
	default:
		splits = []Split{
			{First: parts[0], Last: strings.Join(parts[1:], " ")},
			{First: strings.Join(parts[:2], " "), Last: strings.Join(parts[2:], " ")},
			{First: strings.Join(parts[:len(parts)-1], " "), Last: parts[len(parts)-1]},
		}
	}

	seen := make(map[Split]struct{}, len(splits))
	unique := splits[:0]
	for _, split := range splits {
		if _, ok := seen[split]; ok {
			continue
		}
		seen[split] = struct{}{}
		unique = append(unique, split)
	}

	return unique
}

// Resolve probes the store with each split candidate in order and returns
// the first candidate with an exact case-insensitive match, along with the
// split that matched. Returns (nil, Split{}, nil) when no split matches.
func Resolve(ctx context.Context, store hrms.RelationalStore, name string) (*hrms.Candidate, Split, error) {
	for _, split := range SplitCandidates(name) {
		candidate, err := store.CandidateByName(ctx, split.First, split.Last)
		if err != nil {
			return nil, Split{}, fmt.Errorf("probe %q %q: %w", split.First, split.Last, err)
		}
		if candidate != nil {
			return candidate, split, nil
		}
	}

	return nil, Split{}, nil
}

// IsPronounOnly reports whether the utterance refers to the speaker without
// naming them ("me", "my", "I"). Such utterances must never have a name
// guessed from them; the caller recalls the last resolved name instead.
func IsPronounOnly(text string) bool {
	if Extract(text) != "" {
		return false
	}
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,:;!?\"'")
		switch token {
		case "me", "my", "i", "myself", "mine":
			return true
		}
	}
	return false
}
