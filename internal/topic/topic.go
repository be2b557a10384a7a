// Package topic deterministically classifies an utterance into zero or more
// HR topic tags using keyword and intent-modifier sets.
package topic

import (
	"regexp"
	"sort"
	"strings"
)

// Topic is a classification tag for a query. Topics are static configuration,
// immutable for the process lifetime.
type Topic string

const (
	Job             Topic = "job"
	Mission         Topic = "mission"
	Vision          Topic = "vision"
	Application     Topic = "application"
	Candidate       Topic = "candidate"
	Benefits        Topic = "benefits"
	WorkEnvironment Topic = "work_environment"
	About           Topic = "about"
	FAQs            Topic = "faqs"
)

// definition owns the keyword set of a topic and, optionally, the intent
// modifiers that must co-occur for the topic to match at all.
type definition struct {
	keywords map[string]struct{}
	intents  map[string]struct{}
}

func keywordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var definitions = map[Topic]definition{
	Job: {
		keywords: keywordSet("job", "jobs", "position", "positions", "opening", "openings",
			"vacancy", "vacancies", "hiring", "career", "roles"),
		intents: keywordSet("open", "available", "active", "current", "apply", "now", "accepting"),
	},
	Mission: {
		keywords: keywordSet("mission", "purpose", "objective", "goal", "aim"),
	},
	Vision: {
		keywords: keywordSet("vision", "aspiration", "future", "direction", "dream"),
	},
	Application: {
		keywords: keywordSet("application", "apply", "process", "submitted", "status", "steps", "procedure"),
	},
	Candidate: {
		keywords: keywordSet("candidate", "applicant", "profile", "resume", "cv", "status", "info", "details"),
	},
	Benefits: {
		keywords: keywordSet("benefits", "perks", "compensation", "incentives", "bonus", "insurance"),
	},
	WorkEnvironment: {
		keywords: keywordSet("environment", "culture", "workspace", "remote", "hybrid", "office", "tools", "communication"),
	},
	About: {
		keywords: keywordSet("about", "company", "organization", "overview", "introduction", "who"),
	},
	FAQs: {
		keywords: keywordSet("faq", "faqs", "frequently", "question", "questions", "common"),
	},
}

// anaphora are the pronouns that carry the previous topic into a follow-up.
var anaphora = keywordSet("its", "their", "it", "those", "them", "these")

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// Normalize lowercases the text and strips punctuation.
func Normalize(text string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(text), "")
}

// Tokenize returns the deduplicated, normalized, lemmatized token set of the
// utterance.
func Tokenize(text string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, token := range strings.Fields(Normalize(text)) {
		token = lemmatize(token)
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return tokens
}

// lemmatize reduces common English inflections so that e.g. "positions"
// matches the "position" keyword. A full lemmatizer is not needed: keyword
// sets already carry their frequent surface forms.
func lemmatize(token string) string {
	switch {
	case len(token) > 4 && strings.HasSuffix(token, "ies"):
		return token[:len(token)-3] + "y"
	case len(token) > 4 && strings.HasSuffix(token, "sses"):
		return token[:len(token)-2]
	case len(token) > 3 && strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss"):
		return token[:len(token)-1]
	default:
		return token
	}
}

// ContainsAnaphora reports whether the token set carries one of the pronouns
// that refer back to the previous topic.
func ContainsAnaphora(tokens []string) bool {
	for _, token := range tokens {
		if _, ok := anaphora[token]; ok {
			return true
		}
	}
	return false
}

// Classify returns the topics whose keyword set fuzzy-matches the tokens at
// or above the similarity cutoff and whose intent set, when present, also
// matches. Among matching topics only those tied for the highest count of
// exact keyword overlaps are returned, so an incidental keyword collision
// cannot dilute a strong match.
func Classify(tokens []string) []Topic {
	type match struct {
		topic   Topic
		overlap int
	}

	var matches []match
	best := -1
	for topic, def := range definitions {
		if !fuzzyMatch(tokens, def.keywords, DefaultCutoff) {
			continue
		}
		if len(def.intents) > 0 && !fuzzyMatch(tokens, def.intents, DefaultCutoff) {
			continue
		}

		overlap := 0
		for _, token := range tokens {
			if _, ok := def.keywords[token]; ok {
				overlap++
			}
		}

		matches = append(matches, match{topic: topic, overlap: overlap})
		if overlap > best {
			best = overlap
		}
	}

	var topics []Topic
	for _, m := range matches {
		if m.overlap == best {
			topics = append(topics, m.topic)
		}
	}

	// Map iteration order is random; keep the result stable.
	sort.Slice(topics, func(i, j int) bool { return topics[i] < topics[j] })

	return topics
}

// Resolve classifies the utterance and, when nothing matches but the
// previous topic is known and the utterance is anaphoric, carries the
// previous topic forward.
func Resolve(utterance string, lastTopic Topic) []Topic {
	tokens := Tokenize(utterance)
	if len(tokens) == 0 {
		return nil
	}

	topics := Classify(tokens)
	if len(topics) == 0 && lastTopic != "" && ContainsAnaphora(tokens) {
		return []Topic{lastTopic}
	}

	return topics
}

// Sections maps topics to the company-info section names they correspond to.
// Topics without a section (job, candidate) are skipped.
func Sections(topics []Topic) []string {
	var sections []string
	for _, t := range topics {
		switch t {
		case Mission, Vision, Benefits, WorkEnvironment, About, FAQs:
			sections = append(sections, string(t))
		case Application:
			sections = append(sections, "application_process")
		}
	}
	return sections
}
