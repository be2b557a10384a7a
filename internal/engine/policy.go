package engine

import (
	"regexp"
	"strings"

	"github.com/talenttrack/hr-assistant/internal/capability"
	"github.com/talenttrack/hr-assistant/internal/hrms"
)

// salaryWords mark an explicit compensation question. Salary figures are
// only disclosed when one of these appears in the utterance.
var salaryWords = []string{"salary", "salaries", "pay", "compensation", "wage", "earn"}

var multiSpace = regexp.MustCompile(`[ \t]{2,}`)

// enforcePolicy applies the formatting rules the backend cannot be trusted
// with: internal identifiers are scrubbed from the text, and salary lines
// are dropped unless compensation was explicitly asked about.
func enforcePolicy(utterance, text string, invocations []capability.Invocation) string {
	text = redactIdentifiers(text, collectIdentifiers(invocations))
	if !salaryRequested(utterance) {
		text = dropSalaryLines(text)
	}
	return strings.TrimSpace(text)
}

func salaryRequested(utterance string) bool {
	lowered := strings.ToLower(utterance)
	for _, word := range salaryWords {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}

// collectIdentifiers gathers every internal id present in the invocation
// payloads: job ids, application ids, candidate ids.
func collectIdentifiers(invocations []capability.Invocation) []string {
	var ids []string
	add := func(id string) {
		if strings.TrimSpace(id) != "" {
			ids = append(ids, id)
		}
	}

	for _, invocation := range invocations {
		for _, value := range invocation.Result {
			switch records := value.(type) {
			case []*hrms.Job:
				for _, job := range records {
					add(job.ID)
				}
			case []*hrms.Application:
				for _, app := range records {
					add(app.ApplicationID)
					add(app.JobID)
					add(app.CandidateID)
				}
			case *hrms.Candidate:
				add(records.ID)
			}
		}
	}

	return ids
}

func redactIdentifiers(text string, ids []string) string {
	for _, id := range ids {
		// Very short ids would over-redact ordinary words and numbers.
		if len(id) < 3 {
			continue
		}
		pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(id) + `\b`)
		if err != nil {
			continue
		}
		text = pattern.ReplaceAllString(text, "")
	}
	return multiSpace.ReplaceAllString(text, " ")
}

func dropSalaryLines(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		lowered := strings.ToLower(line)
		mentions := false
		for _, word := range salaryWords {
			if strings.Contains(lowered, word) {
				mentions = true
				break
			}
		}
		if !mentions {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
