package engine

import "strings"

const (
	// NameRequestMessage is the fixed clarification for job-matching queries
	// with no resolvable name. The awaiting-full-name flag is only ever set
	// right after this exact message.
	NameRequestMessage = "Please provide your full name so I can match you to available jobs."

	// StatusNameRequestMessage is the fixed clarification for admin status
	// queries with no resolvable name.
	StatusNameRequestMessage = "Please provide the candidate's full name (first and last) so I can look up the application status."

	// TerminalErrorMessage is the stable user-visible text for a turn that
	// failed after all recovery. The detailed cause stays in logs.
	TerminalErrorMessage = "I am unable to get information on that. Kindly try again."
)

// matchTriggers are the phrases that mark a job-matching query. Matching is
// case-insensitive on the raw utterance.
var matchTriggers = []string{
	"good match",
	"match for",
	"good fit",
	"jobs for me",
	"jobs that suit me",
	"jobs that fit me",
}

func isMatchQuery(utterance string) bool {
	lowered := strings.ToLower(utterance)
	for _, trigger := range matchTriggers {
		if strings.Contains(lowered, trigger) {
			return true
		}
	}
	return false
}

// systemInstruction encodes the assistant's routing and formatting rules.
// The dispatch loop enforces the formatting policy independently; this text
// only steers the backend toward compliant output.
const systemInstruction = `You are an AI HR Assistant. For normal conversation (greetings, small talk, general questions) answer directly from your own knowledge without using any tools.

For queries matching a tool's purpose you MUST answer using ONLY the provided tools. Never make up job listings, candidate profiles, or company information. If a tool returns no data, say you don't have information on that based on the database.

Context handling:
- Always check the conversation history when handling follow-up questions.
- If the user refers to "this job", "its salary" and similar, use the most recently discussed job from the history before making new tool calls.

For job queries about active, available, or current jobs use get_active_jobs. It fetches ALL active jobs and accepts no filtering parameters; find the specific detail in its results. For company information (mission, vision, benefits, about, work_environment, faqs, application_process) use get_company_info with the correct section names.

Name handling:
- Only act on a COMPLETE full name (first and last). If only a first name is given, ask for the full name.
- If the query uses pronouns like "me", "my", or "I", use the most recent full name from the conversation history; never guess a name. If none is available, ask for it.

Formatting:
- Plain text only: no markdown symbols such as ###, ** or *.
- Use dashes (-) for bullet points and clear line breaks.
- Keep distinct topics in separate labeled sections, never merged into one paragraph.
- Never mention job IDs or application IDs.
- Only mention salary when explicitly asked and the data exists, and never assume a currency.`
