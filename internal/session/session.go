// Package session holds per-conversation state carried between turns. One
// State and one History exist per conversation; nothing in this package is
// shared across sessions.
package session

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is one entry of the conversation history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History is the ordered, append-only sequence of turns. It is passed by
// value into each dispatch so an abandoned turn leaves the caller's copy
// untouched.
type History []Turn

// Append returns a new history with the given turn added. The receiver is
// not modified.
func (h History) Append(role Role, content string) History {
	next := make(History, len(h), len(h)+1)
	copy(next, h)
	return append(next, Turn{Role: role, Content: content})
}

// Flow identifies which clarification flow is waiting for a full name, so
// the name reply is routed back to the capability the user actually asked
// for.
type Flow string

const (
	FlowNone   Flow = ""
	FlowMatch  Flow = "match"
	FlowStatus Flow = "status"
)

// State is the per-conversation routing context. It is mutated only by the
// dispatch loop, and only after a turn composes successfully.
type State struct {
	// LastTopic is the most recently resolved topic tag, used to re-scope
	// pronoun-based follow-ups.
	LastTopic string

	// PendingSubjectName is the most recently resolved candidate full name.
	PendingSubjectName string

	// AwaitingFullName is set when the previous assistant turn asked the
	// user for their full name. The next utterance must be checked for a
	// name before anything else.
	AwaitingFullName bool

	// PendingFlow records which flow armed AwaitingFullName.
	PendingFlow Flow

	// InMultiTurnFlow is set while a multi-step flow (such as job matching
	// after a name request) is in progress.
	InMultiTurnFlow bool
}

// Clone returns an independent copy of the state. The dispatch loop works on
// a clone and commits it back only after a successful turn.
func (s *State) Clone() *State {
	if s == nil {
		return &State{}
	}
	clone := *s
	return &clone
}
