package engine

import (
	"github.com/talenttrack/hr-assistant/internal/names"
	"github.com/talenttrack/hr-assistant/internal/session"
	"github.com/talenttrack/hr-assistant/internal/topic"
)

// RestoreState rebuilds session state from a serialized history. Callers that
// hold the conversation across process boundaries pass only the history, so
// the routing context has to be re-derived from it: the topic chain is
// replayed over the user turns, the last validly named subject is pinned, and
// a trailing name request re-arms the awaiting flag.
func RestoreState(history session.History) *session.State {
	state := &session.State{}

	for _, turn := range history {
		if turn.Role != session.RoleUser {
			continue
		}

		topics := topic.Resolve(turn.Content, topic.Topic(state.LastTopic))
		if len(topics) > 0 {
			state.LastTopic = string(topics[0])
		}

		if name := names.Extract(turn.Content); name != "" && names.Validate(name) == nil {
			state.PendingSubjectName = name
		}
	}

	if len(history) > 0 {
		last := history[len(history)-1]
		if last.Role == session.RoleAssistant {
			switch last.Content {
			case NameRequestMessage:
				state.AwaitingFullName = true
				state.PendingFlow = session.FlowMatch
				state.InMultiTurnFlow = true
			case StatusNameRequestMessage:
				state.AwaitingFullName = true
				state.PendingFlow = session.FlowStatus
				state.InMultiTurnFlow = true
			}
		}
	}

	return state
}
