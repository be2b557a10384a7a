// Package ai defines the generation-backend contract the dispatch loop
// depends on. The backend decides between answering directly and requesting
// capability invocations; it is never trusted with formatting compliance.
package ai

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"github.com/talenttrack/hr-assistant/internal/session"
)

// ErrPayloadTooLarge classifies a backend rejection of an oversized request.
// The dispatch loop reacts with a one-shot truncation retry, never a loop.
var ErrPayloadTooLarge = errors.New("backend payload too large")

// Call is a capability invocation requested by the backend.
type Call struct {
	Name string
	Args map[string]any
}

// ToolResult feeds one executed capability payload back for composition.
// Results are supplied in request order.
type ToolResult struct {
	Name     string
	Response map[string]any
}

// Request carries everything one backend turn needs. ModelTurn and
// ToolResults are set only on the composition round, echoing the backend's
// own capability request back at it.
type Request struct {
	System       string
	Capabilities []*genai.FunctionDeclaration
	History      session.History
	Utterance    string

	ModelTurn   *genai.Content
	ToolResults []ToolResult
}

// Response is either direct text or a set of requested capability calls.
// ModelTurn preserves the raw backend turn so a composition round can
// reconstruct the exchange.
type Response struct {
	Text      string
	Calls     []Call
	ModelTurn *genai.Content
}

// Generator runs one backend turn. Implementations own the transient-error
// retry policy; errors returned here are terminal for the turn unless they
// classify as ErrPayloadTooLarge.
type Generator interface {
	GenerateTurn(ctx context.Context, req *Request) (*Response, error)
}
