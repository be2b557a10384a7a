// Package engine implements the per-turn dispatch loop: classify the
// utterance, decide whether a capability is needed, execute it, and compose
// the final answer, carrying conversation context across turns.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/talenttrack/hr-assistant/internal/ai"
	"github.com/talenttrack/hr-assistant/internal/capability"
	"github.com/talenttrack/hr-assistant/internal/hrms"
	"github.com/talenttrack/hr-assistant/internal/logger"
	"github.com/talenttrack/hr-assistant/internal/names"
	"github.com/talenttrack/hr-assistant/internal/retrieval"
	"github.com/talenttrack/hr-assistant/internal/session"
	"github.com/talenttrack/hr-assistant/internal/topic"
)

const (
	// payloadBudget bounds the serialized capability results kept when a
	// composition request is degraded after a payload-size rejection.
	payloadBudget = 2500

	// retrievalK is how many documents the optional document-store context
	// lookup fetches per turn.
	retrievalK = 5

	maxLogLength = 200
)

// Statuses of a completed turn, mirrored on the process boundary.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// TurnRequest is one utterance plus the externally owned conversation
// context. History is passed by value; State is cloned before any mutation.
type TurnRequest struct {
	Utterance string
	Role      capability.Role
	CallerID  string
	History   session.History
	State     *session.State
}

// TurnResult is the outcome of one dispatch. On StatusError the returned
// State and History are the caller's originals, untouched, so the same turn
// can be retried.
type TurnResult struct {
	Status      string
	Text        string
	History     session.History
	State       *session.State
	Invocations []capability.Invocation
}

// Engine orchestrates turns. Safe for use by multiple sessions concurrently:
// all per-conversation state arrives through TurnRequest.
type Engine struct {
	registry  *capability.Registry
	generator ai.Generator
	docs      hrms.DocumentStore
	logger    *zap.Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithDocumentStore enables the supplementary retrieval context lookup.
func WithDocumentStore(docs hrms.DocumentStore) Option {
	return func(e *Engine) { e.docs = docs }
}

// New creates an engine over the registry and generation backend.
func New(registry *capability.Registry, generator ai.Generator, log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{registry: registry, generator: generator, logger: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleTurn runs one conversational turn through the dispatch state
// machine. Session state mutations commit atomically on success; an
// abandoned or failed turn leaves the caller's state untouched.
func (e *Engine) HandleTurn(ctx context.Context, req *TurnRequest) (*TurnResult, error) {
	if req == nil || strings.TrimSpace(req.Utterance) == "" {
		return nil, errors.New("utterance is required")
	}

	state := req.State.Clone()
	topics := topic.Resolve(req.Utterance, topic.Topic(state.LastTopic))
	if len(topics) > 0 {
		state.LastTopic = string(topics[0])
	}

	e.logger.Debug("turn classified",
		zap.String("utterance", logger.TruncateForLog(req.Utterance, maxLogLength)),
		zap.String("role", string(req.Role)),
		zap.Any("topics", topics),
	)

	capabilities := e.registry.Resolve(req.Role, req.CallerID)

	// Deterministic pre-routing: identity-bearing queries for elevated
	// callers must have a resolvable full name before any backend contact.
	if req.Role == capability.RoleAdmin {
		if result, done := e.resolveNameFlow(ctx, req, state, topics, capabilities); done {
			return result, nil
		}
	}

	return e.dispatch(ctx, req, state, topics, capabilities)
}

// resolveNameFlow handles the awaiting-full-name short circuit for
// job-matching and status queries. It returns (result, true) when the turn
// finishes without contacting the backend for routing, or when a resolved
// name lets the flow's capability be invoked directly. A name reply is
// always routed back to the flow that armed the awaiting flag, so a status
// question never turns into a job match.
func (e *Engine) resolveNameFlow(ctx context.Context, req *TurnRequest, state *session.State, topics []topic.Topic, capabilities *capability.Set) (*TurnResult, bool) {
	statusQuery := containsTopic(topics, topic.Application) && names.IsPronounOnly(req.Utterance)

	flow := session.FlowNone
	switch {
	case state.AwaitingFullName:
		flow = state.PendingFlow
		if flow == session.FlowNone {
			flow = session.FlowMatch
		}
	case isMatchQuery(req.Utterance):
		flow = session.FlowMatch
	case statusQuery:
		flow = session.FlowStatus
	}
	if flow == session.FlowNone {
		return nil, false
	}

	name := names.Extract(req.Utterance)
	if name == "" && names.IsPronounOnly(req.Utterance) {
		// Never guess from pronouns; fall back to the last resolved name.
		name = state.PendingSubjectName
	}
	if name == "" && state.AwaitingFullName && looksLikeBareName(req.Utterance) {
		name = strings.TrimSpace(req.Utterance)
	}

	if name == "" || names.Validate(name) != nil {
		message := NameRequestMessage
		if flow == session.FlowStatus {
			message = StatusNameRequestMessage
		}

		state.AwaitingFullName = true
		state.PendingFlow = flow
		state.InMultiTurnFlow = true

		return &TurnResult{
			Status:  StatusSuccess,
			Text:    message,
			History: req.History.Append(session.RoleUser, req.Utterance).Append(session.RoleAssistant, message),
			State:   state,
		}, true
	}

	state.PendingSubjectName = name
	state.AwaitingFullName = false
	state.PendingFlow = session.FlowNone

	// Name resolved: invoke the flow's capability directly rather than
	// asking the backend whether one is needed.
	capabilityName := "match_candidate_to_jobs"
	if flow == session.FlowStatus {
		capabilityName = "get_candidate_status"
	}

	split := names.SplitCandidates(name)
	call := ai.Call{Name: capabilityName, Args: map[string]any{
		"first_name": split[0].First,
		"last_name":  split[0].Last,
	}}

	result, err := e.composeWithCalls(ctx, req, state, capabilities, []ai.Call{call})
	if err != nil {
		return e.terminalResult(req, err), true
	}
	return result, true
}

// dispatch runs the backend routing round and composes the final answer.
func (e *Engine) dispatch(ctx context.Context, req *TurnRequest, state *session.State, topics []topic.Topic, capabilities *capability.Set) (*TurnResult, error) {
	routed, err := e.generator.GenerateTurn(ctx, &ai.Request{
		System:       systemInstruction,
		Capabilities: capabilities.Declarations(),
		History:      req.History,
		Utterance:    e.augmentUtterance(ctx, req.Utterance, topics),
	})
	if err != nil {
		return e.terminalResult(req, err), nil
	}

	if len(routed.Calls) == 0 {
		// Direct answer: small talk or general knowledge.
		return e.commit(req, state, enforcePolicy(req.Utterance, routed.Text, nil), nil), nil
	}

	return e.executeAndCompose(ctx, req, state, capabilities, routed.Calls, routed.ModelTurn)
}

// composeWithCalls skips the routing round and goes straight to execution
// and composition with the given calls.
func (e *Engine) composeWithCalls(ctx context.Context, req *TurnRequest, state *session.State, capabilities *capability.Set, calls []ai.Call) (*TurnResult, error) {
	return e.executeAndCompose(ctx, req, state, capabilities, calls, modelTurnForCalls(calls))
}

func (e *Engine) executeAndCompose(ctx context.Context, req *TurnRequest, state *session.State, capabilities *capability.Set, calls []ai.Call, modelTurn *genai.Content) (*TurnResult, error) {
	invocations := e.execute(ctx, capabilities, calls)

	for _, invocation := range invocations {
		e.logger.Info("capability invoked",
			zap.String("capability", invocation.Name),
			zap.Bool("success", invocation.Success),
		)
		if matched, ok := invocation.Result["matched_name"].(string); ok && matched != "" {
			state.PendingSubjectName = matched
			state.AwaitingFullName = false
			state.InMultiTurnFlow = false
		}
	}

	toolResults := buildToolResults(invocations)

	composed, err := e.generator.GenerateTurn(ctx, &ai.Request{
		System:      systemInstruction,
		History:     req.History,
		Utterance:   req.Utterance,
		ModelTurn:   modelTurn,
		ToolResults: toolResults,
	})
	if errors.Is(err, ai.ErrPayloadTooLarge) {
		// One-shot degrade: shrink the capability payloads and try again.
		e.logger.Warn("composition payload too large, retrying with truncated results", zap.Error(err))
		composed, err = e.generator.GenerateTurn(ctx, &ai.Request{
			System:      systemInstruction,
			History:     req.History,
			Utterance:   req.Utterance,
			ModelTurn:   modelTurn,
			ToolResults: truncateToolResults(toolResults, payloadBudget),
		})
	}
	if err != nil {
		return e.terminalResult(req, err), nil
	}

	if ctx.Err() != nil {
		// Abandoned turn: no state commit.
		return e.terminalResult(req, ctx.Err()), nil
	}

	text := enforcePolicy(req.Utterance, composed.Text, invocations)
	result := e.commit(req, state, text, invocations)
	return result, nil
}

// execute fans the requested calls out concurrently and joins before
// composition. Results are keyed by request index, so composition order
// follows request order regardless of completion order.
func (e *Engine) execute(ctx context.Context, capabilities *capability.Set, calls []ai.Call) []capability.Invocation {
	invocations := make([]capability.Invocation, len(calls))

	group, groupCtx := errgroup.WithContext(ctx)
	for i, call := range calls {
		group.Go(func() error {
			invocations[i] = capabilities.Invoke(groupCtx, call.Name, call.Args)
			return nil
		})
	}
	_ = group.Wait()

	return invocations
}

// augmentUtterance prepends retrieved document context when a document
// store is configured and the turn resolved to concrete topics.
func (e *Engine) augmentUtterance(ctx context.Context, utterance string, topics []topic.Topic) string {
	if e.docs == nil || len(topics) == 0 {
		return utterance
	}

	docs, err := e.docs.SimilaritySearch(ctx, utterance, retrievalK)
	if err != nil {
		e.logger.Warn("document retrieval failed", zap.Error(err))
		return utterance
	}

	docs = retrieval.Run(e.logger, []retrieval.Filter{
		retrieval.NewTopicFilter(topics),
		retrieval.NewActiveJobFilter(),
	}, docs)

	if len(docs) == 0 {
		return utterance
	}

	return utterance + "\n\nRetrieved context:\n" + retrieval.FormatDocuments(docs)
}

// commit finalizes a successful turn: history gains the user and assistant
// turns, and the cloned state becomes the caller's new state.
func (e *Engine) commit(req *TurnRequest, state *session.State, text string, invocations []capability.Invocation) *TurnResult {
	state.InMultiTurnFlow = state.AwaitingFullName

	return &TurnResult{
		Status:      StatusSuccess,
		Text:        text,
		History:     req.History.Append(session.RoleUser, req.Utterance).Append(session.RoleAssistant, text),
		State:       state,
		Invocations: invocations,
	}
}

// terminalResult reports a failed turn: generic user-visible text, detailed
// cause in logs, caller's state and history untouched.
func (e *Engine) terminalResult(req *TurnRequest, err error) *TurnResult {
	e.logger.Error("turn failed", zap.Error(err))
	return &TurnResult{
		Status:  StatusError,
		Text:    TerminalErrorMessage,
		History: req.History,
		State:   req.State.Clone(),
	}
}

func buildToolResults(invocations []capability.Invocation) []ai.ToolResult {
	results := make([]ai.ToolResult, 0, len(invocations))
	for _, invocation := range invocations {
		results = append(results, ai.ToolResult{
			Name:     invocation.Name,
			Response: invocation.Result,
		})
	}
	return results
}

// truncateToolResults shrinks serialized payloads, largest first, until the
// total fits the budget. Order is preserved.
func truncateToolResults(results []ai.ToolResult, budget int) []ai.ToolResult {
	sizes := make([]int, len(results))
	total := 0
	for i, result := range results {
		raw, err := json.Marshal(result.Response)
		if err != nil {
			raw = []byte(fmt.Sprintf("%v", result.Response))
		}
		sizes[i] = len(raw)
		total += len(raw)
	}

	truncated := make([]ai.ToolResult, len(results))
	copy(truncated, results)

	for total > budget {
		largest := 0
		for i := range sizes {
			if sizes[i] > sizes[largest] {
				largest = i
			}
		}
		if sizes[largest] == 0 {
			break
		}

		raw, _ := json.Marshal(truncated[largest].Response)
		keep := len(raw) / 2
		if keep > budget {
			keep = budget
		}
		truncated[largest] = ai.ToolResult{
			Name: truncated[largest].Name,
			Response: map[string]any{
				"truncated": true,
				"content":   string(raw[:keep]) + "...",
			},
		}

		total -= sizes[largest]
		sizes[largest] = keep
		total += keep
	}

	return truncated
}

// looksLikeBareName guards the awaiting-full-name fallback: only a short
// utterance of capitalized alphabetic words is taken as a name verbatim.
// Lowercase acknowledgements and follow-up questions fall through to the
// normal dispatch path.
func looksLikeBareName(utterance string) bool {
	parts := strings.Fields(strings.TrimSpace(utterance))
	if len(parts) < 2 || len(parts) > 4 {
		return false
	}
	for _, part := range parts {
		runes := []rune(part)
		if !unicode.IsUpper(runes[0]) {
			return false
		}
		for _, r := range runes[1:] {
			if !unicode.IsLower(r) {
				return false
			}
		}
	}
	return true
}

// modelTurnForCalls synthesizes the backend turn for calls the engine
// decided on itself, so the composition round sees a consistent exchange.
func modelTurnForCalls(calls []ai.Call) *genai.Content {
	parts := make([]*genai.Part, 0, len(calls))
	for _, call := range calls {
		parts = append(parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{Name: call.Name, Args: call.Args},
		})
	}
	return &genai.Content{Role: genai.RoleModel, Parts: parts}
}

func containsTopic(topics []topic.Topic, target topic.Topic) bool {
	for _, t := range topics {
		if t == target {
			return true
		}
	}
	return false
}
