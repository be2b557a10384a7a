package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/talenttrack/hr-assistant/internal/ai"
	"github.com/talenttrack/hr-assistant/internal/session"
)

type fakeChat struct {
	responses []*genai.GenerateContentResponse
	errs      []error
	calls     int
}

func (f *fakeChat) SendMessage(_ context.Context, _ ...genai.Part) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return nil, errors.New("no more scripted responses")
}

type fakeChatCreator struct {
	chat        *fakeChat
	lastConfig  *genai.GenerateContentConfig
	lastHistory []*genai.Content
	created     int
}

func (f *fakeChatCreator) Create(_ context.Context, _ string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	f.created++
	f.lastConfig = config
	f.lastHistory = history
	return f.chat, nil
}

func newTestGenerator(creator *fakeChatCreator) *Generator {
	return &Generator{
		chats:      creator,
		model:      "test-model",
		maxRetries: 3,
		logger:     zap.NewNop(),
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

func callResponse(name string, args map[string]any) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{Name: name, Args: args}}},
			},
		}},
	}
}

func stubSleep(t *testing.T) {
	t.Helper()
	orig := sleep
	sleep = func(time.Duration) {}
	t.Cleanup(func() { sleep = orig })
}

func TestGenerateTurnText(t *testing.T) {
	creator := &fakeChatCreator{chat: &fakeChat{responses: []*genai.GenerateContentResponse{
		textResponse("We have two open roles."),
	}}}
	g := newTestGenerator(creator)

	resp, err := g.GenerateTurn(context.Background(), &ai.Request{
		System:    "route queries",
		Utterance: "what jobs are open?",
		History: session.History{
			{Role: session.RoleUser, Content: "hi"},
			{Role: session.RoleAssistant, Content: "hello"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "We have two open roles." {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if len(resp.Calls) != 0 {
		t.Fatalf("unexpected calls: %v", resp.Calls)
	}

	if creator.lastConfig.SystemInstruction == nil {
		t.Fatal("system instruction not set")
	}
	if len(creator.lastHistory) != 2 {
		t.Fatalf("expected 2 history turns, got %d", len(creator.lastHistory))
	}
	if creator.lastHistory[1].Role != genai.RoleModel {
		t.Fatalf("assistant turn not mapped to model role: %v", creator.lastHistory[1].Role)
	}
}

func TestGenerateTurnFunctionCall(t *testing.T) {
	creator := &fakeChatCreator{chat: &fakeChat{responses: []*genai.GenerateContentResponse{
		callResponse("get_active_jobs", nil),
	}}}
	g := newTestGenerator(creator)

	resp, err := g.GenerateTurn(context.Background(), &ai.Request{Utterance: "open jobs?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Calls) != 1 || resp.Calls[0].Name != "get_active_jobs" {
		t.Fatalf("unexpected calls: %v", resp.Calls)
	}
	if resp.ModelTurn == nil {
		t.Fatal("model turn not preserved")
	}
}

func TestGenerateTurnComposeRound(t *testing.T) {
	creator := &fakeChatCreator{chat: &fakeChat{responses: []*genai.GenerateContentResponse{
		textResponse("Here are the jobs."),
	}}}
	g := newTestGenerator(creator)

	modelTurn := &genai.Content{
		Role:  genai.RoleModel,
		Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{Name: "get_active_jobs"}}},
	}

	_, err := g.GenerateTurn(context.Background(), &ai.Request{
		Utterance: "open jobs?",
		ModelTurn: modelTurn,
		ToolResults: []ai.ToolResult{{
			Name:     "get_active_jobs",
			Response: map[string]any{"jobs": []string{"Backend Engineer"}},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// History must replay the utterance and the backend's own call.
	if len(creator.lastHistory) != 2 {
		t.Fatalf("expected 2 history turns, got %d", len(creator.lastHistory))
	}
	if creator.lastHistory[0].Parts[0].Text != "open jobs?" {
		t.Fatalf("utterance not replayed: %v", creator.lastHistory[0])
	}
	if creator.lastHistory[1] != modelTurn {
		t.Fatal("model turn not replayed")
	}
}

func TestGenerateTurnComposeRequiresModelTurn(t *testing.T) {
	g := newTestGenerator(&fakeChatCreator{chat: &fakeChat{}})

	_, err := g.GenerateTurn(context.Background(), &ai.Request{
		Utterance:   "open jobs?",
		ToolResults: []ai.ToolResult{{Name: "get_active_jobs"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGenerateTurnRetriesTransientErrors(t *testing.T) {
	stubSleep(t)

	creator := &fakeChatCreator{chat: &fakeChat{
		errs: []error{
			genai.APIError{Code: 500, Message: "internal"},
			genai.APIError{Code: 503, Message: "unavailable"},
		},
		responses: []*genai.GenerateContentResponse{
			nil, nil,
			textResponse("recovered"),
		},
	}}
	g := newTestGenerator(creator)

	resp, err := g.GenerateTurn(context.Background(), &ai.Request{Utterance: "hello there"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "recovered" {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if creator.chat.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", creator.chat.calls)
	}
}

func TestGenerateTurnGivesUpAfterMaxRetries(t *testing.T) {
	stubSleep(t)

	creator := &fakeChatCreator{chat: &fakeChat{
		errs: []error{
			genai.APIError{Code: 500, Message: "internal"},
			genai.APIError{Code: 500, Message: "internal"},
			genai.APIError{Code: 500, Message: "internal"},
			genai.APIError{Code: 500, Message: "internal"},
		},
	}}
	g := newTestGenerator(creator)

	_, err := g.GenerateTurn(context.Background(), &ai.Request{Utterance: "hello there"})
	if err == nil {
		t.Fatal("expected error")
	}
	if creator.chat.calls != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", creator.chat.calls)
	}
}

func TestGenerateTurnDoesNotRetryClientErrors(t *testing.T) {
	creator := &fakeChatCreator{chat: &fakeChat{
		errs: []error{genai.APIError{Code: 400, Message: "bad request"}},
	}}
	g := newTestGenerator(creator)

	_, err := g.GenerateTurn(context.Background(), &ai.Request{Utterance: "hello there"})
	if err == nil {
		t.Fatal("expected error")
	}
	if creator.chat.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", creator.chat.calls)
	}
}

func TestGenerateTurnQuotaDelayTooLong(t *testing.T) {
	creator := &fakeChatCreator{chat: &fakeChat{
		errs: []error{genai.APIError{Code: 429, Message: "quota exceeded, retry after 60 seconds"}},
	}}
	g := newTestGenerator(creator)

	_, err := g.GenerateTurn(context.Background(), &ai.Request{Utterance: "hello there"})
	if err == nil {
		t.Fatal("expected error")
	}
	if creator.chat.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", creator.chat.calls)
	}
}

func TestGenerateTurnRetriesShortQuotaDelay(t *testing.T) {
	stubSleep(t)

	creator := &fakeChatCreator{chat: &fakeChat{
		errs: []error{genai.APIError{Code: 429, Message: "quota exceeded, retry after 5 seconds"}},
		responses: []*genai.GenerateContentResponse{
			nil,
			textResponse("recovered"),
		},
	}}
	g := newTestGenerator(creator)

	resp, err := g.GenerateTurn(context.Background(), &ai.Request{Utterance: "hello there"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "recovered" {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
}

func TestGenerateTurnPayloadTooLarge(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "status code", err: genai.APIError{Code: 413, Message: "payload"}},
		{name: "message marker", err: genai.APIError{Code: 400, Message: "Request too large for model"}},
		{name: "rate limit marker", err: genai.APIError{Code: 429, Message: "tokens per minute limit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &fakeChatCreator{chat: &fakeChat{errs: []error{tt.err}}}
			g := newTestGenerator(creator)

			_, err := g.GenerateTurn(context.Background(), &ai.Request{Utterance: "hello there"})
			if !errors.Is(err, ai.ErrPayloadTooLarge) {
				t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
			}
			if creator.chat.calls != 1 {
				t.Fatalf("expected a single attempt, got %d", creator.chat.calls)
			}
		})
	}
}

func TestGenerateTurnEmptyUtterance(t *testing.T) {
	g := newTestGenerator(&fakeChatCreator{chat: &fakeChat{}})

	if _, err := g.GenerateTurn(context.Background(), &ai.Request{Utterance: "  "}); err == nil {
		t.Fatal("expected error")
	}
}

func TestBackoffIsCapped(t *testing.T) {
	if backoff(1) != time.Second {
		t.Fatalf("unexpected first backoff: %v", backoff(1))
	}
	if backoff(2) != 2*time.Second {
		t.Fatalf("unexpected second backoff: %v", backoff(2))
	}
	if backoff(10) != backoffMax {
		t.Fatalf("backoff not capped: %v", backoff(10))
	}
}
