// Package gemini implements the generation backend over the Gemini API,
// including the bounded retry/backoff policy for transient failures.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/talenttrack/hr-assistant/internal/ai"
	"github.com/talenttrack/hr-assistant/internal/logger"
	"github.com/talenttrack/hr-assistant/internal/session"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultMaxRetries = 3

	backoffBase = time.Second
	backoffMax  = 5 * time.Second

	// maxQuotaDelay is the longest server-advertised quota delay worth
	// waiting out. Anything longer fails the turn immediately.
	maxQuotaDelay = 30 * time.Second
)

// sleep is stubbed in tests.
var sleep = time.Sleep

var retryAfterPattern = regexp.MustCompile(`retry after (\d+)`)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type apiChats struct {
	client *genai.Client
}

func (a *apiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	return a.client.Chats.Create(ctx, model, config, history)
}

// Generator is the Gemini-backed ai.Generator.
type Generator struct {
	chats      chatCreator
	model      string
	maxRetries int
	logger     *zap.Logger
}

// NewGenerator creates a Generator for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Generator{
		chats:      &apiChats{client: client},
		model:      model,
		maxRetries: maxRetries,
		logger:     logger.WithCommonFields(log, "gemini", model),
	}, nil
}

// GenerateTurn runs one backend turn with the bounded retry policy.
// Transient errors are retried with strictly increasing backoff up to the
// attempt limit; payload-size rejections surface as ai.ErrPayloadTooLarge
// without retrying so the caller can degrade once.
func (g *Generator) GenerateTurn(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	config, history, parts, err := g.buildTurn(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		chat, err := g.chats.Create(ctx, g.model, config, history)
		if err != nil {
			return nil, fmt.Errorf("create chat: %w", err)
		}

		resp, err := chat.SendMessage(ctx, parts...)
		if err == nil {
			return parseResponse(resp)
		}

		if isPayloadTooLarge(err) {
			return nil, fmt.Errorf("%w: %s", ai.ErrPayloadTooLarge, err)
		}

		if !isRetryable(err) {
			return nil, fmt.Errorf("generate turn: %w", err)
		}

		lastErr = err
		if attempt == g.maxRetries {
			break
		}

		wait := backoff(attempt)
		g.logger.Warn("transient backend error, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		if err := waitFor(ctx, wait); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("generate turn after %d attempts: %w", g.maxRetries, lastErr)
}

func (g *Generator) buildTurn(req *ai.Request) (*genai.GenerateContentConfig, []*genai.Content, []genai.Part, error) {
	if req == nil {
		return nil, nil, nil, errors.New("request is required")
	}

	config := &genai.GenerateContentConfig{}
	if system := strings.TrimSpace(req.System); system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if len(req.Capabilities) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: req.Capabilities}}
	}

	history := historyContents(req.History)

	if len(req.ToolResults) == 0 {
		if strings.TrimSpace(req.Utterance) == "" {
			return nil, nil, nil, errors.New("utterance must not be empty")
		}
		return config, history, []genai.Part{{Text: req.Utterance}}, nil
	}

	// Composition round: the utterance and the backend's own capability
	// request become history, and the executed results are the new parts.
	if req.ModelTurn == nil {
		return nil, nil, nil, errors.New("model turn is required to compose capability results")
	}

	history = append(history, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: req.Utterance}},
	})
	history = append(history, req.ModelTurn)

	parts := make([]genai.Part, 0, len(req.ToolResults))
	for _, result := range req.ToolResults {
		parts = append(parts, genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				Name:     result.Name,
				Response: result.Response,
			},
		})
	}

	return config, history, parts, nil
}

func historyContents(history session.History) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := genai.RoleUser
		if turn.Role == session.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Content}},
		})
	}
	return contents
}

func parseResponse(resp *genai.GenerateContentResponse) (*ai.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, errors.New("gemini api returned no candidates")
	}

	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return nil, errors.New("gemini api returned empty candidate")
	}

	result := &ai.Response{ModelTurn: candidate.Content}

	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			result.Calls = append(result.Calls, ai.Call{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
			continue
		}
		if text := strings.TrimSpace(part.Text); text != "" {
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	result.Text = builder.String()
	if result.Text == "" && len(result.Calls) == 0 {
		return nil, errors.New("gemini api returned empty response")
	}

	return result, nil
}

// waitFor blocks for the given duration or until the context is done.
func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func backoff(attempt int) time.Duration {
	wait := backoffBase << (attempt - 1)
	if wait > backoffMax {
		wait = backoffMax
	}
	return wait
}

func isRetryable(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	if apiErr.Code == 429 {
		return quotaDelay(apiErr.Message) <= maxQuotaDelay
	}

	return apiErr.Code >= 500
}

func isPayloadTooLarge(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == 413 {
		return true
	}
	message := strings.ToLower(apiErr.Message)
	return strings.Contains(message, "request too large") ||
		strings.Contains(message, "tokens per minute")
}

// quotaDelay extracts a server-advertised "retry after N seconds" hint.
// Zero when the message carries no hint.
func quotaDelay(message string) time.Duration {
	m := retryAfterPattern.FindStringSubmatch(strings.ToLower(message))
	if m == nil {
		return 0
	}
	seconds, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// Model returns the configured model identifier.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
