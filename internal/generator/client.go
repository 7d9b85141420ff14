package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/rs/zerolog"

	"github.com/speakeasy-practice/backend/internal/config"
)

// LLMClient is the interface every generator backend satisfies.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Request describes one batch of learning prompts to draft.
type Request struct {
	Topic    string
	Count    int
	Existing []string
}

// Generator wraps an LLMClient and turns its output into phrase sets.
type Generator struct {
	llm    LLMClient
	model  string
	logger zerolog.Logger
}

// NewGenerator picks the backend from cfg: the local CLI, the mock, or the
// Anthropic API, in that order of precedence.
func NewGenerator(cfg config.GeneratorConfig, logger zerolog.Logger) *Generator {
	var llm LLMClient
	model := "mock"

	switch {
	case cfg.UseCLI:
		llm = NewCLIClient(cfg.CLIPath)
		model = "claude-cli"
		logger.Info().Str("cli_path", cfg.CLIPath).Msg("generator using Claude CLI")
	case cfg.Mock:
		llm = NewMockClient()
		logger.Info().Msg("generator using mock data")
	default:
		model = cfg.Model
		llm = NewAPIClient(cfg.APIKey, model, logger)
		logger.Info().Str("model", model).Msg("generator using Anthropic API")
	}

	return &Generator{llm: llm, model: model, logger: logger}
}

// NewWithClient builds a Generator around an existing client.
func NewWithClient(llm LLMClient, model string, logger zerolog.Logger) *Generator {
	return &Generator{llm: llm, model: model, logger: logger}
}

func (g *Generator) ModelName() string {
	return g.model
}

// GenerateSets drafts up to req.Count learning prompts and returns the
// parsed, validated batch. Soft problems found by Warnings are logged.
func (g *Generator) GenerateSets(ctx context.Context, req Request) (*Batch, *LLMResponse, error) {
	if req.Count < 1 {
		return nil, nil, fmt.Errorf("generate sets: count must be positive, got %d", req.Count)
	}

	resp, err := g.llm.Generate(ctx, SystemPrompt(), BuildUserPrompt(req))
	if err != nil {
		return nil, nil, fmt.Errorf("generate sets: %w", err)
	}

	batch, err := ParseResponse(resp.Content)
	if err != nil {
		return nil, resp, fmt.Errorf("parse sets response: %w", err)
	}

	if len(batch.Sets) > req.Count {
		batch.Sets = batch.Sets[:req.Count]
	}
	for _, w := range Warnings(batch) {
		g.logger.Warn().Str("model", g.model).Msg(w)
	}
	g.logger.Debug().
		Int("sets", len(batch.Sets)).
		Int("prompt_tokens", resp.PromptTokens).
		Int("output_tokens", resp.OutputTokens).
		Msg("phrase sets generated")

	return batch, resp, nil
}

// ── Anthropic API client ───────────────────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
	logger zerolog.Logger
}

func NewAPIClient(apiKey, model string, logger zerolog.Logger) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &APIClient{client: &client, model: model, logger: logger}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   4096,
		Temperature: param.NewOpt(0.7),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			c.logger.Warn().Dur("backoff", sleepDuration).Int("attempt", attempt+1).Msg("retrying Anthropic API call")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(sleepDuration):
			}
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		c.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("Anthropic API attempt failed")
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── Mock client for local development ──────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	return &LLMResponse{
		Content:      buildMockJSON(),
		PromptTokens: 400,
		OutputTokens: 900,
	}, nil
}

var mockSets = []struct {
	question string
	answers  []string
}{
	{"What do you usually do on weekends?", []string{"I usually relax at home on weekends.", "I go hiking with friends on Saturday.", "I visit my grandparents every Sunday."}},
	{"What do you eat for breakfast?", []string{"I usually eat eggs and toast.", "I have cereal with milk.", "I just drink a cup of coffee."}},
	{"What is your city like?", []string{"My city is busy and exciting.", "It is quiet with many parks.", "The city has great food and museums."}},
	{"How do you feel about your job?", []string{"I enjoy my job very much.", "My work is challenging but rewarding.", "I am looking for a new position."}},
	{"What is the weather like today?", []string{"It is sunny and warm today.", "The weather is cold and rainy.", "It looks cloudy this morning."}},
}

func buildMockJSON() string {
	var b strings.Builder
	b.WriteString(`{"sets":[`)
	for i, s := range mockSets {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"question":%q,"answers":[`, s.question)
		for j, a := range s.answers {
			if j > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, "%q", a)
		}
		b.WriteString("]}")
	}
	b.WriteString("]}")
	return b.String()
}
