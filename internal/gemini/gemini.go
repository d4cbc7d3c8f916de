// Package gemini builds exam-question prompts and runs them against the
// Gemini API, with ordered model fallback and per-credential client caching.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/patrickmn/go-cache"
	"google.golang.org/api/option"
)

const (
	// MaxContentChars is the source-text budget for one prompt. Longer
	// content is cut and marked so latency and cost stay bounded.
	MaxContentChars = 7000
	// TruncationMarker is appended when the source text was cut.
	TruncationMarker = "\n[Content truncated for optimization]"
	// maxErrorDisplayLength bounds the error text surfaced to users.
	maxErrorDisplayLength = 200
)

// ModelPreference is the ordered list of model identifiers to try. The
// first one that answers an initialization probe is used.
var ModelPreference = []string{"gemini-2.0-flash", "gemini-1.5-flash", "gemini-1.5-pro"}

const systemInstruction = "You are an expert educational question generator. " +
	"Generate clear, concise, and well-structured questions that test understanding. " +
	"Avoid unnecessary explanations. Use proper punctuation and formatting."

// ErrModelUnavailable means no candidate model could be initialized.
var ErrModelUnavailable = errors.New("no compatible Gemini model found")

// ErrQuotaExceeded means the external service reported quota exhaustion.
// The caller is expected to start the admission lockout on seeing it.
var ErrQuotaExceeded = errors.New("API quota exceeded")

// GenerationError is any non-quota failure from the external call.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("error generating questions: %s", e.Message)
}

// Request carries the user parameters for one generation.
type Request struct {
	SourceText string
	MCQCount   int
	ShortCount int
	Difficulty string
	TopicFocus string
}

// ModelClient abstracts the backing generative model so tests can substitute
// a mock.
type ModelClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModelFactory initializes a ModelClient for an API key.
type ModelFactory func(ctx context.Context, apiKey string) (ModelClient, error)

// Generator produces exam questions from extracted document text.
type Generator struct {
	factory ModelFactory
	clients *cache.Cache // API key -> ModelClient
}

// NewGenerator creates a Generator backed by the Gemini SDK.
func NewGenerator() *Generator {
	return NewGeneratorWithFactory(newGeminiModel)
}

// NewGeneratorWithFactory creates a Generator with a custom model factory.
// Used by tests to avoid network calls.
func NewGeneratorWithFactory(factory ModelFactory) *Generator {
	return &Generator{
		factory: factory,
		clients: cache.New(cache.NoExpiration, 0),
	}
}

// Generate builds the prompt for req and runs it against the model selected
// for apiKey. The caller must have consulted the admission gate and recorded
// the request before calling. The raw generated text is returned on success.
func (g *Generator) Generate(ctx context.Context, apiKey string, req Request) (string, error) {
	model, err := g.client(ctx, apiKey)
	if err != nil {
		return "", err
	}

	prompt := BuildPrompt(req)

	output, err := model.Generate(ctx, prompt)
	if err != nil {
		return "", Classify(err)
	}
	if strings.TrimSpace(output) == "" {
		return "", &GenerationError{Message: "model returned an empty response"}
	}
	return output, nil
}

// client returns the cached ModelClient for apiKey, initializing it on
// first use.
func (g *Generator) client(ctx context.Context, apiKey string) (ModelClient, error) {
	if x, found := g.clients.Get(apiKey); found {
		return x.(ModelClient), nil
	}

	model, err := g.factory(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	g.clients.Set(apiKey, model, cache.NoExpiration)
	return model, nil
}

// BuildPrompt renders the deterministic question-generation prompt,
// truncating the source text to MaxContentChars.
func BuildPrompt(req Request) string {
	content, truncated := TruncateRunes(req.SourceText, MaxContentChars)
	if truncated {
		content += TruncationMarker
	}

	topic := req.TopicFocus
	if strings.TrimSpace(topic) == "" {
		topic = "All topics"
	}

	return fmt.Sprintf(`Generate %d MCQs and %d short questions.
Difficulty: %s
Topic: %s

Content:
%s

=== MULTIPLE CHOICE (%d) ===
Q1. [Question]
A) [Option A]
B) [Option B]
C) [Option C]
D) [Option D]
Answer: [A/B/C/D]

=== SHORT ANSWER (%d) ===
Q1. [Question]
Answer: [2-3 lines]`,
		req.MCQCount, req.ShortCount, req.Difficulty, topic, content,
		req.MCQCount, req.ShortCount)
}

// Classify maps an external-call error onto the error taxonomy: quota or
// rate-limit signals become ErrQuotaExceeded, everything else a
// GenerationError with a display-bounded message.
func Classify(err error) error {
	if IsQuotaError(err) {
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, truncateMessage(err.Error()))
	}
	return &GenerationError{Message: truncateMessage(err.Error())}
}

// IsQuotaError reports whether err looks like a quota or rate-limit failure.
// The match is a best-effort heuristic on the message text: code 429 or the
// words "quota"/"exceeded" anywhere.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	return strings.Contains(msg, "429") ||
		strings.Contains(lower, "quota") ||
		strings.Contains(lower, "exceeded")
}

func truncateMessage(msg string) string {
	msg, _ = TruncateRunes(msg, maxErrorDisplayLength)
	return msg
}

// TruncateRunes cuts s after at most limit characters, never splitting a
// multi-byte rune, so the result stays valid UTF-8. The second result
// reports whether anything was cut.
func TruncateRunes(s string, limit int) (string, bool) {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i], true
		}
		count++
	}
	return s, false
}

// geminiModel adapts a selected genai model to the ModelClient interface.
type geminiModel struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// newGeminiModel creates a Gemini client for apiKey and selects the first
// model from ModelPreference that answers a one-token CountTokens probe.
func newGeminiModel(ctx context.Context, apiKey string) (ModelClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	var lastErr error
	for _, name := range ModelPreference {
		model := client.GenerativeModel(name)
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemInstruction)},
		}
		if _, err := model.CountTokens(ctx, genai.Text("ping")); err != nil {
			log.Printf("WARN: model %s failed initialization probe: %v", name, err)
			lastErr = err
			continue
		}
		log.Printf("INFO: using model %s", name)
		return &geminiModel{client: client, model: model}, nil
	}

	client.Close()
	if lastErr != nil {
		return nil, fmt.Errorf("%w: last error: %v", ErrModelUnavailable, lastErr)
	}
	return nil, ErrModelUnavailable
}

// Generate runs the prompt and concatenates the text parts of the first
// candidate.
func (m *geminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := m.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no content generated")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}
