// Package describe sends images or text to a multimodal model in a single
// request and returns the model's JSON reply as a map.
//
// Every call builds three messages in a fixed order: the system prompt, the
// user prompt wrapped in a JSON instruction, and the encoded content items.
// Exactly one request is made. Failures come back as *Error with a Kind.
package describe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/nachoal/describe-go/llm"
)

const (
	DefaultModel       = "gpt-4o"
	DefaultMaxTokens   = 1500
	DefaultTemperature = 0.3

	instructionTemplate = "Please respond specifically to the user's prompt in JSON format: %s."
)

// Describer holds the fixed generation parameters for a client.
// It is immutable after New and safe for concurrent use if the client is.
type Describer struct {
	client      llm.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *slog.Logger
}

// Option configures a Describer
type Option func(*Describer)

// WithModel overrides the model name sent with each request
func WithModel(model string) Option {
	return func(d *Describer) {
		if model != "" {
			d.model = model
		}
	}
}

// WithMaxTokens overrides the output length cap
func WithMaxTokens(n int) Option {
	return func(d *Describer) {
		if n > 0 {
			d.maxTokens = n
		}
	}
}

// WithTemperature overrides the sampling temperature
func WithTemperature(t float32) Option {
	return func(d *Describer) {
		if t > 0 {
			d.temperature = t
		}
	}
}

// WithLogger sets the logger used for request and failure diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(d *Describer) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a Describer around client
func New(client llm.Client, opts ...Option) *Describer {
	d := &Describer{
		client:      client,
		model:       DefaultModel,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Describe sends items with the given prompts and returns the decoded JSON object.
// isImageType applies to every item: true embeds each as a base64 PNG data URL,
// false sends each as literal text.
func Describe(ctx context.Context, client llm.Client, items []Content, systemPrompt, userPrompt string, isImageType bool) (map[string]any, error) {
	return New(client).Describe(ctx, items, systemPrompt, userPrompt, isImageType)
}

// DescribeOne is Describe for a single item
func DescribeOne(ctx context.Context, client llm.Client, item Content, systemPrompt, userPrompt string, isImageType bool) (map[string]any, error) {
	return New(client).DescribeOne(ctx, item, systemPrompt, userPrompt, isImageType)
}

// DescribeOne promotes item to a one-element sequence and calls Describe
func (d *Describer) DescribeOne(ctx context.Context, item Content, systemPrompt, userPrompt string, isImageType bool) (map[string]any, error) {
	return d.Describe(ctx, Normalize(item), systemPrompt, userPrompt, isImageType)
}

// Describe makes exactly one request. On failure the result is nil and the
// error is an *Error.
func (d *Describer) Describe(ctx context.Context, items []Content, systemPrompt, userPrompt string, isImageType bool) (map[string]any, error) {
	if d.client == nil {
		return nil, &Error{Kind: KindInvalidInput, Message: "no model client configured"}
	}

	request, err := d.buildRequest(Normalize(items...), systemPrompt, userPrompt, isImageType)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("sending describe request",
		"provider", llm.ProviderName(d.client),
		"model", request.Model,
		"items", len(items),
		"image", isImageType,
	)

	response, err := d.client.Chat(ctx, request)
	if err == nil {
		var result map[string]any
		result, err = decodeReply(response)
		if err == nil {
			return result, nil
		}
	}

	classified := classify(err)
	d.logger.Warn("describe request failed",
		"provider", llm.ProviderName(d.client),
		"kind", classified.Kind.String(),
		"error", err,
	)
	return nil, classified
}

// buildRequest assembles the three-message prompt bundle
func (d *Describer) buildRequest(items []Content, systemPrompt, userPrompt string, isImageType bool) (*llm.ChatRequest, error) {
	if len(items) == 0 {
		return nil, &Error{Kind: KindInvalidInput, Message: "no content items to describe"}
	}

	return &llm.ChatRequest{
		Model: d.model,
		Messages: []llm.Message{
			{
				Role:    llm.RoleSystem,
				Content: []llm.ContentPart{llm.TextPart(systemPrompt)},
			},
			{
				Role:    llm.RoleUser,
				Content: []llm.ContentPart{llm.TextPart(fmt.Sprintf(instructionTemplate, userPrompt))},
			},
			{
				Role:    llm.RoleUser,
				Content: encodeParts(items, isImageType),
			},
		},
		MaxTokens:      d.maxTokens,
		Temperature:    d.temperature,
		ResponseFormat: llm.JSONObjectFormat,
	}, nil
}

// decodeReply parses the first choice as a JSON object
func decodeReply(response *llm.ChatResponse) (map[string]any, error) {
	text, ok := response.Text()
	if !ok {
		return nil, &responseFormatError{reason: "reply has no choices"}
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, &responseFormatError{reason: "decode reply", err: err}
	}
	if result == nil {
		// the literal "null" decodes without error
		return nil, &responseFormatError{reason: "reply is not a JSON object"}
	}
	return result, nil
}
