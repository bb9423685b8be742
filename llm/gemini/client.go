// Package gemini adapts the Gemini API (via google.golang.org/genai) to llm.Client.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/nachoal/describe-go/llm"
)

const (
	providerName   = "gemini"
	DefaultModel   = "gemini-2.5-flash"
	defaultTimeout = 60 * time.Second
)

// Client implements the LLM client interface for Gemini
type Client struct {
	cli     *genai.Client
	options llm.ClientOptions
}

// NewClient creates a Gemini client. The key falls back to GEMINI_API_KEY, then GOOGLE_API_KEY.
func NewClient(ctx context.Context, opts ...llm.ClientOption) (*Client, error) {
	options := llm.ApplyOptions(llm.ClientOptions{
		Timeout:      defaultTimeout,
		DefaultModel: DefaultModel,
	}, opts...)

	if options.APIKey == "" {
		for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if v := strings.TrimSpace(os.Getenv(env)); v != "" {
				options.APIKey = v
				break
			}
		}
		if options.APIKey == "" {
			return nil, fmt.Errorf("%s: %w (set GEMINI_API_KEY)", providerName, llm.ErrMissingAPIKey)
		}
	}

	cfg := &genai.ClientConfig{
		APIKey:     options.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: options.Timeout},
	}
	if options.BaseURL != "" || len(options.Headers) > 0 {
		headers := http.Header{}
		for k, v := range options.Headers {
			headers.Set(k, v)
		}
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: options.BaseURL, Headers: headers}
	}

	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{cli: cli, options: options}, nil
}

// Provider returns the backend name
func (c *Client) Provider() string {
	return providerName
}

// Chat sends one GenerateContent request
func (c *Client) Chat(ctx context.Context, request *llm.ChatRequest) (*llm.ChatResponse, error) {
	model := request.Model
	if model == "" {
		model = c.options.DefaultModel
	}

	contents, config, err := buildContents(request)
	if err != nil {
		return nil, err
	}

	resp, err := c.cli.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, translateError(err)
	}

	return toChatResponse(resp, model), nil
}

// Close cleans up resources
func (c *Client) Close() error {
	return nil
}

func buildContents(request *llm.ChatRequest) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	config := &genai.GenerateContentConfig{}
	var contents []*genai.Content

	for _, msg := range request.Messages {
		parts, err := toParts(msg.Content)
		if err != nil {
			return nil, nil, err
		}
		switch msg.Role {
		case llm.RoleSystem:
			if config.SystemInstruction == nil {
				config.SystemInstruction = &genai.Content{}
			}
			config.SystemInstruction.Parts = append(config.SystemInstruction.Parts, parts...)
		case llm.RoleUser:
			contents = append(contents, &genai.Content{Role: "user", Parts: parts})
		case llm.RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: parts})
		default:
			return nil, nil, fmt.Errorf("unsupported role %q", msg.Role)
		}
	}

	if request.Temperature > 0 {
		config.Temperature = genai.Ptr(request.Temperature)
	}
	if request.MaxTokens > 0 {
		config.MaxOutputTokens = int32(request.MaxTokens)
	}
	if request.WantsJSON() {
		config.ResponseMIMEType = "application/json"
	}

	return contents, config, nil
}

func toParts(parts []llm.ContentPart) ([]*genai.Part, error) {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		switch p.Type {
		case llm.PartTypeText:
			out = append(out, &genai.Part{Text: p.Text})
		case llm.PartTypeImageURL:
			if p.ImageURL == nil {
				return nil, fmt.Errorf("image_url part without url")
			}
			mime, data, err := llm.ParseDataURL(p.ImageURL.URL)
			if err != nil {
				return nil, fmt.Errorf("gemini needs inline image data: %w", err)
			}
			out = append(out, &genai.Part{InlineData: &genai.Blob{MIMEType: mime, Data: data}})
		default:
			return nil, fmt.Errorf("unsupported content part type %q", p.Type)
		}
	}
	return out, nil
}

func toChatResponse(resp *genai.GenerateContentResponse, model string) *llm.ChatResponse {
	out := &llm.ChatResponse{Model: model}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if len(resp.Candidates) > 0 {
		finish := "stop"
		if resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
			finish = "length"
		}
		out.Choices = []llm.Choice{{
			Message:      llm.ReplyMessage{Role: llm.RoleAssistant, Content: resp.Text()},
			FinishReason: finish,
		}}
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &llm.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out
}

func translateError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		out := &llm.APIError{
			Provider:   providerName,
			StatusCode: apiErr.Code,
			Code:       apiErr.Status,
			Message:    apiErr.Message,
			Err:        err,
		}
		// a rejected key is a 400 INVALID_ARGUMENT with an ErrorInfo reason
		if hasReason(apiErr.Details, "API_KEY_INVALID") {
			out.Type = "authentication_error"
		}
		return out
	}
	if llm.IsTransportError(err) {
		return &llm.ConnectionError{Provider: providerName, Err: err}
	}
	return fmt.Errorf("%s: %w", providerName, err)
}

// hasReason reports whether any google.rpc.ErrorInfo detail carries reason
func hasReason(details []map[string]any, reason string) bool {
	for _, d := range details {
		if r, ok := d["reason"].(string); ok && strings.EqualFold(r, reason) {
			return true
		}
	}
	return false
}
