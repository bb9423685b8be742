// Package anthropic adapts the Anthropic Messages API (via anthropic-sdk-go) to llm.Client.
package anthropic

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nachoal/describe-go/llm"
)

const (
	providerName     = "anthropic"
	DefaultModel     = "claude-sonnet-4-5-20250929"
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 4096

	// Anthropic has no response_format switch; JSON is requested in the system prompt.
	jsonInstruction = "Respond with a single JSON object and nothing else."
)

// Client implements the LLM client interface for Anthropic
type Client struct {
	cli     anthropic.Client
	options llm.ClientOptions
}

// NewClient creates a new Anthropic client
func NewClient(opts ...llm.ClientOption) (*Client, error) {
	options := llm.ApplyOptions(llm.ClientOptions{
		Timeout:      defaultTimeout,
		DefaultModel: DefaultModel,
	}, opts...)

	if options.APIKey == "" {
		options.APIKey = strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
		if options.APIKey == "" {
			return nil, fmt.Errorf("%s: %w (set ANTHROPIC_API_KEY)", providerName, llm.ErrMissingAPIKey)
		}
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(options.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(options.Timeout),
	}
	if options.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(options.BaseURL))
	}
	for k, v := range options.Headers {
		reqOpts = append(reqOpts, option.WithHeader(k, v))
	}

	return &Client{
		cli:     anthropic.NewClient(reqOpts...),
		options: options,
	}, nil
}

// Provider returns the backend name
func (c *Client) Provider() string {
	return providerName
}

// Chat sends one Messages API request
func (c *Client) Chat(ctx context.Context, request *llm.ChatRequest) (*llm.ChatResponse, error) {
	model := request.Model
	if model == "" {
		model = c.options.DefaultModel
	}

	params, err := buildParams(request, model)
	if err != nil {
		return nil, err
	}

	msg, err := c.cli.Messages.New(ctx, params)
	if err != nil {
		return nil, translateError(err)
	}

	return parseResponse(msg, request.WantsJSON()), nil
}

// Close cleans up resources
func (c *Client) Close() error {
	return nil
}

func buildParams(request *llm.ChatRequest, model string) (anthropic.MessageNewParams, error) {
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam
	var pending []anthropic.ContentBlockParamUnion

	// Consecutive user messages are folded into one turn so block order is kept.
	flushUser := func() {
		if len(pending) > 0 {
			messages = append(messages, anthropic.NewUserMessage(pending...))
			pending = nil
		}
	}

	for _, msg := range request.Messages {
		switch msg.Role {
		case llm.RoleSystem:
			for _, p := range msg.Content {
				if p.Type != llm.PartTypeText {
					return anthropic.MessageNewParams{}, fmt.Errorf("system message supports text parts only, got %q", p.Type)
				}
				system = append(system, anthropic.TextBlockParam{Text: p.Text})
			}
		case llm.RoleUser:
			blocks, err := toBlocks(msg.Content)
			if err != nil {
				return anthropic.MessageNewParams{}, err
			}
			pending = append(pending, blocks...)
		case llm.RoleAssistant:
			flushUser()
			blocks, err := toBlocks(msg.Content)
			if err != nil {
				return anthropic.MessageNewParams{}, err
			}
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		default:
			return anthropic.MessageNewParams{}, fmt.Errorf("unsupported role %q", msg.Role)
		}
	}
	flushUser()

	if request.WantsJSON() {
		system = append(system, anthropic.TextBlockParam{Text: jsonInstruction})
	}

	maxTokens := int64(defaultMaxTokens)
	if request.MaxTokens > 0 {
		maxTokens = int64(request.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	if len(system) > 0 {
		params.System = system
	}
	if request.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(request.Temperature))
	}

	return params, nil
}

func toBlocks(parts []llm.ContentPart) ([]anthropic.ContentBlockParamUnion, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(parts))
	for _, p := range parts {
		switch p.Type {
		case llm.PartTypeText:
			blocks = append(blocks, anthropic.NewTextBlock(p.Text))
		case llm.PartTypeImageURL:
			if p.ImageURL == nil {
				return nil, fmt.Errorf("image_url part without url")
			}
			mime, data, err := llm.ParseDataURL(p.ImageURL.URL)
			if err != nil {
				return nil, fmt.Errorf("anthropic needs inline image data: %w", err)
			}
			blocks = append(blocks, anthropic.NewImageBlockBase64(mime, base64.StdEncoding.EncodeToString(data)))
		default:
			return nil, fmt.Errorf("unsupported content part type %q", p.Type)
		}
	}
	return blocks, nil
}

func parseResponse(msg *anthropic.Message, wantsJSON bool) *llm.ChatResponse {
	var content strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			content.WriteString(block.AsText().Text)
		}
	}

	text := content.String()
	if wantsJSON {
		text = llm.StripCodeFence(text)
	}

	finishReason := "stop"
	if msg.StopReason == anthropic.StopReasonMaxTokens {
		finishReason = "length"
	}

	return &llm.ChatResponse{
		ID:    msg.ID,
		Model: string(msg.Model),
		Choices: []llm.Choice{{
			Message:      llm.ReplyMessage{Role: llm.RoleAssistant, Content: text},
			FinishReason: finishReason,
		}},
		Usage: &llm.Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
}

func translateError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &llm.APIError{
			Provider:   providerName,
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Error(),
			Err:        err,
		}
	}
	if llm.IsTransportError(err) {
		return &llm.ConnectionError{Provider: providerName, Err: err}
	}
	return fmt.Errorf("%s: %w", providerName, err)
}
