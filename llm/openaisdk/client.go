// Package openaisdk adapts the official OpenAI Go SDK to llm.Client.
package openaisdk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/nachoal/describe-go/llm"
)

const (
	providerName   = "openai-sdk"
	DefaultModel   = "gpt-4o"
	defaultTimeout = 60 * time.Second
)

// Client implements llm.Client on top of github.com/openai/openai-go
type Client struct {
	cli     openai.Client
	options llm.ClientOptions
}

// NewClient creates an SDK-backed client. SDK retries are disabled.
func NewClient(opts ...llm.ClientOption) (*Client, error) {
	options := llm.ApplyOptions(llm.ClientOptions{
		Timeout:      defaultTimeout,
		DefaultModel: DefaultModel,
	}, opts...)

	if options.APIKey == "" {
		options.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
		if options.APIKey == "" {
			return nil, fmt.Errorf("%s: %w (set OPENAI_API_KEY)", providerName, llm.ErrMissingAPIKey)
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
	if options.Organization != "" {
		reqOpts = append(reqOpts, option.WithOrganization(options.Organization))
	}
	for k, v := range options.Headers {
		reqOpts = append(reqOpts, option.WithHeader(k, v))
	}

	return &Client{
		cli:     openai.NewClient(reqOpts...),
		options: options,
	}, nil
}

// Provider returns the backend name
func (c *Client) Provider() string {
	return providerName
}

// Chat sends one chat completion through the SDK
func (c *Client) Chat(ctx context.Context, request *llm.ChatRequest) (*llm.ChatResponse, error) {
	model := request.Model
	if model == "" {
		model = c.options.DefaultModel
	}

	params, err := buildParams(request, model)
	if err != nil {
		return nil, err
	}

	completion, err := c.cli.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, translateError(err)
	}

	return toChatResponse(completion), nil
}

// Close cleans up resources
func (c *Client) Close() error {
	return nil
}

func buildParams(request *llm.ChatRequest, model string) (openai.ChatCompletionNewParams, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(request.Messages))
	for _, msg := range request.Messages {
		switch msg.Role {
		case llm.RoleSystem:
			parts := make([]openai.ChatCompletionContentPartTextParam, 0, len(msg.Content))
			for _, p := range msg.Content {
				if p.Type != llm.PartTypeText {
					return openai.ChatCompletionNewParams{}, fmt.Errorf("system message supports text parts only, got %q", p.Type)
				}
				parts = append(parts, openai.ChatCompletionContentPartTextParam{Text: p.Text})
			}
			messages = append(messages, openai.SystemMessage(parts))
		case llm.RoleUser:
			parts, err := toContentParts(msg.Content)
			if err != nil {
				return openai.ChatCompletionNewParams{}, err
			}
			messages = append(messages, openai.UserMessage(parts))
		case llm.RoleAssistant:
			var text strings.Builder
			for _, p := range msg.Content {
				text.WriteString(p.Text)
			}
			messages = append(messages, openai.AssistantMessage(text.String()))
		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("unsupported role %q", msg.Role)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: messages,
	}

	modelLower := strings.ToLower(model)
	isReasoningModel := strings.HasPrefix(modelLower, "o1") ||
		strings.HasPrefix(modelLower, "o3") ||
		strings.HasPrefix(modelLower, "o4")

	if request.Temperature > 0 && !isReasoningModel {
		params.Temperature = openai.Float(float64(request.Temperature))
	}
	if request.MaxTokens > 0 {
		if isReasoningModel {
			params.MaxCompletionTokens = openai.Int(int64(request.MaxTokens))
		} else {
			params.MaxTokens = openai.Int(int64(request.MaxTokens))
		}
	}
	if request.WantsJSON() {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	return params, nil
}

func toContentParts(parts []llm.ContentPart) ([]openai.ChatCompletionContentPartUnionParam, error) {
	out := make([]openai.ChatCompletionContentPartUnionParam, 0, len(parts))
	for _, p := range parts {
		switch p.Type {
		case llm.PartTypeText:
			out = append(out, openai.TextContentPart(p.Text))
		case llm.PartTypeImageURL:
			if p.ImageURL == nil {
				return nil, fmt.Errorf("image_url part without url")
			}
			out = append(out, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL:    p.ImageURL.URL,
				Detail: p.ImageURL.Detail,
			}))
		default:
			return nil, fmt.Errorf("unsupported content part type %q", p.Type)
		}
	}
	return out, nil
}

func toChatResponse(completion *openai.ChatCompletion) *llm.ChatResponse {
	resp := &llm.ChatResponse{
		ID:      completion.ID,
		Object:  string(completion.Object),
		Created: completion.Created,
		Model:   completion.Model,
		Usage: &llm.Usage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}
	for _, ch := range completion.Choices {
		resp.Choices = append(resp.Choices, llm.Choice{
			Index:        int(ch.Index),
			FinishReason: ch.FinishReason,
			Message: llm.ReplyMessage{
				Role:    llm.RoleAssistant,
				Content: ch.Message.Content,
			},
		})
	}
	return resp
}

// translateError maps SDK errors onto llm.APIError / llm.ConnectionError
func translateError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &llm.APIError{
			Provider:   providerName,
			StatusCode: apiErr.StatusCode,
			Type:       apiErr.Type,
			Code:       apiErr.Code,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	if llm.IsTransportError(err) {
		return &llm.ConnectionError{Provider: providerName, Err: err}
	}
	return fmt.Errorf("%s: %w", providerName, err)
}
