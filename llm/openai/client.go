package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nachoal/describe-go/llm"
)

const (
	defaultTimeout = 60 * time.Second
	// maxErrorBody caps how much of a failed response is kept in the error
	maxErrorBody = 4 << 10
)

// Client implements the LLM client interface for OpenAI and any
// OpenAI-compatible chat completions endpoint
type Client struct {
	preset     Preset
	options    llm.ClientOptions
	httpClient *http.Client
}

// NewClient creates a new OpenAI client
func NewClient(opts ...llm.ClientOption) (*Client, error) {
	p, _ := Lookup("openai")
	return NewPresetClient(p, opts...)
}

// NewPresetClient creates a client for an OpenAI-compatible preset
func NewPresetClient(p Preset, opts ...llm.ClientOption) (*Client, error) {
	baseURL := p.BaseURL
	if p.BaseURLEnv != "" {
		if envURL := strings.TrimSpace(os.Getenv(p.BaseURLEnv)); envURL != "" {
			baseURL = envURL
		}
	}

	options := llm.ApplyOptions(llm.ClientOptions{
		BaseURL:      baseURL,
		Timeout:      defaultTimeout,
		DefaultModel: p.DefaultModel,
	}, opts...)
	options.BaseURL = strings.TrimRight(options.BaseURL, "/")

	// Get API key from environment if not provided
	if options.APIKey == "" && p.APIKeyEnv != "" {
		options.APIKey = strings.TrimSpace(os.Getenv(p.APIKeyEnv))
		if options.APIKey == "" {
			return nil, fmt.Errorf("%s: %w (set %s)", p.Name, llm.ErrMissingAPIKey, p.APIKeyEnv)
		}
	}

	return &Client{
		preset:     p,
		options:    options,
		httpClient: &http.Client{Timeout: options.Timeout},
	}, nil
}

// Provider returns the preset name
func (c *Client) Provider() string {
	return c.preset.Name
}

// Chat sends one chat completion request. It never retries.
func (c *Client) Chat(ctx context.Context, request *llm.ChatRequest) (*llm.ChatResponse, error) {
	// Set default model if not specified
	model := request.Model
	if model == "" {
		model = c.options.DefaultModel
	}

	body, err := json.Marshal(c.buildRequest(request, model))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.options.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &llm.ConnectionError{Provider: c.preset.Name, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.ConnectionError{Provider: c.preset.Name, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp.StatusCode, respBody)
	}

	response := &llm.ChatResponse{}
	if err := json.Unmarshal(respBody, response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	for i := range response.Choices {
		response.Choices[i].Message.Content = cleanContent(response.Choices[i].Message.Content)
	}
	return response, nil
}

// Close cleans up resources
func (c *Client) Close() error {
	// Nothing to clean up for HTTP client
	return nil
}

// setHeaders sets common headers for requests
func (c *Client) setHeaders(req *http.Request) {
	if c.options.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.options.APIKey)
	}
	req.Header.Set("User-Agent", "describe-go/1.0")

	if c.options.Organization != "" {
		req.Header.Set("OpenAI-Organization", c.options.Organization)
	}

	// Add custom headers
	for k, v := range c.options.Headers {
		req.Header.Set(k, v)
	}
}

// apiError decodes the provider's error envelope. Some compatible servers
// return a bare string or a non-JSON body, so fall back to the raw text.
func (c *Client) apiError(status int, body []byte) error {
	apiErr := &llm.APIError{Provider: c.preset.Name, StatusCode: status}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		var detail struct {
			Message string          `json:"message"`
			Type    string          `json:"type"`
			Code    json.RawMessage `json:"code"`
		}
		var text string
		switch {
		case json.Unmarshal(envelope.Error, &detail) == nil:
			apiErr.Message = detail.Message
			apiErr.Type = detail.Type
			apiErr.Code = rawCode(detail.Code)
		case json.Unmarshal(envelope.Error, &text) == nil:
			apiErr.Message = text
		}
	}
	if apiErr.Message == "" {
		raw := strings.TrimSpace(string(body))
		if len(raw) > maxErrorBody {
			raw = raw[:maxErrorBody]
		}
		apiErr.Message = raw
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	apiErr.Err = errors.New(apiErr.Message)
	return apiErr
}

// rawCode accepts both "code": "invalid_api_key" and "code": 401
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// buildRequest creates the wire request from the generic ChatRequest.
// o-series reasoning models take max_completion_tokens and reject a custom temperature.
func (c *Client) buildRequest(request *llm.ChatRequest, model string) map[string]interface{} {
	reqMap := map[string]interface{}{
		"model":    model,
		"messages": request.Messages,
	}

	modelLower := strings.ToLower(model)
	isReasoningModel := strings.HasPrefix(modelLower, "o1") ||
		strings.HasPrefix(modelLower, "o3") ||
		strings.HasPrefix(modelLower, "o4")

	if request.Temperature > 0 && !isReasoningModel {
		reqMap["temperature"] = request.Temperature
	}
	if request.ResponseFormat != nil {
		reqMap["response_format"] = request.ResponseFormat
	}
	if request.MaxTokens > 0 {
		if isReasoningModel {
			reqMap["max_completion_tokens"] = request.MaxTokens
		} else {
			reqMap["max_tokens"] = request.MaxTokens
		}
	}

	return reqMap
}
