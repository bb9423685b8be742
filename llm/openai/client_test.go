package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nachoal/describe-go/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(llm.WithAPIKey("sk-test"), llm.WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)
	return c
}

func TestChat_SendsRequestAndParsesReply(t *testing.T) {
	var got map[string]interface{}
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"id":"x","choices":[{"index":0,"message":{"role":"assistant","content":"{\"answer\":42}"},"finish_reason":"stop"}]}`))
	})

	resp, err := c.Chat(context.Background(), &llm.ChatRequest{
		Model:          "gpt-4o",
		Messages:       []llm.Message{{Role: llm.RoleUser, Content: []llm.ContentPart{llm.TextPart("hi")}}},
		Temperature:    0.3,
		MaxTokens:      1500,
		ResponseFormat: llm.JSONObjectFormat,
	})
	require.NoError(t, err)
	text, ok := resp.Text()
	require.True(t, ok)
	assert.Equal(t, `{"answer":42}`, text)
	assert.Equal(t, 1, calls)

	assert.Equal(t, "gpt-4o", got["model"])
	assert.EqualValues(t, 1500, got["max_tokens"])
	assert.InDelta(t, 0.3, got["temperature"], 1e-6)
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, got["response_format"])
}

func TestChat_ReasoningModelUsesMaxCompletionTokens(t *testing.T) {
	c := &Client{}
	req := c.buildRequest(&llm.ChatRequest{Temperature: 0.3, MaxTokens: 10}, "o3-mini")

	assert.NotContains(t, req, "temperature")
	assert.NotContains(t, req, "max_tokens")
	assert.Equal(t, 10, req["max_completion_tokens"])
}

func TestChat_DoesNotRetryOnRateLimit(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"requests","code":"rate_limit_exceeded"}}`))
	})

	_, err := c.Chat(context.Background(), &llm.ChatRequest{})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "rate_limit_exceeded", apiErr.Code)
	assert.Equal(t, "slow down", apiErr.Message)
	assert.True(t, apiErr.IsRateLimit())
}

func TestChat_AuthenticationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	})

	_, err := c.Chat(context.Background(), &llm.ChatRequest{})
	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsAuthentication())
	assert.Equal(t, "openai", apiErr.Provider)
}

func TestChat_NonJSONErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	_, err := c.Chat(context.Background(), &llm.ChatRequest{})
	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "upstream exploded", apiErr.Message)
	assert.False(t, apiErr.IsRateLimit())
	assert.False(t, apiErr.IsAuthentication())
}

func TestChat_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(llm.WithAPIKey("sk-test"), llm.WithBaseURL(url))
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), &llm.ChatRequest{})
	var connErr *llm.ConnectionError
	require.True(t, errors.As(err, &connErr), "got %T: %v", err, err)
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewClient()
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrMissingAPIKey))
}

func TestNewPresetClient_LocalServerNeedsNoKey(t *testing.T) {
	t.Setenv("LM_STUDIO_URL", "http://127.0.0.1:9999/v1/")
	p, ok := Lookup("LMStudio")
	require.True(t, ok)

	c, err := NewPresetClient(p)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9999/v1", c.options.BaseURL)
	assert.Equal(t, "lmstudio", c.Provider())
}

func TestPresets_Sorted(t *testing.T) {
	ps := Presets()
	require.NotEmpty(t, ps)
	for i := 1; i < len(ps); i++ {
		assert.Less(t, ps[i-1].Name, ps[i].Name)
	}
}

func TestChat_StripsHarmonyChannels(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"<|channel|>analysis<|message|>JSON please<|end|><|start|>assistant<|channel|>final<|message|>{\"ok\":true}"}}]}`))
	})

	resp, err := c.Chat(context.Background(), &llm.ChatRequest{Model: "gpt-oss-20b"})
	require.NoError(t, err)
	text, ok := resp.Text()
	require.True(t, ok)
	assert.Equal(t, `{"ok":true}`, text)
}
