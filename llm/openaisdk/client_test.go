package openaisdk

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

func serve(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(llm.WithAPIKey("sk-test"), llm.WithBaseURL(srv.URL+"/v1/"))
	require.NoError(t, err)
	return c
}

func describeRequest() *llm.ChatRequest {
	return &llm.ChatRequest{
		Model: "gpt-4o",
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: []llm.ContentPart{llm.TextPart("be terse")}},
			{Role: llm.RoleUser, Content: []llm.ContentPart{llm.TextPart("describe")}},
			{Role: llm.RoleUser, Content: []llm.ContentPart{llm.ImagePart("data:image/png;base64,AA==")}},
		},
		Temperature:    0.3,
		MaxTokens:      1500,
		ResponseFormat: llm.JSONObjectFormat,
	}
}

func TestChat_SendsMultipartMessages(t *testing.T) {
	var body map[string]interface{}
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"{\"answer\":42}"}}],
			"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`))
	})

	resp, err := c.Chat(context.Background(), describeRequest())
	require.NoError(t, err)

	text, ok := resp.Text()
	require.True(t, ok)
	assert.Equal(t, `{"answer":42}`, text)
	assert.Equal(t, 7, resp.Usage.TotalTokens)

	messages, ok := body["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 3)
	assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])

	content := messages[2].(map[string]interface{})["content"].([]interface{})
	part := content[0].(map[string]interface{})
	assert.Equal(t, "image_url", part["type"])
	assert.Equal(t, "data:image/png;base64,AA==", part["image_url"].(map[string]interface{})["url"])

	assert.EqualValues(t, 1500, body["max_tokens"])
	assert.Equal(t, map[string]interface{}{"type": "json_object"}, body["response_format"])
}

func TestChat_RateLimitIsNotRetried(t *testing.T) {
	calls := 0
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"requests","code":"rate_limit_exceeded"}}`))
	})

	_, err := c.Chat(context.Background(), describeRequest())
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsRateLimit())
	assert.Equal(t, providerName, apiErr.Provider)
}

func TestChat_Unauthorized(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error","code":"invalid_api_key"}}`))
	})

	_, err := c.Chat(context.Background(), describeRequest())
	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsAuthentication())
}

func TestBuildParams_RejectsImageInSystemMessage(t *testing.T) {
	_, err := buildParams(&llm.ChatRequest{Messages: []llm.Message{
		{Role: llm.RoleSystem, Content: []llm.ContentPart{llm.ImagePart("data:image/png;base64,AA==")}},
	}}, "gpt-4o")
	assert.Error(t, err)
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient()
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}
