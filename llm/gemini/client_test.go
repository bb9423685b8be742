package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nachoal/describe-go/describe"
	"github.com/nachoal/describe-go/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), llm.WithAPIKey("g-test"), llm.WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)
	return c
}

func request() *llm.ChatRequest {
	return &llm.ChatRequest{
		Model: "gemini-test",
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: []llm.ContentPart{llm.TextPart("sys")}},
			{Role: llm.RoleUser, Content: []llm.ContentPart{llm.TextPart("describe")}},
			{Role: llm.RoleUser, Content: []llm.ContentPart{llm.ImagePart(llm.DataURL("image/png", []byte("png")))}},
		},
		Temperature:    0.3,
		MaxTokens:      1500,
		ResponseFormat: llm.JSONObjectFormat,
	}
}

func TestBuildContents(t *testing.T) {
	contents, config, err := buildContents(request())
	require.NoError(t, err)

	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "describe", contents[0].Parts[0].Text)
	require.NotNil(t, contents[1].Parts[0].InlineData)
	assert.Equal(t, "image/png", contents[1].Parts[0].InlineData.MIMEType)
	assert.Equal(t, []byte("png"), contents[1].Parts[0].InlineData.Data)

	require.NotNil(t, config.SystemInstruction)
	assert.Equal(t, "sys", config.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", config.ResponseMIMEType)
	assert.EqualValues(t, 1500, config.MaxOutputTokens)
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.3, *config.Temperature, 1e-6)
}

func TestChat_RoundTrip(t *testing.T) {
	var body map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"), r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"answer\":42}"}]},"finishReason":"STOP"}],
			"usageMetadata":{"promptTokenCount":1,"candidatesTokenCount":2,"totalTokenCount":3}}`))
	})

	resp, err := c.Chat(context.Background(), request())
	require.NoError(t, err)

	text, ok := resp.Text()
	require.True(t, ok)
	assert.Equal(t, `{"answer":42}`, text)
	assert.Equal(t, 3, resp.Usage.TotalTokens)
	assert.Contains(t, body, "contents")
}

func TestChat_QuotaExhausted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := c.Chat(context.Background(), request())
	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr), "got %T: %v", err, err)
	assert.True(t, apiErr.IsRateLimit())
}

func TestChat_InvalidAPIKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT",
			"details":[{"@type":"type.googleapis.com/google.rpc.ErrorInfo","reason":"API_KEY_INVALID","domain":"googleapis.com","metadata":{"service":"generativelanguage.googleapis.com"}}]}}`))
	})

	_, err := c.Chat(context.Background(), request())
	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr), "got %T: %v", err, err)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.True(t, apiErr.IsAuthentication())
	assert.False(t, apiErr.IsRateLimit())
	assert.ErrorIs(t, describe.Classify(err), describe.ErrInvalidCredentials)
}

func TestChat_BadRequestIsNotAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad mime type","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := c.Chat(context.Background(), request())
	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr), "got %T: %v", err, err)
	assert.False(t, apiErr.IsAuthentication())
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	_, err := NewClient(context.Background())
	assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
}
