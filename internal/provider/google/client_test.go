package google

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuboski/openai-gateway/pkg/api"
)

func TestGenerate_SendsCredentials(t *testing.T) {
	var gotPath, gotKey, gotGatewayAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		gotGatewayAuth = r.Header.Get("cf-aig-authorization")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "hi there"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 3, "candidatesTokenCount": 2, "totalTokenCount": 5}
		}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "abc", GatewayToken: "tok"}, "gemini-2.0-flash")

	resp, err := client.Generate(context.Background(), &api.ChatRequest{
		Model: "google/gemini-2.0-flash",
		Messages: []api.ChatMessage{
			{Role: "user", Content: api.Content{Text: "hello"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "abc", gotKey)
	assert.Equal(t, "Bearer tok", gotGatewayAuth)

	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "hi there", resp.Choices[0].Message.Content.Text)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 5, resp.Usage.TotalTokens)
}

func TestGenerate_AssistantRoleMapsToModel(t *testing.T) {
	var gotBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "abc"}, "gemini-2.0-flash")

	_, err := client.Generate(context.Background(), &api.ChatRequest{
		Messages: []api.ChatMessage{
			{Role: "user", Content: api.Content{Text: "hi"}},
			{Role: "assistant", Content: api.Content{Text: "hello"}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, gotBody, `"role":"model"`)
}

func TestGenerate_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "abc"}, "gemini-2.0-flash")

	_, err := client.Generate(context.Background(), &api.ChatRequest{
		Messages: []api.ChatMessage{{Role: "user", Content: api.Content{Text: "hi"}}},
	})
	assert.Error(t, err)
}

func TestStream_EmitsChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {\"candidates\": [{\"content\": {\"parts\": [{\"text\": \"Hel\"}]}}]}\n\n"))
		_, _ = w.Write([]byte("data: {\"candidates\": [{\"content\": {\"parts\": [{\"text\": \"lo\"}]}, \"finishReason\": \"STOP\"}]}\n\n"))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "abc"}, "gemini-2.0-flash")

	ch, err := client.Stream(context.Background(), &api.ChatRequest{
		Messages: []api.ChatMessage{{Role: "user", Content: api.Content{Text: "hi"}}},
	})
	require.NoError(t, err)

	var text string
	for result := range ch {
		require.NoError(t, result.Err)
		require.Len(t, result.Response.Choices, 1)
		text += result.Response.Choices[0].Delta.Content.Text
	}
	assert.Equal(t, "Hello", text)
}
