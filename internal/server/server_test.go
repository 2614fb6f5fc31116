package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kasuboski/openai-gateway/internal/aigateway"
	"github.com/kasuboski/openai-gateway/internal/analytics"
	"github.com/kasuboski/openai-gateway/internal/config"
	"github.com/kasuboski/openai-gateway/internal/configstore"
	"github.com/kasuboski/openai-gateway/internal/keystore"
	"github.com/kasuboski/openai-gateway/internal/registry"
	"github.com/kasuboski/openai-gateway/internal/secrets"
)

func testServer(t *testing.T, upstreamURL string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := configstore.NewMemoryStore(map[string]string{
		"openai": `{"provider":"openai","apiKeySecretName":"OPENAI_API_KEY","gatewayProviderPath":"openai"}`,
	})

	resolver, err := aigateway.NewGatewayResolver(upstreamURL, "gw-token")
	require.NoError(t, err)

	reg := registry.New(store, secrets.Static{"OPENAI_API_KEY": "sk-upstream"}, resolver, time.Minute, zap.NewNop())

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", Env: "test"},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}

	return New(cfg, zap.NewNop(), reg, keystore.NewStatic([]string{"sk-client"}), analytics.Nop{})
}

func TestChatCompletion_EndToEnd(t *testing.T) {
	var gotAuth, gotGatewayAuth, gotPath string

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotGatewayAuth = r.Header.Get("cf-aig-authorization")
		gotPath = r.URL.Path

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "hello"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 4, "completion_tokens": 1, "total_tokens": 5}
		}`))
	}))
	defer upstream.Close()

	srv := testServer(t, upstream.URL)

	body := `{"model": "openai/gpt-4o-mini", "messages": [{"role": "user", "content": "hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer sk-client")

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"hello"`)

	assert.Equal(t, "Bearer sk-upstream", gotAuth)
	assert.Equal(t, "Bearer gw-token", gotGatewayAuth)
	assert.Equal(t, "/openai/chat/completions", gotPath)
}

func TestChatCompletion_RequiresAuth(t *testing.T) {
	srv := testServer(t, "https://gw.example")

	body := `{"model": "openai/gpt-4o-mini", "messages": [{"role": "user", "content": "hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChatCompletion_UnknownProvider(t *testing.T) {
	srv := testServer(t, "https://gw.example")

	body := `{"model": "nope/some-model", "messages": [{"role": "user", "content": "hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer sk-client")

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatCompletion_MalformedModelID(t *testing.T) {
	srv := testServer(t, "https://gw.example")

	body := `{"model": "gpt-4o-mini", "messages": [{"role": "user", "content": "hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer sk-client")

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListModels(t *testing.T) {
	srv := testServer(t, "https://gw.example")

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	req.Header.Set("Authorization", "Bearer sk-client")

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"openai"`)
}

func TestHealth_Public(t *testing.T) {
	srv := testServer(t, "https://gw.example")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
