package aigateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayResolver_JoinsPath(t *testing.T) {
	r, err := NewGatewayResolver("https://gw.example/", "tok")
	require.NoError(t, err)

	ep, err := r.Resolve("google-ai-studio")
	require.NoError(t, err)
	assert.Equal(t, "https://gw.example/google-ai-studio", ep.BaseURL)
	assert.Equal(t, "tok", ep.AuthToken)
}

func TestGatewayResolver_TrimsSlashes(t *testing.T) {
	r, err := NewGatewayResolver("https://gw.example", "tok")
	require.NoError(t, err)

	ep, err := r.Resolve("/openai/")
	require.NoError(t, err)
	assert.Equal(t, "https://gw.example/openai", ep.BaseURL)
}

func TestGatewayResolver_EmptyPath(t *testing.T) {
	r, err := NewGatewayResolver("https://gw.example", "tok")
	require.NoError(t, err)

	_, err = r.Resolve("")
	assert.Error(t, err)
}

func TestNewGatewayResolver_RequiresBaseURL(t *testing.T) {
	_, err := NewGatewayResolver("", "tok")
	assert.Error(t, err)
}
