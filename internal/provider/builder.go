package provider

import (
	"context"
	"fmt"

	"github.com/kasuboski/openai-gateway/internal/aigateway"
	"github.com/kasuboski/openai-gateway/internal/provider/anthropic"
	"github.com/kasuboski/openai-gateway/internal/provider/google"
	"github.com/kasuboski/openai-gateway/internal/provider/openai"
	"github.com/kasuboski/openai-gateway/pkg/api"
)

// Client is an invocable handle to one model on one authenticated provider
// connection. Backend-specific request shaping happens behind it.
type Client interface {
	Generate(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error)
	Stream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamResult, error)
}

// ClientFactory turns a bare model name into a Client. Factories are owned by
// one registry snapshot entry, are safe for concurrent use, and never mutate
// their own state when invoked.
type ClientFactory func(model string) Client

type builderFunc func(secret string, ep aigateway.Endpoint) ClientFactory

// builders is the closed set of supported backend kinds. Adding a backend is
// adding one Kind constant and one entry here.
var builders = map[Kind]builderFunc{
	KindGoogle: func(secret string, ep aigateway.Endpoint) ClientFactory {
		cfg := google.Config{BaseURL: ep.BaseURL, APIKey: secret, GatewayToken: ep.AuthToken}
		return func(model string) Client { return google.NewClient(cfg, model) }
	},
	KindOpenAI: func(secret string, ep aigateway.Endpoint) ClientFactory {
		cfg := openai.Config{BaseURL: ep.BaseURL, APIKey: secret, GatewayToken: ep.AuthToken}
		return func(model string) Client { return openai.NewClient(cfg, model) }
	},
	KindAnthropic: func(secret string, ep aigateway.Endpoint) ClientFactory {
		cfg := anthropic.Config{BaseURL: ep.BaseURL, APIKey: secret, GatewayToken: ep.AuthToken}
		return func(model string) Client { return anthropic.NewClient(cfg, model) }
	},
}

// BuildFactory constructs the ClientFactory for one validated descriptor. No
// network calls happen here; connections are made lazily at invocation time.
func BuildFactory(d Descriptor, secret string, ep aigateway.Endpoint) (ClientFactory, error) {
	build, ok := builders[d.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q for provider %q", ErrUnsupportedKind, d.Kind, d.ID)
	}
	return build(secret, ep), nil
}
