// Package aigateway resolves provider routing paths against the outbound AI
// gateway proxy all upstream traffic is sent through.
package aigateway

import (
	"fmt"
	"strings"
)

// Endpoint is the resolved base address for one provider plus the token the
// gateway expects on outbound calls. Tokens may rotate, so endpoints are
// recomputed on every registry refresh and never persisted.
type Endpoint struct {
	BaseURL   string
	AuthToken string
}

// Resolver maps a provider's routing path to its outbound endpoint.
type Resolver interface {
	Resolve(routingPath string) (Endpoint, error)
}

// GatewayResolver joins routing paths onto a single configured gateway base
// URL and attaches the gateway service token.
type GatewayResolver struct {
	baseURL string
	token   string
}

func NewGatewayResolver(baseURL, token string) (*GatewayResolver, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("gateway base URL is not configured")
	}
	return &GatewayResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}, nil
}

func (r *GatewayResolver) Resolve(routingPath string) (Endpoint, error) {
	path := strings.Trim(routingPath, "/")
	if path == "" {
		return Endpoint{}, fmt.Errorf("empty routing path")
	}

	return Endpoint{
		BaseURL:   r.baseURL + "/" + path,
		AuthToken: r.token,
	}, nil
}
