// Package openai invokes OpenAI-compatible models through the AI gateway.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kasuboski/openai-gateway/internal/httpclient"
	"github.com/kasuboski/openai-gateway/pkg/api"
)

// Config carries the connection resolved for one provider entry.
type Config struct {
	BaseURL      string
	APIKey       string
	GatewayToken string
}

// Client invokes one model over the OpenAI chat completions wire format. The
// public API of the gateway is already OpenAI-shaped, so requests pass through
// with the model name rewritten.
type Client struct {
	cfg    Config
	base   string
	model  string
	client *http.Client
}

func NewClient(cfg Config, model string) *Client {
	return &Client{
		cfg:    cfg,
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Endpoint() string  { return c.base }
func (c *Client) ModelName() string { return c.model }

func (c *Client) headers() map[string]string {
	h := map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}
	if c.cfg.GatewayToken != "" {
		h["cf-aig-authorization"] = "Bearer " + c.cfg.GatewayToken
	}
	return h
}

func (c *Client) Generate(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	url := fmt.Sprintf("%s/chat/completions", c.base)

	upstream := *req
	upstream.Model = c.model
	upstream.Stream = false

	var resp api.ChatResponse
	if err := httpclient.SendRequest(ctx, c.client, http.MethodPost, url, c.headers(), &upstream, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	return &resp, nil
}

func (c *Client) Stream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamResult, error) {
	ch := make(chan api.StreamResult)

	url := fmt.Sprintf("%s/chat/completions", c.base)

	upstream := *req
	upstream.Model = c.model
	upstream.Stream = true
	upstream.StreamOptions = &api.StreamOptions{IncludeUsage: true}

	go func() {
		defer close(ch)

		err := httpclient.StreamRequest(ctx, c.client, http.MethodPost, url, c.headers(), &upstream, func(line string) error {
			data, ok := strings.CutPrefix(line, "data: ")
			if !ok {
				return nil
			}
			if strings.TrimSpace(data) == "[DONE]" {
				return nil
			}

			var chunk api.ChatResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				return nil // skip malformed keep-alive lines
			}

			select {
			case ch <- api.StreamResult{Response: &chunk}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil {
			select {
			case ch <- api.StreamResult{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return ch, nil
}
