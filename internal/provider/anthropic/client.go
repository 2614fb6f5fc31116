// Package anthropic invokes Claude models through the AI gateway.
package anthropic

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

const apiVersion = "2023-06-01"

// Config carries the connection resolved for one provider entry.
type Config struct {
	BaseURL      string
	APIKey       string
	GatewayToken string
}

// Client invokes one Claude model over the Anthropic messages API.
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
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": apiVersion,
	}
	if c.cfg.GatewayToken != "" {
		h["cf-aig-authorization"] = "Bearer " + c.cfg.GatewayToken
	}
	return h
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	System    string    `json:"system,omitempty"`
	MaxTokens int       `json:"max_tokens"`
	Stream    bool      `json:"stream,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type response struct {
	ID         string         `json:"id"`
	Content    []contentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      usage          `json:"usage"`
}

type streamEvent struct {
	Type  string `json:"type"`
	Delta *struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	} `json:"delta,omitempty"`
}

func shape(req *api.ChatRequest, model string) request {
	ar := request{
		Model:     model,
		MaxTokens: req.MaxTokens,
	}
	if ar.MaxTokens == 0 {
		ar.MaxTokens = 4096
	}

	for _, m := range req.Messages {
		if m.Role == string(api.System) {
			ar.System = m.Content.Text
			continue
		}
		ar.Messages = append(ar.Messages, message{Role: m.Role, Content: m.Content.Text})
	}

	return ar
}

func mapStopReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence":
		return "stop"
	case "max_tokens":
		return "length"
	default:
		return reason
	}
}

func (c *Client) Generate(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	url := fmt.Sprintf("%s/v1/messages", c.base)

	var aResp response
	if err := httpclient.SendRequest(ctx, c.client, http.MethodPost, url, c.headers(), shape(req, c.model), &aResp); err != nil {
		return nil, err
	}

	text := ""
	for _, block := range aResp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	return &api.ChatResponse{
		ID:      aResp.ID,
		Model:   c.model,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Choices: []api.Choice{{
			Index: 0,
			Message: &api.ChatMessage{
				Role:    string(api.Assistant),
				Content: api.Content{Text: text},
			},
			FinishReason: mapStopReason(aResp.StopReason),
		}},
		Usage: &api.ResponseUsage{
			PromptTokens:     aResp.Usage.InputTokens,
			CompletionTokens: aResp.Usage.OutputTokens,
			TotalTokens:      aResp.Usage.InputTokens + aResp.Usage.OutputTokens,
		},
	}, nil
}

func (c *Client) Stream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamResult, error) {
	ch := make(chan api.StreamResult)

	url := fmt.Sprintf("%s/v1/messages", c.base)
	body := shape(req, c.model)
	body.Stream = true

	go func() {
		defer close(ch)

		err := httpclient.StreamRequest(ctx, c.client, http.MethodPost, url, c.headers(), body, func(line string) error {
			data, ok := strings.CutPrefix(line, "data: ")
			if !ok {
				return nil
			}

			var event streamEvent
			if err := json.Unmarshal([]byte(data), &event); err != nil {
				return nil
			}

			if event.Type != "content_block_delta" || event.Delta == nil {
				return nil
			}

			select {
			case ch <- api.StreamResult{Response: &api.ChatResponse{
				Model:  c.model,
				Object: "chat.completion.chunk",
				Choices: []api.Choice{{
					Index: 0,
					Delta: &api.ChatMessage{
						Role:    string(api.Assistant),
						Content: api.Content{Text: event.Delta.Text},
					},
				}},
			}}:
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
