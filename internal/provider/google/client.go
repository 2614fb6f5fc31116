// Package google invokes Gemini models through the AI gateway.
package google

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

// Client invokes one Gemini model. All requests go through the gateway base
// address with the API key and gateway token attached as headers.
type Client struct {
	cfg    Config
	base   string
	model  string
	client *http.Client
}

func NewClient(cfg Config, model string) *Client {
	return &Client{
		cfg:    cfg,
		base:   strings.TrimRight(cfg.BaseURL, "/") + "/v1beta",
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Endpoint reports the resolved base address requests are sent to.
func (c *Client) Endpoint() string { return c.base }

// ModelName reports the bare model name this client is bound to.
func (c *Client) ModelName() string { return c.model }

func (c *Client) headers() map[string]string {
	h := map[string]string{
		"x-goog-api-key": c.cfg.APIKey,
	}
	if c.cfg.GatewayToken != "" {
		h["cf-aig-authorization"] = "Bearer " + c.cfg.GatewayToken
	}
	return h
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata *geminiUsage      `json:"usageMetadata,omitempty"`
}

func shape(messages []api.ChatMessage) geminiRequest {
	gr := geminiRequest{}
	for _, m := range messages {
		role := api.User
		if m.Role == string(api.Assistant) {
			role = api.ModelAssistant
		}
		gr.Contents = append(gr.Contents, geminiContent{
			Role:  string(role),
			Parts: []geminiPart{{Text: m.Content.Text}},
		})
	}
	return gr
}

func (c *Client) Generate(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", c.base, c.model)

	var gResp geminiResponse
	if err := httpclient.SendRequest(ctx, c.client, http.MethodPost, url, c.headers(), shape(req.Messages), &gResp); err != nil {
		return nil, err
	}

	if len(gResp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates from gemini")
	}

	text := ""
	if len(gResp.Candidates[0].Content.Parts) > 0 {
		text = gResp.Candidates[0].Content.Parts[0].Text
	}

	resp := &api.ChatResponse{
		ID:      fmt.Sprintf("gemini-%d", time.Now().UnixNano()),
		Model:   c.model,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Choices: []api.Choice{{
			Index: 0,
			Message: &api.ChatMessage{
				Role:    string(api.Assistant),
				Content: api.Content{Text: text},
			},
			FinishReason: "stop",
		}},
	}

	if gResp.UsageMetadata != nil {
		resp.Usage = &api.ResponseUsage{
			PromptTokens:     gResp.UsageMetadata.PromptTokenCount,
			CompletionTokens: gResp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      gResp.UsageMetadata.TotalTokenCount,
		}
	}

	return resp, nil
}

func (c *Client) Stream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamResult, error) {
	ch := make(chan api.StreamResult)

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", c.base, c.model)
	body := shape(req.Messages)

	go func() {
		defer close(ch)

		err := httpclient.StreamRequest(ctx, c.client, http.MethodPost, url, c.headers(), body, func(line string) error {
			data, ok := strings.CutPrefix(line, "data: ")
			if !ok {
				return nil
			}

			var chunk geminiResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				return nil // tolerate keep-alive noise
			}

			if len(chunk.Candidates) == 0 {
				return nil
			}

			text := ""
			if len(chunk.Candidates[0].Content.Parts) > 0 {
				text = chunk.Candidates[0].Content.Parts[0].Text
			}

			select {
			case ch <- api.StreamResult{Response: &api.ChatResponse{
				Model:  c.model,
				Object: "chat.completion.chunk",
				Choices: []api.Choice{{
					Index: 0,
					Delta: &api.ChatMessage{
						Role:    string(api.Assistant),
						Content: api.Content{Text: text},
					},
					FinishReason: chunk.Candidates[0].FinishReason,
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
