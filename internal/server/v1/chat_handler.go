package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kasuboski/openai-gateway/internal/analytics"
	"github.com/kasuboski/openai-gateway/internal/provider"
	"github.com/kasuboski/openai-gateway/internal/registry"
	"github.com/kasuboski/openai-gateway/internal/server/middleware"
	"github.com/kasuboski/openai-gateway/internal/server/validator"
	"github.com/kasuboski/openai-gateway/internal/store/model"
	"github.com/kasuboski/openai-gateway/pkg/api"
)

type ChatHandler struct {
	registry *registry.Registry
	ingestor analytics.Ingestor
}

func NewChatHandler(reg *registry.Registry, ingestor analytics.Ingestor) *ChatHandler {
	return &ChatHandler{
		registry: reg,
		ingestor: ingestor,
	}
}

func resolveProblem(modelID string, err error) *api.Problem {
	switch {
	case errors.Is(err, provider.ErrMalformedModelID):
		return api.BadRequestError(fmt.Sprintf("model must be of form <provider>/<model>, got %q", modelID))
	case errors.Is(err, provider.ErrProviderNotFound):
		return api.NotFoundError(fmt.Sprintf("no provider configured for model %q", modelID))
	default:
		return api.NewProblem(http.StatusServiceUnavailable,
			"Service Unavailable",
			"provider configuration is currently unavailable",
			api.WithLog(err))
	}
}

func (h *ChatHandler) CreateCompletion(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(api.ValidationError(validator.ParseValidationError(err)))
		return
	}

	client, err := h.registry.Resolve(c.Request.Context(), req.Model)
	if err != nil {
		_ = c.Error(resolveProblem(req.Model, err))
		return
	}

	if req.Stream {
		h.handleStream(c, client, &req)
		return
	}

	start := time.Now()
	resp, err := client.Generate(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(api.UpstreamProblem("Failed to process chat request", err))
		return
	}

	h.record(c, &req, resp, start, false, nil)
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) handleStream(c *gin.Context, client provider.Client, req *api.ChatRequest) {
	streamChan, err := client.Stream(c.Request.Context(), req)
	if err != nil {
		var problem *api.Problem
		if errors.As(err, &problem) {
			c.JSON(problem.Status, problem)
			return
		}
		c.JSON(http.StatusBadGateway, api.UpstreamProblem("Failed to start stream", err))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	start := time.Now()
	var ttft *time.Duration
	var last *api.ChatResponse

	c.Stream(func(w io.Writer) bool {
		result, ok := <-streamChan
		if !ok {
			_, _ = io.WriteString(w, "data: [DONE]\n\n")
			return false
		}

		if result.Err != nil {
			errResp := api.ChatResponse{
				Choices: []api.Choice{{
					FinishReason: "error",
				}},
				Error: &api.ErrorResponse{Message: result.Err.Error()},
			}
			data, _ := json.Marshal(errResp)
			_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
			return false
		}

		if result.Response != nil {
			if ttft == nil {
				dur := time.Since(start)
				ttft = &dur
			}
			last = result.Response

			data, err := json.Marshal(result.Response)
			if err == nil {
				_, err := fmt.Fprintf(w, "data: %s\n\n", data)
				return err == nil
			}
		}

		return true
	})

	h.record(c, req, last, start, true, ttft)
}

func (h *ChatHandler) record(c *gin.Context, req *api.ChatRequest, resp *api.ChatResponse, start time.Time, streamed bool, ttft *time.Duration) {
	providerID, _, err := registry.SplitModelID(req.Model)
	if err != nil {
		providerID = ""
	}

	record := &model.RequestLog{
		ID:         c.GetString(middleware.RequestIDKey),
		ProviderID: providerID,
		ModelID:    req.Model,
		Streamed:   streamed,
		StatusCode: http.StatusOK,
		LatencyMS:  time.Since(start).Milliseconds(),
		CreatedAt:  time.Now(),
	}

	if ttft != nil {
		record.TTFTMS.Int64 = ttft.Milliseconds()
		record.TTFTMS.Valid = true
	}

	if resp != nil {
		if len(resp.Choices) > 0 {
			record.FinishReason = resp.Choices[0].FinishReason
		}
		if resp.Usage != nil {
			record.InputTokens = resp.Usage.PromptTokens
			record.OutputTokens = resp.Usage.CompletionTokens
		}
	}

	h.ingestor.Log(record)
}
