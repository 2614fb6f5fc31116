package api

type ChatResponse struct {
	ID      string         `json:"id"`
	Choices []Choice       `json:"choices"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Object  string         `json:"object"` // "chat.completion" or "chat.completion.chunk"
	Usage   *ResponseUsage `json:"usage,omitempty"`

	Error *ErrorResponse `json:"error,omitempty"`
}

type Choice struct {
	Index        int          `json:"index"`
	Message      *ChatMessage `json:"message,omitempty"` // For non-streaming
	Delta        *ChatMessage `json:"delta,omitempty"`   // For streaming
	FinishReason string       `json:"finish_reason"`
}

type ResponseUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ErrorResponse struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// StreamResult carries one chunk of a streaming generation, or a terminal error.
type StreamResult struct {
	Response *ChatResponse
	Err      error
}

// ModelInfo is the `/v1/models` listing entry.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
}

type ModelList struct {
	Object string      `json:"object"`
	Data   []ModelInfo `json:"data"`
}
