package model

import (
	"database/sql"
	"time"
)

// RequestLog is one completed (or failed) generation request.
type RequestLog struct {
	ID           string        `db:"id" json:"id"`
	ProviderID   string        `db:"provider_id" json:"provider_id"`
	ModelID      string        `db:"model_id" json:"model_id"`
	Streamed     bool          `db:"streamed" json:"streamed"`
	FinishReason string        `db:"finish_reason" json:"finish_reason"`
	StatusCode   int           `db:"status_code" json:"status_code"`
	LatencyMS    int64         `db:"latency_ms" json:"latency_ms"`
	TTFTMS       sql.NullInt64 `db:"ttft_ms" json:"ttft_ms,omitempty"`
	InputTokens  int           `db:"input_tokens" json:"input_tokens"`
	OutputTokens int           `db:"output_tokens" json:"output_tokens"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}
