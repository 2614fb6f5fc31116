package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/kasuboski/openai-gateway/internal/store"
	"github.com/kasuboski/openai-gateway/internal/store/model"
)

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db *sqlx.DB
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{db: db}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) Requests() store.RequestRepository {
	return &requestRepo{db: r.db}
}

type requestRepo struct {
	db *sqlx.DB
}

func (r *requestRepo) Log(ctx context.Context, log *model.RequestLog) error {
	query := `
	INSERT INTO request_logs (id, provider_id, model_id, streamed, finish_reason, status_code, latency_ms, ttft_ms, input_tokens, output_tokens, created_at)
	VALUES (:id, :provider_id, :model_id, :streamed, :finish_reason, :status_code, :latency_ms, :ttft_ms, :input_tokens, :output_tokens, :created_at)`
	_, err := r.db.NamedExecContext(ctx, query, log)
	return err
}

func (r *requestRepo) GetRecent(ctx context.Context, limit int) ([]model.RequestLog, error) {
	var logs []model.RequestLog
	query := `SELECT * FROM request_logs ORDER BY created_at DESC LIMIT ?`
	err := r.db.SelectContext(ctx, &logs, query, limit)
	return logs, err
}
