package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kasuboski/openai-gateway/internal/store"
	"github.com/kasuboski/openai-gateway/internal/store/model"
)

// Ingestor handles the asynchronous persistence of request logs. The request
// path never blocks on the database; when the buffer is full, records drop.
type Ingestor interface {
	Log(log *model.RequestLog)
	Start(ctx context.Context)
	Stop()
}

type ingestor struct {
	logger    *zap.Logger
	repo      store.Repository
	logChan   chan *model.RequestLog
	batchSize int
	flushTime time.Duration
}

func NewIngestor(logger *zap.Logger, repo store.Repository) Ingestor {
	return &ingestor{
		logger:    logger,
		repo:      repo,
		logChan:   make(chan *model.RequestLog, 10000),
		batchSize: 50,
		flushTime: 5 * time.Second,
	}
}

func (i *ingestor) Log(log *model.RequestLog) {
	select {
	case i.logChan <- log:
	default:
		i.logger.Warn("analytics buffer full, dropping record", zap.String("request_id", log.ID))
	}
}

func (i *ingestor) Start(ctx context.Context) {
	go i.worker(ctx)
}

func (i *ingestor) Stop() {
	close(i.logChan)
}

func (i *ingestor) worker(ctx context.Context) {
	batch := make([]*model.RequestLog, 0, i.batchSize)
	ticker := time.NewTicker(i.flushTime)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		for _, record := range batch {
			if err := i.repo.Requests().Log(context.Background(), record); err != nil {
				i.logger.Error("failed to persist request log", zap.String("id", record.ID), zap.Error(err))
			}
		}
		batch = batch[:0]
	}

	for {
		select {
		case record, ok := <-i.logChan:
			if !ok {
				flush()
				return
			}
			batch = append(batch, record)
			if len(batch) >= i.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			flush()
			return
		}
	}
}

// Nop drops every record, used when analytics is disabled.
type Nop struct{}

func (Nop) Log(*model.RequestLog)     {}
func (Nop) Start(ctx context.Context) {}
func (Nop) Stop()                     {}
