package seeding

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/address-data-service/internal/config"
	"github.com/address-data-service/internal/domain"
	"github.com/address-data-service/internal/domain/repository"
	"github.com/address-data-service/internal/pkg/retry"
	"github.com/address-data-service/internal/pkg/validator"
	"github.com/address-data-service/internal/worker"
)

const (
	workerName      = "address-seeding"
	emptyQueueSleep = 100 * time.Millisecond // пауза если очередь пуста
	errorSleep      = time.Second            // пауза после ошибки чтения
	finalizeTimeout = 5 * time.Second        // публикация результата после остановки
)

// Seeder - операции сидинга, которые выполняет воркер
type Seeder interface {
	AddCity(ctx context.Context, areaID int64) (*domain.SeededDocument, error)
	RunSeeding(ctx context.Context, limit *int64) ([]domain.SeededDocument, error)
}

// SeedingWorker обрабатывает заявки на сидинг из stream:seeding:request
// и публикует результат в stream:seeding:done
type SeedingWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	seeder       Seeder
	batchSize    int
	publishRetry retry.Config
}

// NewSeedingWorker создает новый SeedingWorker.
// Без WORKER_CONSUMER_NAME имя consumer строится из hostname и pid.
func NewSeedingWorker(
	streamRepo repository.StreamRepository,
	seeder Seeder,
	cfg *config.WorkerConfig,
	logger *zap.Logger,
) *SeedingWorker {
	consumerName := cfg.ConsumerName
	if consumerName == "" {
		hostname, _ := os.Hostname()
		consumerName = fmt.Sprintf("%s-%d", hostname, os.Getpid())
	}

	batchSize := int(cfg.BatchSize)
	if batchSize <= 0 {
		batchSize = 1
	}

	return &SeedingWorker{
		BaseWorker: worker.NewBaseWorker(workerName, cfg.ConsumerGroup, consumerName, logger),
		streamRepo: streamRepo,
		seeder:     seeder,
		batchSize:  batchSize,
		publishRetry: retry.Config{
			MaxAttempts:    cfg.MaxRetries,
			InitialBackoff: 200 * time.Millisecond,
			MaxBackoff:     5 * time.Second,
		},
	}
}

// Start запускает воркер
func (w *SeedingWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting SeedingWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()),
		zap.Int("batch_size", w.batchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamSeedingRequest, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := w.WithStop(ctx)
	defer cancel()

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			if w.IsStopped() {
				logger.Info("Worker stopped")
				return nil
			}
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.processBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				w.Sleep(ctx, errorSleep)
				continue
			}

			if processed == 0 {
				w.Sleep(ctx, emptyQueueSleep)
			}
		}
	}
}

// processBatch читает и обрабатывает пачку заявок.
// Возвращает количество прочитанных сообщений.
func (w *SeedingWorker) processBatch(ctx context.Context) (int, error) {
	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamSeedingRequest,
		w.ConsumerGroup(),
		w.ConsumerName(),
		w.batchSize,
	)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	for i, msg := range messages {
		// Не начатые заявки остаются в pending для другого consumer
		if ctx.Err() != nil {
			w.Logger().Info("Worker stopping, leaving requests pending",
				zap.Int("pending", len(messages)-i))
			break
		}
		w.processMessage(ctx, msg)
	}

	return len(messages), nil
}

// processMessage выполняет одну заявку, публикует результат и подтверждает сообщение
func (w *SeedingWorker) processMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger().With(zap.String("message_id", msg.ID))

	event, err := parseMessage(msg)
	if err != nil {
		logger.Warn("Failed to parse message, skipping", zap.Error(err))
		// ACK битое сообщение чтобы не застревало
		w.ack(ctx, msg.ID)
		return
	}

	logger = logger.With(zap.String("request_id", event.RequestID.String()))

	done := w.handle(ctx, event)
	if done.Error != "" {
		logger.Warn("Seeding request finished with error",
			zap.Int("documents", len(done.Documents)),
			zap.String("error", done.Error))
	} else {
		logger.Info("Seeding request finished", zap.Int("documents", len(done.Documents)))
	}

	// После остановки воркера результат всё равно публикуется
	finalCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		finalCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
		defer cancel()
	}

	err = retry.Do(finalCtx, w.publishRetry, func(ctx context.Context) error {
		return w.streamRepo.PublishToStream(ctx, domain.StreamSeedingDone, done)
	})
	if err != nil {
		logger.Error("Failed to publish done event", zap.Error(err))
	}

	w.ack(finalCtx, msg.ID)
}

// handle выполняет заявку: один город или полный обход
func (w *SeedingWorker) handle(ctx context.Context, event *domain.SeedingRequestEvent) *domain.SeedingDoneEvent {
	done := &domain.SeedingDoneEvent{RequestID: event.RequestID}

	if err := validator.Validate(event); err != nil {
		done.Error = fmt.Sprintf("invalid request: %v", err)
		return done
	}

	if event.IsSingleCity() {
		doc, err := w.seeder.AddCity(ctx, *event.AreaID)
		if err != nil {
			done.Error = err.Error()
			return done
		}
		done.Documents = []domain.SeededDocument{*doc}
		return done
	}

	docs, err := w.seeder.RunSeeding(ctx, event.Limit)
	done.Documents = docs
	if err != nil {
		done.Error = err.Error()
	}

	return done
}

func (w *SeedingWorker) ack(ctx context.Context, messageID string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamSeedingRequest, w.ConsumerGroup(), messageID); err != nil {
		// Не критично - сообщение останется в pending
		w.Logger().Warn("Failed to ack message",
			zap.String("message_id", messageID),
			zap.Error(err))
	}
}

// parseMessage разбирает JSON заявки из поля data
func parseMessage(msg domain.StreamMessage) (*domain.SeedingRequestEvent, error) {
	if msg.Data == "" {
		return nil, fmt.Errorf("missing or empty 'data' field")
	}

	var event domain.SeedingRequestEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &event, nil
}
