package retry

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jonboulle/clockwork"
)

// Config - параметры повторов с экспоненциальной задержкой
type Config struct {
	// MaxAttempts - общее число попыток, включая первую
	MaxAttempts int

	// InitialBackoff - задержка перед первым повтором
	InitialBackoff time.Duration

	// MaxBackoff ограничивает задержку сверху
	MaxBackoff time.Duration

	// Multiplier - множитель задержки после каждой попытки
	Multiplier float64

	// JitterFraction - доля случайного разброса задержки (0 - без разброса)
	JitterFraction float64

	// ShouldRetry решает, повторять ли попытку после ошибки.
	// nil означает повторять любую ошибку.
	ShouldRetry func(err error) bool

	// OnRetry вызывается перед ожиданием с номером попытки и ошибкой
	OnRetry func(attempt int, err error)

	// Clock используется для ожидания; nil - реальные часы
	Clock clockwork.Clock
}

func applyDefaults(cfg Config) Config {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialBackoff < 0 {
		cfg.InitialBackoff = 0
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = 2.0
	}
	if cfg.JitterFraction < 0 {
		cfg.JitterFraction = 0
	}
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = func(error) bool { return true }
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return cfg
}

// DoVal выполняет fn, повторяя её по правилам cfg, и возвращает результат успешного вызова.
// Отмена контекста прерывает повторы, возвращается последняя ошибка.
func DoVal[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = applyDefaults(cfg)

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}

		if !cfg.ShouldRetry(lastErr) {
			return zero, lastErr
		}

		// после последней попытки не ждём
		if attempt >= cfg.MaxAttempts-1 {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, lastErr)
		}

		timer := cfg.Clock.NewTimer(Backoff(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.Chan():
		}
	}

	return zero, lastErr
}

// Do - вариант DoVal для функций без результата
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Backoff вычисляет задержку перед повтором номер attempt+1
func Backoff(attempt int, cfg Config) time.Duration {
	delay := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt))
	if delay > float64(cfg.MaxBackoff) {
		delay = float64(cfg.MaxBackoff)
	}

	if cfg.JitterFraction > 0 {
		jitterRange := delay * cfg.JitterFraction
		delay += (rand.Float64()*2 - 1) * jitterRange
	}

	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
