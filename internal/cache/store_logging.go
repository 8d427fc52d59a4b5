package cache

import (
	"context"
	"time"

	"quizforge-backend/pkg/logging/logging"

	"go.uber.org/zap"
)

// LoggingStore wraps a Store with per-operation logging.
type LoggingStore struct {
	inner Store
}

// NewLoggingStore returns a store that logs every backend call with
// its outcome and latency.
func NewLoggingStore(inner Store) Store {
	return &LoggingStore{inner: inner}
}

func (s *LoggingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := s.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := loggerFromContext(ctx)

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
	}

	fields := []zap.Field{
		zap.String("store_op", "get"),
		zap.String("store_key", key),
		zap.String("store_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	}
	fields = appendKeyFields(fields, key)

	if err != nil {
		logger.Warn("store_get", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("store_get", fields...)
	}

	return value, ok, err
}

func (s *LoggingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := s.inner.Set(ctx, key, value, ttl)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := loggerFromContext(ctx)

	fields := []zap.Field{
		zap.String("store_op", "set"),
		zap.String("store_key", key),
		zap.Duration("ttl", ttl),
		zap.Int("value_bytes", len(value)),
		zap.Float64("latency_ms", latencyMs),
	}
	fields = appendKeyFields(fields, key)

	if err != nil {
		logger.Warn("store_set", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("store_set", fields...)
	}

	return err
}

func (s *LoggingStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.inner.Delete(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := loggerFromContext(ctx)

	fields := []zap.Field{
		zap.String("store_op", "delete"),
		zap.String("store_key", key),
		zap.Float64("latency_ms", latencyMs),
	}
	fields = appendKeyFields(fields, key)

	if err != nil {
		logger.Warn("store_delete", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("store_delete", fields...)
	}

	return err
}

func (s *LoggingStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

func (s *LoggingStore) Close() error {
	return s.inner.Close()
}

// appendKeyFields adds namespace/topic/user fields when the key parses.
func appendKeyFields(fields []zap.Field, key string) []zap.Field {
	if k, ok := parseKey(key); ok {
		fields = append(fields,
			zap.String("cache_region", k.Namespace),
			zap.Int64("topic_id", k.TopicID),
			zap.Int64("user_id", k.UserID),
		)
	}
	return fields
}

func loggerFromContext(ctx context.Context) *zap.Logger {
	if l := logging.FromContext(ctx); l != nil {
		return l
	}
	return logging.L(ctx)
}
