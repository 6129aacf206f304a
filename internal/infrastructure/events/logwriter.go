package events

import (
	"context"

	"go.uber.org/zap"
)

// LogWriter is a TopicWriter that only logs. It backs the publisher when
// no broker is configured, such as in the memory storage mode.
type LogWriter struct {
	logger *zap.Logger
}

func NewLogWriter(logger *zap.Logger) *LogWriter {
	return &LogWriter{logger: logger}
}

func (w *LogWriter) Publish(_ context.Context, topic, key string, value []byte) error {
	w.logger.Info("event published",
		zap.String("topic", topic),
		zap.String("key", key),
		zap.ByteString("event", value),
	)
	return nil
}
