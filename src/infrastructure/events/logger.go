package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-logr/logr"
)

// logrAdapter routes watermill's logging into the application logger
type logrAdapter struct {
	logger logr.Logger
}

func NewLogger(logger logr.Logger) watermill.LoggerAdapter {
	return &logrAdapter{logger: logger}
}

func keysAndValues(fields watermill.LogFields) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}

func (l *logrAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.logger.Error(err, msg, keysAndValues(fields)...)
}

func (l *logrAdapter) Info(msg string, fields watermill.LogFields) {
	l.logger.Info(msg, keysAndValues(fields)...)
}

func (l *logrAdapter) Debug(msg string, fields watermill.LogFields) {
	l.logger.V(1).Info(msg, keysAndValues(fields)...)
}

func (l *logrAdapter) Trace(msg string, fields watermill.LogFields) {
	l.logger.V(2).Info(msg, keysAndValues(fields)...)
}

func (l *logrAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &logrAdapter{logger: l.logger.WithValues(keysAndValues(fields)...)}
}
