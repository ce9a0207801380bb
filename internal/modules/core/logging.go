package core

import (
	"context"

	"github.com/eskrenkovic/mediator-go"

	"go.uber.org/zap"
)

const LoggerContextKey ContextKey = "logger"

// WithLogger stores a request scoped logger in the context.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// Logger returns the request scoped logger, or a no-op logger when none was set.
func Logger(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return zap.NewNop()
}

func LogError(ctx context.Context, message string, fields ...zap.Field) {
	Logger(ctx).Error(message, fields...)
}

func LogWarn(ctx context.Context, message string, fields ...zap.Field) {
	Logger(ctx).Warn(message, fields...)
}

// Redactor is implemented by requests carrying secrets. The redacted copy is
// what gets logged.
type Redactor interface {
	Redacted() interface{}
}

var _ mediator.PipelineBehavior = (*RequestLoggingBehavior)(nil)

type RequestLoggingBehavior struct {
	Logger *zap.Logger
}

func (b *RequestLoggingBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	var logFields []zap.Field

	correlationID := CorrelationID(ctx)
	if correlationID != "" {
		logFields = append(logFields, zap.String("correlation_id", correlationID))
	}

	if session := Session(ctx); session.Authenticated() {
		logFields = append(logFields, zap.Int64("user_id", session.UserID))
	}

	switch r := request.(type) {
	case nil:
	case Redactor:
		logFields = append(logFields, zap.Any("request_body", r.Redacted()))
	default:
		logFields = append(logFields, zap.Any("request_body", request))
	}

	b.Logger.Info("processing request", logFields...)

	return next(ctx, request)
}

var _ mediator.PipelineBehavior = (*HandlerErrorLoggingBehavior)(nil)

type HandlerErrorLoggingBehavior struct {
	Logger *zap.Logger
}

func (b *HandlerErrorLoggingBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	response, err := next(ctx, request)
	if err == nil {
		return response, nil
	}

	fields := []zap.Field{
		zap.Error(err),
		zap.String("correlation_id", CorrelationID(ctx)),
	}

	if clientError(err) {
		b.Logger.Info("handler rejected request", fields...)
	} else {
		b.Logger.Error("handler returned error", fields...)
	}

	return response, err
}

func clientError(err error) bool {
	for _, kind := range []ErrorKind{KindValidation, KindNotFound, KindForbidden, KindUnauthorized} {
		if IsKind(err, kind) {
			return true
		}
	}
	return false
}
