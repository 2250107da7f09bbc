package log

import (
	"context"
	"log/slog"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// IntoContext returns a copy of ctx carrying logger.
func IntoContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	// Return default logger if not found
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// ForUpdate enriches the context logger with the ids of a Telegram update.
func ForUpdate(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	logger := FromContext(ctx).With(FieldUpdateID, updateID, FieldUserID, userID, FieldChatID, chatID)
	return IntoContext(ctx, logger)
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogCommand logs the completion of a command or callback.
func (sl *StructuredLogger) LogCommand(ctx context.Context, command string, durationMs int64, err error) {
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithCommand(command, durationMs, err == nil).
		WithError(err).
		WithComponent(ComponentBot)

	sl.logger.Logger.Log(ctx, level, "Command handled", fields.ToSlice()...)
}

// LogTransactionRecorded logs a transaction appended to the sheet.
func (sl *StructuredLogger) LogTransactionRecorded(ctx context.Context, userID int64, desc string, amount int64, category, kind string) {
	fields := NewFields().
		WithUser(userID, 0).
		WithTransaction(desc, amount, category, kind).
		WithOperation(OpRecord).
		WithComponent(ComponentBot)

	sl.logger.InfoContext(ctx, "Transaction recorded", fields.ToSlice()...)
}

// LogNotification logs a notification delivery attempt.
func (sl *StructuredLogger) LogNotification(ctx context.Context, userID int64, kind string, err error) {
	fields := NewFields().
		WithUser(userID, 0).
		WithOperation(OpSend).
		WithError(err).
		WithComponent(ComponentNotify)
	fields[FieldNotifyType] = kind

	if err != nil {
		sl.logger.WarnContext(ctx, "Notification failed", fields.ToSlice()...)
		return
	}
	sl.logger.InfoContext(ctx, "Notification sent", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
