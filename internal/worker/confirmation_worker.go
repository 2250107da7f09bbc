package worker

import (
	"context"
	"fmt"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/amqp"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
)

// Notifier is the part of the notification service the worker drives.
// *notify.Service implements it.
type Notifier interface {
	TransactionConfirmation(ctx context.Context, chatID, userID int64, kind core.Kind, amount int64, category string) error
	CheckStreak(ctx context.Context, userID int64) (bool, error)
}

// ConfirmationWorker turns transaction.recorded events into confirmation
// messages, with a budget warning when the category is close to its limit.
type ConfirmationWorker struct {
	notifier Notifier
	streaks  bool
	logger   *log.Logger
}

func NewConfirmationWorker(notifier Notifier, streaks bool, logger *log.Logger) *ConfirmationWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ConfirmationWorker{
		notifier: notifier,
		streaks:  streaks,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleTransactionRecorded processes a single transaction event from AMQP.
// A returned error makes the consumer requeue the message.
func (w *ConfirmationWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	w.logger.InfoContext(ctx, "Processing transaction event",
		"id", msg.ID,
		log.FieldUserID, msg.UserID,
		log.FieldCategory, msg.Category)

	kind := core.ParseKind(msg.Kind)
	if kind == "" {
		// Dropped, not requeued.
		w.logger.WarnContext(ctx, "Dropping event with unknown kind", "id", msg.ID, "kind", msg.Kind)
		return nil
	}

	if msg.Replied {
		w.logger.DebugContext(ctx, "Publisher already confirmed, skipping confirmation", "id", msg.ID)
	} else if err := w.notifier.TransactionConfirmation(ctx, msg.ChatID, msg.UserID, kind, msg.Amount, msg.Category); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}

	if !w.streaks {
		return nil
	}
	sent, err := w.notifier.CheckStreak(ctx, msg.UserID)
	if err != nil {
		// The confirmation already went out, so the event is not retried.
		w.logger.WarnContext(ctx, "Streak check failed", "id", msg.ID, log.FieldError, err)
		return nil
	}
	if sent {
		w.logger.InfoContext(ctx, "Streak milestone sent", log.FieldUserID, msg.UserID)
	}
	return nil
}
