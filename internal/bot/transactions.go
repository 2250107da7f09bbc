package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/amqp"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/present"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/report"
)

// handleTransactions records every valid line of a free-text message, dated
// today. Lines are independent: a bad line or a failed write does not stop
// the others.
func (b *Bot) handleTransactions(ctx context.Context, msg *tgbotapi.Message) error {
	logger := log.FromContext(ctx)
	userID := msg.From.ID
	today := b.today()

	lines, failed := core.ParseLines(msg.Text)
	rec := present.Recorded{Failed: failed}
	for _, f := range failed {
		logger.DebugContext(ctx, "Rejected transaction line", log.FieldOperation, log.OpParse, log.FieldError, f.Err)
	}

	var storeErr error
	for _, p := range lines {
		tx := p.Transaction(today, userID)
		if p.AmountState == core.IntUnparseable {
			logger.WarnContext(ctx, "Unreadable amount recorded as zero",
				log.FieldDescription, p.Description, log.FieldCategory, p.Category)
		}
		if _, err := b.store.AppendTransaction(ctx, tx); err != nil {
			logger.ErrorContext(ctx, "Append transaction failed", log.FieldError, err)
			rec.Unsaved = append(rec.Unsaved, lineText(p))
			storeErr = errors.Join(storeErr, err)
			continue
		}
		rec.Saved = append(rec.Saved, p)
		b.events.LogTransactionRecorded(ctx, userID, tx.Description, tx.Amount, tx.Category, string(tx.Kind))
		b.publish(ctx, msg.Chat.ID, tx)
	}

	if len(rec.Saved) == 0 && len(rec.Failed) == 0 && len(rec.Unsaved) == 0 {
		return nil
	}

	var month *report.Snapshot
	if len(rec.Saved) > 0 {
		var err error
		if month, err = b.loader.Load(ctx, userID, core.MonthRange(today)); err != nil {
			logger.WarnContext(ctx, "Budget impact unavailable", log.FieldError, err)
		}
	}

	var rows []tgbotapi.InlineKeyboardButton
	if len(rec.Saved) > 0 {
		rows = append(rows,
			button("📊 Lihat Laporan Hari Ini", cbReportDaily),
			button("💰 Cek Status Anggaran", cbListBudget))
	}
	rows = append(rows, button("📝 Panduan Input", cbMenuTransaction), homeButton)

	if _, err := b.sendHTML(msg.Chat.ID, present.TransactionReply(rec, month), column(rows...)); err != nil {
		return errors.Join(storeErr, err)
	}
	if storeErr != nil {
		return fmt.Errorf("append transactions: %w", storeErr)
	}
	return nil
}

// lineText rebuilds a parsed line in input form for the "not saved" list.
func lineText(p core.ParsedLine) string {
	sign := "-"
	if p.Kind == core.KindIncome {
		sign = "+"
	}
	return fmt.Sprintf("%s %s%d /%s", p.Description, sign, p.Amount, p.Category)
}

// publish announces tx on the event bus. Failures are logged only: the row
// is already stored.
func (b *Bot) publish(ctx context.Context, chatID int64, tx core.Transaction) {
	if b.publisher == nil {
		return
	}
	msg := amqp.NewTransactionRecordedMessage(tx.UserID, chatID, tx.Date.Sheet(), tx.Description, tx.Amount, tx.Category, string(tx.Kind))
	// The chat reply already carries the budget impact.
	msg.Replied = true
	if err := b.publisher.PublishTransactionRecorded(ctx, msg); err != nil {
		log.FromContext(ctx).WarnContext(ctx, "Publish transaction event failed", log.FieldError, err)
	}
}
