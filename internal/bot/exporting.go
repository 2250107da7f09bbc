package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/log"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/present"
)

// sendExport builds the workbook for r and sends it as a document. A
// progress message is edited through the steps and removed before the file
// goes out; on failure it is replaced by the error.
func (b *Bot) sendExport(ctx context.Context, chatID, userID int64, r core.Range, period string) error {
	logger := log.FromContext(ctx).With(log.FieldPeriod, r.String(), log.FieldOperation, log.OpExport)

	progress, err := b.sendHTML(chatID, present.ExportProgress(period, present.StepCollect), nil)
	if err != nil {
		return err
	}
	step := func(s string) {
		if err := b.edit(chatID, progress.MessageID, present.ExportProgress(period, s), nil); err != nil {
			logger.DebugContext(ctx, "Progress update failed", log.FieldError, err)
		}
	}

	step(present.StepBuild)
	buf, name, err := b.exporter.Export(ctx, userID, r)
	if err != nil {
		failed := present.ExportFailed(period, err)
		if editErr := b.edit(chatID, progress.MessageID, failed, nil); editErr != nil {
			_, _ = b.sendHTML(chatID, failed, nil)
		}
		return fmt.Errorf("export %s: %w", r, err)
	}

	step(present.StepSend)
	b.deleteMessage(ctx, chatID, progress.MessageID)

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: buf.Bytes()})
	doc.Caption = present.ExportCaption(period, r)
	doc.ReplyMarkup = column(backHomeButton)
	if _, err := b.sender.Send(doc); err != nil {
		return fmt.Errorf("send export %s: %w", name, err)
	}
	logger.InfoContext(ctx, "Export sent", "file", name, "bytes", buf.Len())
	return nil
}
