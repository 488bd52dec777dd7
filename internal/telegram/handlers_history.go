package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Vovarama1992/genbot/internal/history"
	"github.com/Vovarama1992/genbot/internal/metrics"
)

// sendReport выгружает историю по фильтру в .txt и отправляет документом
func (app *BotApp) sendReport(ctx context.Context, ev Event, f history.Filter) {
	label := f.Label()

	rows, err := app.records.History(ctx, ev.UserID, f)
	if err != nil {
		metrics.ReportsTotal.WithLabelValues(label, "error").Inc()
		app.log.Error("[history] query failed", zap.Int64("user_id", ev.UserID), zap.String("filter", label), zap.Error(err))
		app.send(ev.ChatID, MsgInternalError, MainKeyboard())
		return
	}
	if len(rows) == 0 {
		metrics.ReportsTotal.WithLabelValues(label, "empty").Inc()
		app.send(ev.ChatID, MsgHistoryEmpty, MainKeyboard())
		return
	}

	header := history.ReportHeader(ev.UserID, ev.Username)
	name := history.FileName(ev.UserID, f, app.now())
	path, err := app.sink.Append(name, history.RenderReport(header, rows))
	if err != nil {
		metrics.ReportsTotal.WithLabelValues(label, "error").Inc()
		app.log.Error("[history] write report failed", zap.String("file", name), zap.Error(err))
		app.send(ev.ChatID, MsgInternalError, MainKeyboard())
		return
	}

	upload := func(ctx context.Context, ev Event) {
		if err := app.messenger().SendDocument(ev.ChatID, path, header); err != nil {
			metrics.ReportsTotal.WithLabelValues(label, "error").Inc()
			app.log.Warn("[history] send document failed", zap.String("file", path), zap.Error(err))
			return
		}
		metrics.ReportsTotal.WithLabelValues(label, "ok").Inc()
		app.log.Info("[history] report sent",
			zap.Int64("user_id", ev.UserID),
			zap.String("filter", label),
			zap.Int("rows", len(rows)),
		)
		app.archiveReport(ev.UserID, path)
	}
	Chain(upload, app.presence(tgbotapi.ChatUploadDocument, app.opts.UploadDelay))(ctx, ev)
}

func (app *BotApp) archiveReport(userID int64, path string) {
	app.goAsync(func() {
		actx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		url, err := app.archive.SaveReport(actx, userID, path)
		if err != nil {
			app.log.Warn("[history] archive failed", zap.String("file", path), zap.Error(err))
			return
		}
		if url != "" {
			app.log.Info("[history] archived", zap.String("url", url))
		}
	})
}

