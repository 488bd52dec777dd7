package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Vovarama1992/genbot/internal/conversation"
	"github.com/Vovarama1992/genbot/internal/history"
)

func (app *BotApp) onCallback(ctx context.Context, ev Event) {
	// убираем "часики" на кнопке
	if err := app.messenger().AnswerCallback(ev.CallbackID, ""); err != nil {
		app.log.Debug("[bot] answer callback failed", zap.Error(err))
	}

	if dir, ok := history.ParseCustom(ev.CallbackData); ok {
		if err := app.sessions.StartCustomCount(ev.UserID, dir); err != nil {
			app.onBusy(ctx, ev)
			return
		}
		app.send(ev.ChatID, MsgCustomCount, nil)
		return
	}

	f, ok := history.ParseToken(ev.CallbackData)
	if !ok {
		app.log.Warn("[bot] unknown callback", zap.String("data", ev.CallbackData), zap.Int64("user_id", ev.UserID))
		return
	}
	app.sendReport(ctx, ev, f)
}

// onCustomCount: число, введённое после "Укажите сколько вывести запросов"
func (app *BotApp) onCustomCount(ctx context.Context, ev Event) {
	f, err := app.sessions.SubmitCustomCount(ev.UserID, ev.Text)
	switch {
	case errors.Is(err, conversation.ErrInvalidCount):
		app.send(ev.ChatID, MsgInvalidCount, nil)
		return
	case errors.Is(err, conversation.ErrBusy):
		app.onBusy(ctx, ev)
		return
	case err != nil:
		app.onEcho(ctx, ev)
		return
	}
	app.sendReport(ctx, ev, f)
}
