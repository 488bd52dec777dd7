package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Vovarama1992/genbot/internal/conversation"
)

// telegram не примет сообщение длиннее
const maxMessageRunes = 4096

// onPrompt принимает запрос в режиме ожидания и запускает нужную генерацию
func (app *BotApp) onPrompt(ctx context.Context, ev Event) {
	mode, op, err := app.sessions.SubmitPrompt(ev.UserID, ev.Text)
	switch {
	case errors.Is(err, conversation.ErrEmptyPrompt):
		app.send(ev.ChatID, MsgEmptyPrompt, MainKeyboard())
		return
	case errors.Is(err, conversation.ErrBusy):
		app.onBusy(ctx, ev)
		return
	case err != nil:
		app.onEcho(ctx, ev)
		return
	}

	defer app.finish(ctx, ev.UserID, op)

	app.log.Info("[bot] prompt accepted", zap.Int64("user_id", ev.UserID), zap.Stringer("mode", mode))
	if mode == conversation.ModeImage {
		app.imageFlow(ctx, ev)
		return
	}
	app.textFlow(ctx, ev)
}

// finish выдерживает паузу, чтобы клиент успел отрисовать ответ, и возвращает юзера в Idle
func (app *BotApp) finish(ctx context.Context, userID int64, op uint64) {
	_ = app.sleep(ctx, app.opts.GraceDelay)
	app.sessions.Finish(userID, op)
}

func (app *BotApp) generateText(ctx context.Context, ev Event) {
	waitID := app.send(ev.ChatID, MsgWaitText, nil)

	res, err := app.text.Reply(ctx, ev.UserRef(), ev.Text)
	app.dropMessage(ev.ChatID, waitID)
	if err != nil {
		app.log.Warn("[text] generation failed", zap.Int64("user_id", ev.UserID), zap.Error(err))
		app.send(ev.ChatID, MsgTextFailed, MainKeyboard())
		return
	}

	for _, part := range splitMessage(res.Answer, maxMessageRunes) {
		app.send(ev.ChatID, part, MainKeyboard())
	}
}

func (app *BotApp) dropMessage(chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	if err := app.messenger().Delete(chatID, messageID); err != nil {
		app.log.Debug("[bot] delete failed", zap.Int("message_id", messageID), zap.Error(err))
	}
}

// splitMessage режет текст на куски не длиннее limit рун
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var parts []string
	for len(runes) > 0 {
		n := min(limit, len(runes))
		parts = append(parts, string(runes[:n]))
		runes = runes[n:]
	}
	return parts
}
