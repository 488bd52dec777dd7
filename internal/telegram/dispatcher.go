package telegram

import (
	"context"

	"go.uber.org/zap"

	"github.com/Vovarama1992/genbot/internal/conversation"
)

// anyState: маршрут, действующий в любом состоянии, кроме Processing
const anyState conversation.State = -1

type route struct {
	state conversation.State
	kind  InputKind
}

// buildRoutes: таблица (состояние, тип ввода) -> хендлер.
// Точное совпадение состояния имеет приоритет над anyState.
func (app *BotApp) buildRoutes() map[route]Handler {
	return map[route]Handler{
		{anyState, InputCommand}:     app.onCommand,
		{anyState, InputButtonText}:  app.onTextButton,
		{anyState, InputButtonImage}: app.onImageButton,
		{anyState, InputCallback}:    app.onCallback,

		{conversation.Idle, InputText}:                app.onEcho,
		{conversation.AwaitingTextPrompt, InputText}:  app.onPrompt,
		{conversation.AwaitingImagePrompt, InputText}: app.onPrompt,
		{conversation.AwaitingCustomCount, InputText}: app.onCustomCount,
	}
}

func (app *BotApp) dispatch(ctx context.Context, ev Event) {
	kind := ev.Kind()

	// /start сбрасывает всё, даже незавершённую генерацию
	if kind == InputCommand && ev.Command == "start" {
		app.onStart(ctx, ev)
		return
	}

	state := app.sessions.Current(ev.UserID).State
	if state == conversation.Processing {
		app.onBusy(ctx, ev)
		return
	}

	if h, ok := app.routes[route{state, kind}]; ok {
		h(ctx, ev)
		return
	}
	if h, ok := app.routes[route{anyState, kind}]; ok {
		h(ctx, ev)
		return
	}

	app.log.Debug("[dispatch] no route",
		zap.Int64("user_id", ev.UserID),
		zap.Stringer("state", state),
		zap.Stringer("kind", kind),
	)
}

func (app *BotApp) onBusy(ctx context.Context, ev Event) {
	if ev.IsCallback() {
		if err := app.messenger().AnswerCallback(ev.CallbackID, MsgProcessing); err != nil {
			app.log.Debug("[bot] answer callback failed", zap.Error(err))
		}
		return
	}
	app.send(ev.ChatID, MsgProcessing, nil)
}

func (app *BotApp) onTextButton(ctx context.Context, ev Event) {
	if err := app.sessions.StartTextPrompt(ev.UserID); err != nil {
		app.onBusy(ctx, ev)
		return
	}
	app.send(ev.ChatID, MsgEnterPrompt, nil)
}

func (app *BotApp) onImageButton(ctx context.Context, ev Event) {
	if err := app.sessions.StartImagePrompt(ev.UserID); err != nil {
		app.onBusy(ctx, ev)
		return
	}
	app.send(ev.ChatID, MsgEnterPrompt, nil)
}

func (app *BotApp) onEcho(ctx context.Context, ev Event) {
	app.send(ev.ChatID, MsgChooseType, MainKeyboard())
}
