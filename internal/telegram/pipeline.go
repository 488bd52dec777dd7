package telegram

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/genbot/internal/metrics"
)

type Handler func(ctx context.Context, ev Event)

type Middleware func(next Handler) Handler

// Chain wraps h so that mws[0] runs first.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// withRecover: паника в хендлере не должна оставлять юзера в Processing
func (app *BotApp) withRecover(next Handler) Handler {
	return func(ctx context.Context, ev Event) {
		defer func() {
			if r := recover(); r != nil {
				app.log.Error("[bot] handler panic",
					zap.Any("panic", r),
					zap.Int64("user_id", ev.UserID),
					zap.ByteString("stack", debug.Stack()),
				)
				app.sessions.Reset(ev.UserID)
				app.send(ev.ChatID, MsgInternalError, MainKeyboard())
			}
		}()
		next(ctx, ev)
	}
}

// withStaleness молча отбрасывает старые сообщения (бэклог после простоя)
func (app *BotApp) withStaleness(next Handler) Handler {
	return func(ctx context.Context, ev Event) {
		if !ev.IsCallback() && !app.stale.Fresh(ev.SentAt, app.now()) {
			metrics.GuardRejections.WithLabelValues("stale").Inc()
			app.log.Debug("[guard] stale event dropped",
				zap.Int64("user_id", ev.UserID),
				zap.Time("sent_at", ev.SentAt),
			)
			return
		}
		next(ctx, ev)
	}
}

// withFlood пропускает одно сообщение от юзера за окно TTL.
// Лишнее сообщение и предупреждение удаляются, когда окно закончится.
func (app *BotApp) withFlood(next Handler) Handler {
	return func(ctx context.Context, ev Event) {
		if ev.IsCallback() || app.flood.Admit(ev.UserID) {
			next(ctx, ev)
			return
		}

		metrics.GuardRejections.WithLabelValues("flood").Inc()
		app.log.Debug("[guard] flood rejected", zap.Int64("user_id", ev.UserID))

		m := app.messenger()
		warnID, err := m.SendText(ev.ChatID, MsgFloodWarning, nil)
		app.after(app.flood.TTL(), func() {
			// сообщения могли уже удалить
			if err == nil {
				_ = m.Delete(ev.ChatID, warnID)
			}
			if ev.MessageID != 0 {
				_ = m.Delete(ev.ChatID, ev.MessageID)
			}
		})
	}
}

// presence показывает "печатает..." / "отправляет фото..." перед работой хендлера
func (app *BotApp) presence(action string, delay time.Duration) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, ev Event) {
			if err := app.messenger().SendAction(ev.ChatID, action); err != nil {
				app.log.Debug("[bot] chat action failed", zap.String("action", action), zap.Error(err))
			}
			if err := app.sleep(ctx, delay); err != nil {
				return
			}
			next(ctx, ev)
		}
	}
}
