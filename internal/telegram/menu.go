package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Vovarama1992/genbot/internal/history"
)

// BotCommands: команды кнопки "Меню" и /help
var BotCommands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Перезапустить бота"},
	{Command: "help", Description: "Список команд"},
	{Command: "history", Description: "История запросов"},
	{Command: "high", Description: "Самые дорогие запросы"},
	{Command: "low", Description: "Самые дешёвые запросы"},
}

func helpText() string {
	var b strings.Builder
	for i, c := range BotCommands {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "/%s - %s", c.Command, c.Description)
	}
	return b.String()
}

func (app *BotApp) onStart(ctx context.Context, ev Event) {
	app.sessions.Reset(ev.UserID)

	if _, err := app.records.RegisterUser(ctx, ev.UserRef()); err != nil {
		app.log.Warn("[bot] register user failed", zap.Int64("user_id", ev.UserID), zap.Error(err))
	}
	app.send(ev.ChatID, MsgGreeting, MainKeyboard())
}

// onCommand: команды, кроме /start. Любая команда прерывает ожидание ввода.
func (app *BotApp) onCommand(ctx context.Context, ev Event) {
	app.sessions.Reset(ev.UserID)

	switch ev.Command {
	case "help":
		app.send(ev.ChatID, helpText(), MainKeyboard())
	case "history":
		app.send(ev.ChatID, MsgHistoryChoose, HistoryKeyboard())
	case "high":
		app.send(ev.ChatID, fmt.Sprintf(MsgHighLowChoose, "максимальной"), HighLowKeyboard(history.High))
	case "low":
		app.send(ev.ChatID, fmt.Sprintf(MsgHighLowChoose, "минимальной"), HighLowKeyboard(history.Low))
	default:
		app.send(ev.ChatID, MsgUnknownCommand, MainKeyboard())
	}
}
