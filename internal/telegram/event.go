package telegram

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vovarama1992/genbot/internal/ports"
)

type InputKind int

const (
	InputText InputKind = iota
	InputCommand
	InputButtonText
	InputButtonImage
	InputCallback
)

func (k InputKind) String() string {
	switch k {
	case InputCommand:
		return "command"
	case InputButtonText:
		return "button_text"
	case InputButtonImage:
		return "button_image"
	case InputCallback:
		return "callback"
	}
	return "text"
}

// Event: входящее сообщение или нажатие inline-кнопки в одном виде
type Event struct {
	UserID    int64
	ChatID    int64
	MessageID int
	Username  string

	Text    string
	Command string

	CallbackID   string
	CallbackData string

	SentAt time.Time
}

// EventFromUpdate returns false for updates the bot does not handle
// (edited messages, channel posts, messages without a sender).
func EventFromUpdate(upd tgbotapi.Update, now time.Time) (Event, bool) {
	switch {
	case upd.Message != nil && upd.Message.From != nil:
		msg := upd.Message
		return Event{
			UserID:    msg.From.ID,
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			Username:  msg.From.UserName,
			Text:      msg.Text,
			Command:   msg.Command(),
			SentAt:    msg.Time(),
		}, true

	case upd.CallbackQuery != nil && upd.CallbackQuery.From != nil:
		cb := upd.CallbackQuery
		ev := Event{
			UserID:       cb.From.ID,
			ChatID:       cb.From.ID,
			Username:     cb.From.UserName,
			CallbackID:   cb.ID,
			CallbackData: cb.Data,
			// у callback нет даты отправки
			SentAt: now,
		}
		if cb.Message != nil {
			ev.ChatID = cb.Message.Chat.ID
			ev.MessageID = cb.Message.MessageID
		}
		return ev, true
	}
	return Event{}, false
}

func (e Event) IsCallback() bool { return e.CallbackID != "" }

func (e Event) Kind() InputKind {
	switch {
	case e.IsCallback():
		return InputCallback
	case e.Command != "":
		return InputCommand
	}
	switch normalizeButton(e.Text) {
	case normTextButton:
		return InputButtonText
	case normImageButton:
		return InputButtonImage
	}
	return InputText
}

func (e Event) UserRef() ports.UserRef {
	return ports.UserRef{TelegramID: e.UserID, Username: e.Username}
}
