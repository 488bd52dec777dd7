package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Messenger: всё, что хендлерам нужно от Telegram
type Messenger interface {
	SendText(chatID int64, text string, markup any) (int, error)
	SendPhoto(chatID int64, name string, data []byte, caption string) (int, error)
	SendDocument(chatID int64, path, caption string) error
	SendAction(chatID int64, action string) error
	Delete(chatID int64, messageID int) error
	AnswerCallback(callbackID, text string) error
}

type BotMessenger struct {
	bot *tgbotapi.BotAPI
}

func NewBotMessenger(bot *tgbotapi.BotAPI) *BotMessenger {
	return &BotMessenger{bot: bot}
}

func (m *BotMessenger) SendText(chatID int64, text string, markup any) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	sent, err := m.bot.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (m *BotMessenger) SendPhoto(chatID int64, name string, data []byte, caption string) (int, error) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	photo.Caption = caption
	photo.ReplyMarkup = MainKeyboard()
	sent, err := m.bot.Send(photo)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (m *BotMessenger) SendDocument(chatID int64, path, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	_, err := m.bot.Send(doc)
	return err
}

// chat action, delete и callback answer возвращают bool, а не Message, поэтому Request
func (m *BotMessenger) SendAction(chatID int64, action string) error {
	_, err := m.bot.Request(tgbotapi.NewChatAction(chatID, action))
	return err
}

func (m *BotMessenger) Delete(chatID int64, messageID int) error {
	_, err := m.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (m *BotMessenger) AnswerCallback(callbackID, text string) error {
	_, err := m.bot.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}
