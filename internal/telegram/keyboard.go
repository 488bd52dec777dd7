package telegram

import (
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vovarama1992/genbot/internal/history"
)

func MainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnGenerateText),
			tgbotapi.NewKeyboardButton(BtnGenerateImage),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// HistoryKeyboard: кнопки /history, по одной в строке
func HistoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	buttons := []struct{ text, token string }{
		{"Последние 5 запросов", "last5"},
		{"Последние 10 запросов", "last10"},
		{"Все за последнюю неделю", "days7"},
		{"Все за последний месяц", "days30"},
		{"За все время", "all"},
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, b := range buttons {
		btn := tgbotapi.NewInlineKeyboardButtonData(b.text, history.HistoryPrefix+b.token)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(btn))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// HighLowKeyboard: кнопки /high и /low, по две в строке
func HighLowKeyboard(d history.Direction) tgbotapi.InlineKeyboardMarkup {
	dir := d.String()
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Вывести 5 запросов", dir+"_5"),
			tgbotapi.NewInlineKeyboardButtonData("Вывести 10 запросов", dir+"_10"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Укажите сколько вывести запросов", dir+history.CustomSuffix),
		),
	)
}

// normalizeButton оставляет только буквы и пробелы: "Сгенерировать \nтекст 📄" -> "сгенерировать текст"
func normalizeButton(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

var (
	normTextButton  = normalizeButton(BtnGenerateText)
	normImageButton = normalizeButton(BtnGenerateImage)
)
