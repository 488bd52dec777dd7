package error_notificator

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender: часть tgbotapi.BotAPI, нужная для отправки
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Infra struct {
	mu          sync.RWMutex
	bot         Sender
	adminChatID int64
	log         *zap.Logger
}

func NewInfra(adminChatID int64, log *zap.Logger) *Infra {
	return &Infra{adminChatID: adminChatID, log: log}
}

// SetBot: бот создаётся позже (и пересоздаётся при рестарте цикла)
func (i *Infra) SetBot(bot Sender) {
	i.mu.Lock()
	i.bot = bot
	i.mu.Unlock()
}

func (i *Infra) Notify(ctx context.Context, err error, details string) error {
	i.log.Error("[error_notificator] "+details, zap.Error(err))

	if i.adminChatID == 0 {
		return nil
	}

	i.mu.RLock()
	bot := i.bot
	i.mu.RUnlock()
	if bot == nil {
		return fmt.Errorf("bot not ready")
	}

	text := fmt.Sprintf("❗ Ошибка в боте\n\nОшибка: %v\n\nДетали: %s", err, details)
	if _, sendErr := bot.Send(tgbotapi.NewMessage(i.adminChatID, text)); sendErr != nil {
		i.log.Warn("[error_notificator] send fail", zap.Error(sendErr))
		return sendErr
	}
	return nil
}
