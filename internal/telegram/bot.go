package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const commandsRefresh = 5 * time.Minute

// Serve подключается к Telegram и обрабатывает апдейты, пока жив ctx.
// onConnect получает готовый клиент (например, для уведомлений админу).
func (app *BotApp) Serve(ctx context.Context, token string, onConnect func(*tgbotapi.BotAPI)) error {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("connect bot: %w", err)
	}
	app.log.Info("[bot_loop] connected", zap.String("username", bot.Self.UserName))

	// апдейты, накопившиеся за время простоя, не нужны
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("drop pending updates: %w", err)
	}

	if onConnect != nil {
		onConnect(bot)
	}
	app.Attach(NewBotMessenger(bot))

	refreshCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.refreshCommands(refreshCtx, bot)
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			wg.Wait()
			app.log.Info("[bot_loop] stopped")
			return nil

		case upd, ok := <-updates:
			if !ok {
				stopRefresh()
				wg.Wait()
				return errors.New("updates channel closed")
			}
			ev, ok := EventFromUpdate(upd, app.now())
			if !ok {
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				app.HandleEvent(ctx, ev)
			}()
		}
	}
}

// refreshCommands восстанавливает кнопку "Меню", которая иногда пропадает
func (app *BotApp) refreshCommands(ctx context.Context, bot *tgbotapi.BotAPI) {
	ticker := time.NewTicker(commandsRefresh)
	defer ticker.Stop()

	for {
		if _, err := bot.Request(tgbotapi.NewSetMyCommands(BotCommands...)); err != nil {
			app.log.Warn("[bot_loop] set commands failed", zap.Error(err))
		} else {
			app.log.Debug("[bot_loop] commands updated")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
