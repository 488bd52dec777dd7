package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vovarama1992/genbot/internal/error_notificator"
	"github.com/Vovarama1992/genbot/internal/metrics"
	"github.com/Vovarama1992/genbot/internal/ports"
)

const replyTimeout = 120 * time.Second

type TextService struct {
	backend  TextBackend
	records  ports.RecordService
	notifier error_notificator.Notificator
	model    string
	log      *zap.Logger
}

func NewTextService(
	backend TextBackend,
	records ports.RecordService,
	notifier error_notificator.Notificator,
	model string,
	log *zap.Logger,
) *TextService {
	return &TextService{
		backend:  backend,
		records:  records,
		notifier: notifier,
		model:    model,
		log:      log,
	}
}

// диагностика ошибок GPT
func analyzeOpenAIError(err error) string {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "status code: 401"):
		return "Неверный API-ключ прокси."
	case strings.Contains(msg, "status code: 402"):
		return "Недостаточно средств на балансе прокси."
	case strings.Contains(msg, "status code: 404"):
		return "Модель не найдена."
	case strings.Contains(msg, "status code: 429"):
		return "Превышен лимит запросов."
	case strings.Contains(msg, "status code: 400") && strings.Contains(msg, "model"):
		return "Неверно указана модель."
	case strings.Contains(msg, "status code: 400"):
		return "Некорректный запрос к модели."
	case strings.Contains(msg, "status code: 5"):
		return "Внутренняя ошибка провайдера."
	case strings.Contains(msg, "deadline exceeded"):
		return "Провайдер не ответил вовремя."
	}
	return "Неизвестная ошибка: " + err.Error()
}

func (s *TextService) notifyGptError(ctx context.Context, user ports.UserRef, err error) {
	diag := analyzeOpenAIError(err)
	_ = s.notifier.Notify(ctx, err,
		fmt.Sprintf("Ошибка GPT\nМодель: %s\nПользователь: %d\n\n%s", s.model, user.TelegramID, diag))
}

// Reply asks the backend and stores the exchange. A storage failure is logged
// and does not withhold the answer.
func (s *TextService) Reply(ctx context.Context, user ports.UserRef, prompt string) (*Completion, error) {
	start := time.Now()
	s.log.Info("[text] start", zap.Int64("tg_id", user.TelegramID))

	ctxGPT, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	comp, err := s.backend.Complete(ctxGPT, prompt)
	if err != nil {
		metrics.RecordBackend("text", "error", time.Since(start).Seconds())
		s.log.Error("[text] completion fail", zap.Int64("tg_id", user.TelegramID), zap.Error(err))
		s.notifyGptError(ctx, user, err)
		return nil, err
	}
	metrics.RecordBackend("text", "ok", time.Since(start).Seconds())
	metrics.RecordTokens(comp.Model, comp.PromptTokens, comp.CompletionTokens)

	if _, err := s.records.SaveExchange(ctx, ports.Exchange{
		User:        user,
		Model:       comp.Model,
		Request:     prompt,
		Answer:      comp.Answer,
		TotalTokens: comp.TotalTokens,
		RequestedAt: start.UTC(),
	}); err != nil {
		s.log.Error("[text] save exchange fail", zap.Int64("tg_id", user.TelegramID), zap.Error(err))
	}

	s.log.Info("[text] done",
		zap.Int64("tg_id", user.TelegramID),
		zap.Int("tokens", comp.TotalTokens),
		zap.Duration("took", time.Since(start)),
	)
	return comp, nil
}
