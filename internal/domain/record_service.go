package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/Vovarama1992/genbot/internal/error_notificator"
	"github.com/Vovarama1992/genbot/internal/history"
	"github.com/Vovarama1992/genbot/internal/ports"
)

type recordService struct {
	repo     ports.RecordRepo
	notifier error_notificator.Notificator
	now      func() time.Time
}

func NewRecordService(repo ports.RecordRepo, n error_notificator.Notificator) ports.RecordService {
	return &recordService{
		repo:     repo,
		notifier: n,
		now:      time.Now,
	}
}

func (s *recordService) RegisterUser(ctx context.Context, u ports.UserRef) (*ports.User, error) {
	user, err := s.repo.EnsureUser(ctx, u)
	if err != nil {
		_ = s.notifier.Notify(ctx, err,
			fmt.Sprintf("Ошибка регистрации пользователя: tg=%d", u.TelegramID))
		return nil, err
	}
	return user, nil
}

func (s *recordService) SaveExchange(ctx context.Context, ex ports.Exchange) (int64, error) {
	if ex.RequestedAt.IsZero() {
		ex.RequestedAt = s.now().UTC()
	}

	id, err := s.repo.SaveExchange(ctx, ex)
	if err != nil {
		_ = s.notifier.Notify(ctx, err,
			fmt.Sprintf("Ошибка записи запроса в историю: tg=%d model=%s", ex.User.TelegramID, ex.Model))
		return 0, err
	}
	return id, nil
}

func (s *recordService) History(ctx context.Context, telegramID int64, f history.Filter) ([]history.Row, error) {
	q := history.BuildQuery(f, telegramID, s.now())
	if q.Empty() {
		return []history.Row{}, nil
	}
	return s.repo.Query(ctx, q)
}

func (s *recordService) ListUsers(ctx context.Context) ([]ports.User, error) {
	return s.repo.ListUsers(ctx)
}
