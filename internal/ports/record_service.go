package ports

import (
	"context"

	"github.com/Vovarama1992/genbot/internal/history"
)

type RecordService interface {
	RegisterUser(ctx context.Context, u UserRef) (*User, error)
	SaveExchange(ctx context.Context, ex Exchange) (int64, error)

	// History возвращает записи пользователя по фильтру, в порядке отчёта
	History(ctx context.Context, telegramID int64, f history.Filter) ([]history.Row, error)

	ListUsers(ctx context.Context) ([]User, error)
}
