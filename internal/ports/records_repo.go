package ports

import (
	"context"
	"time"

	"github.com/Vovarama1992/genbot/internal/history"
)

// UserRef: то, что известно о пользователе из апдейта
type UserRef struct {
	TelegramID int64
	Username   string
}

// DTO для списка пользователей
type User struct {
	ID         int64  `json:"id"`
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
}

// Exchange: один завершённый запрос к текстовой модели
type Exchange struct {
	User        UserRef
	Model       string
	Request     string
	Answer      string
	TotalTokens int
	RequestedAt time.Time
}

// Репозиторий истории запросов
type RecordRepo interface {
	// EnsureUser и EnsureModel идемпотентны: повторный вызов возвращает ту же строку
	EnsureUser(ctx context.Context, u UserRef) (*User, error)
	EnsureModel(ctx context.Context, name string) (int64, error)

	// SaveExchange пишет пользователя, модель и запрос в одной транзакции
	SaveExchange(ctx context.Context, ex Exchange) (int64, error)

	Query(ctx context.Context, q history.Query) ([]history.Row, error)
	GetUser(ctx context.Context, telegramID int64) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}
