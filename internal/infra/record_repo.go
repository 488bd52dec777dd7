package infra

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Vovarama1992/genbot/internal/history"
	"github.com/Vovarama1992/genbot/internal/ports"
)

type recordRepo struct {
	db *gorm.DB
}

func NewRecordRepo(db *gorm.DB) ports.RecordRepo {
	return &recordRepo{db: db}
}

func (r *recordRepo) EnsureUser(ctx context.Context, u ports.UserRef) (*ports.User, error) {
	m, err := ensureUser(r.db.WithContext(ctx), u)
	if err != nil {
		return nil, err
	}
	return toUser(m), nil
}

func (r *recordRepo) EnsureModel(ctx context.Context, name string) (int64, error) {
	return ensureModel(r.db.WithContext(ctx), name)
}

// INSERT ... ON CONFLICT DO NOTHING, затем выборка по естественному ключу:
// параллельные вызовы для одного tg_id сходятся к одной строке
func ensureUser(tx *gorm.DB, u ports.UserRef) (*userModel, error) {
	m := userModel{TgID: u.TelegramID, Username: u.Username}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tg_id"}},
		DoNothing: true,
	}).Create(&m).Error; err != nil {
		return nil, err
	}

	var got userModel
	if err := tx.Where("tg_id = ?", u.TelegramID).First(&got).Error; err != nil {
		return nil, err
	}

	if u.Username != "" && got.Username != u.Username {
		if err := tx.Model(&got).Update("username", u.Username).Error; err != nil {
			return nil, err
		}
		got.Username = u.Username
	}
	return &got, nil
}

func ensureModel(tx *gorm.DB, name string) (int64, error) {
	m := aiModel{Name: name}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&m).Error; err != nil {
		return 0, err
	}

	var got aiModel
	if err := tx.Where("name = ?", name).First(&got).Error; err != nil {
		return 0, err
	}
	return got.ID, nil
}

func (r *recordRepo) SaveExchange(ctx context.Context, ex ports.Exchange) (int64, error) {
	var id int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := ensureUser(tx, ex.User)
		if err != nil {
			return err
		}
		modelID, err := ensureModel(tx, ex.Model)
		if err != nil {
			return err
		}

		rec := requestModel{
			Request:     ex.Request,
			Answer:      ex.Answer,
			TotalTokens: ex.TotalTokens,
			ModelID:     modelID,
			UserID:      user.ID,
			RequestedAt: ex.RequestedAt.UTC(),
		}
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return err
		}
		id = rec.ID
		return nil
	})
	return id, err
}

func (r *recordRepo) Query(ctx context.Context, q history.Query) ([]history.Row, error) {
	if q.Empty() {
		return []history.Row{}, nil
	}

	tx := r.db.WithContext(ctx).
		Table("requests_to_ai AS r").
		Select("r.id, r.request, r.answer, r.total_tokens, m.name AS model_name, r.requested_at").
		Joins("JOIN users u ON u.id = r.user_id").
		Joins("JOIN ai_models m ON m.id = r.model_id").
		Where("u.tg_id = ?", q.TelegramID)

	if q.Since != nil {
		tx = tx.Where("r.requested_at >= ?", q.Since.UTC())
	}
	if q.Until != nil {
		tx = tx.Where("r.requested_at <= ?", q.Until.UTC())
	}

	switch q.Order {
	case history.OrderNewest:
		tx = tx.Order("r.requested_at DESC, r.id DESC")
	case history.OrderTokensDesc:
		tx = tx.Order("r.total_tokens DESC, r.id ASC")
	case history.OrderTokensAsc:
		tx = tx.Order("r.total_tokens ASC, r.id ASC")
	default:
		tx = tx.Order("r.id ASC")
	}

	if q.Limit != history.NoLimit {
		tx = tx.Limit(q.Limit)
	}

	rows := []history.Row{}
	if err := tx.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *recordRepo) GetUser(ctx context.Context, telegramID int64) (*ports.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).Where("tg_id = ?", telegramID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toUser(&m), nil
}

func (r *recordRepo) ListUsers(ctx context.Context) ([]ports.User, error) {
	var models []userModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, err
	}

	result := make([]ports.User, 0, len(models))
	for i := range models {
		result = append(result, *toUser(&models[i]))
	}
	return result, nil
}

func toUser(m *userModel) *ports.User {
	return &ports.User{ID: m.ID, TelegramID: m.TgID, Username: m.Username}
}
