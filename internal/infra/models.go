package infra

import "time"

type userModel struct {
	ID       int64  `gorm:"primaryKey"`
	TgID     int64  `gorm:"column:tg_id;uniqueIndex;not null"`
	Username string `gorm:"size:255"`
}

func (userModel) TableName() string { return "users" }

type aiModel struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:255;uniqueIndex;not null"`
}

func (aiModel) TableName() string { return "ai_models" }

type requestModel struct {
	ID          int64     `gorm:"primaryKey"`
	Request     string    `gorm:"type:text;not null"`
	Answer      string    `gorm:"type:text;not null"`
	TotalTokens int       `gorm:"not null;default:0;index"`
	ModelID     int64     `gorm:"not null;index"`
	UserID      int64     `gorm:"not null;index"`
	RequestedAt time.Time `gorm:"not null;index"`

	Model aiModel   `gorm:"foreignKey:ModelID;constraint:OnDelete:RESTRICT"`
	User  userModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (requestModel) TableName() string { return "requests_to_ai" }
