package models

import (
	"time"

	"gorm.io/gorm"
)

type Payment struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	PlanID         string         `gorm:"size:64;not null" json:"plan_id"`
	AmountXAF      int64          `gorm:"not null" json:"amount_xaf"`
	OriginalXAF    int64          `gorm:"not null" json:"original_xaf"`
	Currency       string         `gorm:"size:3;default:'XAF'" json:"currency"`
	Gateway        string         `gorm:"size:20;not null" json:"gateway"`
	TransactionID  string         `gorm:"size:255;uniqueIndex" json:"transaction_id"` // composite token from pkg/txid
	GatewayRef     string         `gorm:"size:255;index" json:"gateway_ref"`          // fapshi transId / lygos payment id
	Status         string         `gorm:"size:20;not null;index" json:"status"`       // PENDING, COMPLETED, FAILED
	IdempotencyKey string         `gorm:"size:255;uniqueIndex" json:"-"`
	CompletedAt    *time.Time     `json:"completed_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Payment) TableName() string { return "payments" }
