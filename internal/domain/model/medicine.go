package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// カタログの医薬品。在庫は StockLedger 経由でだけ変更する。
type Medicine struct {
	ID                   int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                 string          `gorm:"type:varchar(255);not null" json:"name"`
	Price                decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock                int64           `gorm:"not null" json:"stock"`
	MinStock             int64           `gorm:"not null;default:0" json:"minStock"`
	RequiresPrescription bool            `gorm:"not null;default:false" json:"requiresPrescription"`
	IsActive             bool            `gorm:"not null;default:true" json:"isActive"`
	CreatedAt            time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time       `gorm:"not null;autoUpdateTime" json:"updatedAt"`
	DeletedAt            gorm.DeletedAt  `gorm:"index" json:"-"`
}
