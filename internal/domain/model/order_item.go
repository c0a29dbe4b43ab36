package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 注文明細。単価は注文時点のスナップショット。
type OrderItem struct {
	ID                   int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID              int64           `gorm:"not null;index" json:"orderId"`
	MedicineID           int64           `gorm:"not null;index" json:"medicineId"`
	MedicineNameSnapshot string          `gorm:"type:varchar(255);not null" json:"name"`
	UnitPriceSnapshot    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	Quantity             int64           `gorm:"not null" json:"quantity"`
	CreatedAt            time.Time       `gorm:"not null;autoCreateTime" json:"createdAt"`
}

// quantity × 単価スナップショット
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPriceSnapshot.Mul(decimal.NewFromInt(i.Quantity))
}
