package model

import "time"

//在庫台帳の1行。注文による増減は OrderID を持つ。

type InventoryAdjustment struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MedicineID  int64     `gorm:"not null;index" json:"medicineId"`
	OrderID     *int64    `gorm:"index" json:"orderId"`
	ActorUserID int64     `gorm:"not null;index" json:"actorUserId"`
	Delta       int64     `gorm:"not null" json:"delta"`
	Reason      string    `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
}

const (
	AdjustmentReasonOrderFulfillment = "order_fulfillment"
	AdjustmentReasonOrderRelease     = "order_release"
)
