package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//表示用の注文番号（採番後は変更しない）
	OrderNumber string `gorm:"type:varchar(64);not null;uniqueIndex" json:"orderNumber"`

	UserID int64       `gorm:"not null;index;uniqueIndex:ux_orders_user_key,priority:1" json:"userId"`
	Status OrderStatus `gorm:"type:integer;not null;index" json:"status"`

	//金額: total = subtotal + tax + shipping
	Subtotal    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Tax         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tax"`
	ShippingFee decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"shippingFee"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`

	PaymentMethod string `gorm:"type:varchar(50)" json:"paymentMethod"`

	ShipTo ShippingAddress `gorm:"embedded;embeddedPrefix:ship_" json:"shippingAddress"`

	//処方箋ルートで作成された注文のみ
	Prescription Prescription `gorm:"embedded;embeddedPrefix:rx_" json:"prescription"`

	//最後の遷移で渡されたメモ
	StatusNote string `gorm:"type:text" json:"statusNote"`

	//在庫の引当/戻しを1回だけにするための印
	StockDecrementedAt *time.Time `json:"stockDecrementedAt"`
	StockRestoredAt    *time.Time `json:"stockRestoredAt"`

	IdempotencyKey string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_orders_user_key,priority:2" json:"-"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null" json:"updatedAt"`
}

// 処方箋の情報とレビュー結果
type Prescription struct {
	ImageURL    string     `gorm:"type:text" json:"imageUrl"`
	DoctorName  string     `gorm:"type:varchar(255)" json:"doctorName"`
	DoctorPhone string     `gorm:"type:varchar(30)" json:"doctorPhone"`
	ReviewerID  *int64     `json:"reviewerId"`
	ReviewNotes string     `gorm:"type:text" json:"reviewNotes"`
	ReviewedAt  *time.Time `json:"reviewedAt"`
}

func (p Prescription) Present() bool {
	return p.ImageURL != ""
}

func (o Order) HasPrescription() bool {
	return o.Prescription.Present()
}

// 在庫が引当済みで、まだ戻していない
func (o Order) HoldsStock() bool {
	return o.StockDecrementedAt != nil && o.StockRestoredAt == nil
}
