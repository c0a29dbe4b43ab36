package model

// 注文時点の配送先スナップショット。
// 顧客プロフィールの住所を後から変更しても、過去の注文は変わらない。
type ShippingAddress struct {
	//宛名
	RecipientName string `gorm:"type:varchar(255);not null" json:"recipientName" validate:"required,max=255"`

	//電話番号
	Phone string `gorm:"type:varchar(30)" json:"phone" validate:"max=30"`

	//番地など
	Line1 string `gorm:"type:varchar(255);not null" json:"line1" validate:"required,max=255"`

	//建物名など
	Line2 string `gorm:"type:varchar(255)" json:"line2" validate:"max=255"`

	//市区町村
	City string `gorm:"type:varchar(255);not null" json:"city" validate:"required,max=255"`

	//都道府県・州
	Region string `gorm:"type:varchar(100)" json:"region" validate:"max=100"`

	//郵便番号
	PostalCode string `gorm:"type:varchar(20)" json:"postalCode" validate:"max=20"`

	Country string `gorm:"type:varchar(100)" json:"country" validate:"max=100"`
}
