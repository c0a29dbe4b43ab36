package model

import "time"

// 注文ステータス更新など。
type AuditAction string

const (
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//処方箋をレビューした操作。
	AuditActionReviewPrescription AuditAction = "REVIEW_PRESCRIPTION"
	//注文を作成した操作。
	AuditActionCreateOrder AuditAction = "CREATE_ORDER"
)

// 何に対する操作か
type AuditResourceType string

const (
	//注文に対する操作。
	AuditResourceOrder AuditResourceType = "order"

	//医薬品に対する操作。
	AuditResourceMedicine AuditResourceType = "medicine"
)

// 監査ログ（追記のみ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID。
	ActorUserID int64 `gorm:"not null;index" json:"actorUserId"`

	//操作したユーザーのロール。
	ActorRole Role `gorm:"type:varchar(20);not null" json:"actorRole"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resourceType"`

	ResourceID int64 `gorm:"not null;index" json:"resourceId"`

	//遷移前後のステータスコード（作成時は FromStatus=0）
	FromStatus uint16 `gorm:"not null" json:"fromStatus"`
	ToStatus   uint16 `gorm:"not null" json:"toStatus"`

	Note string `gorm:"type:text" json:"note"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"beforeJson"`
	AfterJSON  string `gorm:"type:text" json:"afterJson"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}
