package usecase

import (
	"context"
	"time"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
)

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// OrderEvent は注文ライフサイクルの通知内容。
type OrderEvent struct {
	OrderID     int64      `json:"orderId"`
	OrderNumber string     `json:"orderNumber"`
	UserID      int64      `json:"userId"`
	FromStatus  uint16     `json:"fromStatus"`
	ToStatus    uint16     `json:"toStatus"`
	Note        string     `json:"note,omitempty"`
	ActorUserID int64      `json:"actorUserId"`
	ActorRole   model.Role `json:"actorRole"`
	OccurredAt  time.Time  `json:"occurredAt"`
}

// 通知の送信先（失敗しても遷移は戻さない）
type Notifier interface {
	Notify(ctx context.Context, event OrderEvent) error
}
