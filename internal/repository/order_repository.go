package repository

import (
	"context"
	"time"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
)

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status *model.OrderStatus
	//レポート用のマスク（status & mask <> 0）
	StatusMask uint16
	UserID     *int64
	From       *time.Time
	To         *time.Time
}

// 処方箋レビュー結果
type PrescriptionReview struct {
	ReviewerID int64
	Notes      string
	ReviewedAt time.Time
}

// 条件付きステータス更新の中身。nil の項目は更新しない。
type OrderStatusChange struct {
	Status             model.OrderStatus
	Note               *string
	StockDecrementedAt *time.Time
	StockRestoredAt    *time.Time
	Review             *PrescriptionReview
	UpdatedAt          time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)

	//status = expected のときだけ更新（false なら他の更新と競合）
	UpdateStatusIf(ctx context.Context, orderID int64, expected model.OrderStatus, change OrderStatusChange) (bool, error)

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)
	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
