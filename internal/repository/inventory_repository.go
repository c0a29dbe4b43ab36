package repository

import (
	"context"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
)

type InventoryRepository interface {
	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, medicineID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, medicineID int64, qty int64) error

	// 台帳に1行追加
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error

	// 注文に紐づく台帳
	ListAdjustmentsByOrderID(ctx context.Context, orderID int64) ([]model.InventoryAdjustment, error)
}
