package repository

import (
	"context"

	"github.com/go-faster/errors"
	"gorm.io/gorm"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	repo "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/repository"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫が足りるときだけ減らす
// 台帳の移動は販売停止（論理削除）した医薬品にも届く必要があるので Unscoped
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, medicineID int64, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Unscoped().
		Model(&model.Medicine{}).
		Where("id = ? AND stock >= ?", medicineID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return false, errors.Wrap(res.Error, "decrease stock")
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 在庫戻し（キャンセル・返金）
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, medicineID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Unscoped().
		Model(&model.Medicine{}).
		Where("id = ?", medicineID).
		Update("stock", gorm.Expr("stock + ?", qty))

	if res.Error != nil {
		return errors.Wrap(res.Error, "increase stock")
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return errors.Wrap(err, "create inventory adjustment")
	}
	return nil
}

func (r *InventoryGormRepository) ListAdjustmentsByOrderID(ctx context.Context, orderID int64) ([]model.InventoryAdjustment, error) {
	var adjs []model.InventoryAdjustment
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&adjs).Error; err != nil {
		return nil, errors.Wrap(err, "list inventory adjustments")
	}
	return adjs, nil
}
