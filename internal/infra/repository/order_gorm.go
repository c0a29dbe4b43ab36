package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"gorm.io/gorm"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	infradb "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/infra/db"
	repo "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/repository"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, errors.Wrap(err, "find order")
	}
	return o, nil
}

func (r *OrderGormRepository) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return []model.Order{}, 0, errors.Wrap(err, "count orders")
	}

	var items []model.Order
	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return []model.Order{}, 0, errors.Wrap(err, "list orders")
	}

	return items, total, nil
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		//idempotency_key / order_number の一意制約
		if infradb.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %w", repo.ErrConflict, err)
		}
		return 0, errors.Wrap(err, "create order")
	}
	return order.ID, nil
}

// UPDATE orders SET ... WHERE id = ? AND status = ?
// 0行なら別のリクエストが先にステータスを変えた。
func (r *OrderGormRepository) UpdateStatusIf(ctx context.Context, orderID int64, expected model.OrderStatus, c repo.OrderStatusChange) (bool, error) {
	cols := map[string]any{
		"status":     c.Status,
		"updated_at": c.UpdatedAt,
	}
	if c.Note != nil {
		cols["status_note"] = *c.Note
	}
	if c.StockDecrementedAt != nil {
		cols["stock_decremented_at"] = *c.StockDecrementedAt
	}
	if c.StockRestoredAt != nil {
		cols["stock_restored_at"] = *c.StockRestoredAt
	}
	if c.Review != nil {
		cols["rx_reviewer_id"] = c.Review.ReviewerID
		cols["rx_review_notes"] = c.Review.Notes
		cols["rx_reviewed_at"] = c.Review.ReviewedAt
	}

	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, expected).
		Updates(cols)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "conditional status update")
	}
	return res.RowsAffected == 1, nil
}

func (r *OrderGormRepository) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		First(&o).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, errors.Wrap(err, "find order by idempotency key")
	}
	return o, true, nil
}

func (r *OrderGormRepository) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	//分類マスク（レポート用）
	if f.StatusMask != 0 {
		q = q.Where("status & ? <> 0", int64(f.StatusMask))
	}

	//user_id 絞り込み
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	//期間絞り込み
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, errors.Wrap(err, "count orders")
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, errors.Wrap(err, "list orders")
	}

	return items, total, nil
}
