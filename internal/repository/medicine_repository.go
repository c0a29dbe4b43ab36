package repository

import (
	"context"
	"errors"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 医薬品カタログの読み取りだけを約束。
type MedicineRepository interface {
	FindByID(ctx context.Context, id int64) (model.Medicine, error)
	FindByIDs(ctx context.Context, ids []int64) ([]model.Medicine, error)
}
