package repository

import (
	"context"

	"github.com/go-faster/errors"
	"gorm.io/gorm"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	repo "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/repository"
)

type MedicineGormRepository struct {
	db *gorm.DB
}

func NewMedicineGormRepository(db *gorm.DB) *MedicineGormRepository {
	return &MedicineGormRepository{db: db}
}

func (r *MedicineGormRepository) FindByID(ctx context.Context, id int64) (model.Medicine, error) {
	var m model.Medicine
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Medicine{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Medicine{}, errors.Wrap(err, "find medicine")
	}
	return m, nil
}

// 見つからないIDは結果に含めない（呼び出し側で判定）
func (r *MedicineGormRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Medicine, error) {
	if len(ids) == 0 {
		return []model.Medicine{}, nil
	}
	var ms []model.Medicine
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, errors.Wrap(err, "find medicines")
	}
	return ms, nil
}
