package repository

import (
	"context"

	"github.com/go-faster/errors"
	"gorm.io/gorm"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	repo "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/repository"
)

const maxAuditPage = 100

type AuditLogGormRepository struct {
	db *gorm.DB
}

// トランザクションの外で使う（監査ログの失敗で遷移を戻さない）
func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

var _ repo.AuditLogRepository = (*AuditLogGormRepository)(nil)

func (r *AuditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	if log.ID != 0 {
		return errors.New("audit log is append-only")
	}
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		return errors.Wrapf(err, "append audit log %s/%d", log.ResourceType, log.ResourceID)
	}
	return nil
}

func (r *AuditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := r.db.WithContext(ctx).
		Scopes(auditConditions(f), auditPage(f.Limit, f.Offset)).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, errors.Wrap(err, "list audit logs")
	}
	return logs, nil
}

func auditConditions(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if f.ActorUserID != nil {
			q = q.Where("actor_user_id = ?", *f.ActorUserID)
		}
		if f.Action != nil {
			q = q.Where("action = ?", *f.Action)
		}
		if f.ResourceType != nil {
			q = q.Where("resource_type = ?", *f.ResourceType)
			if f.ResourceID != nil {
				q = q.Where("resource_id = ?", *f.ResourceID)
			}
		}
		if f.ToStatus != nil {
			q = q.Where("to_status = ?", *f.ToStatus)
		}
		if f.CreatedFrom != nil {
			q = q.Where("created_at >= ?", *f.CreatedFrom)
		}
		if f.CreatedTo != nil {
			q = q.Where("created_at <= ?", *f.CreatedTo)
		}
		return q
	}
}

// usecase 側で正規化済みだが、範囲外はここでも丸める
func auditPage(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if limit <= 0 || limit > maxAuditPage {
			limit = 20
		}
		if offset < 0 {
			offset = 0
		}
		return q.Limit(limit).Offset(offset)
	}
}
