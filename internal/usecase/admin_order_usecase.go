package usecase

import (
	"context"
	"time"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/lifecycle"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	repo "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/repository"
)

// 管理者向けの読み取り（ステータス変更は OrderLifecycleUsecase）
type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
}

func NewAdminOrderUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, auditRepo: auditRepo}
}

// 注文一覧
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, int64, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, 0, lifecycle.Validation("invalid status")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, 0, lifecycle.Validation("from must not be after to")
	}
	return listOrders(ctx, u.tx, f)
}

type AuditLogQuery struct {
	OrderID *int64
	ActorID *int64
	//遷移先ステータスで絞る
	ToStatus *model.OrderStatus
	From     *time.Time
	To       *time.Time
	Page     int
	Limit    int
}

// 監査ログ一覧（注文単位で絞れる）
func (u *AdminOrderUsecase) ListAuditLogs(ctx context.Context, q AuditLogQuery) ([]model.AuditLog, error) {
	page, limit, err := normalizePage(q.Page, q.Limit)
	if err != nil {
		return nil, err
	}

	f := repo.AuditLogFilter{
		ActorUserID: q.ActorID,
		CreatedFrom: q.From,
		CreatedTo:   q.To,
		Limit:       limit,
		Offset:      (page - 1) * limit,
	}
	if q.ToStatus != nil {
		if !q.ToStatus.Valid() {
			return nil, lifecycle.Validation("invalid status")
		}
		code := q.ToStatus.Code()
		f.ToStatus = &code
	}
	if q.OrderID != nil {
		rt := model.AuditResourceOrder
		f.ResourceType = &rt
		f.ResourceID = q.OrderID
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return nil, lifecycle.PersistenceFailure(err, "list audit logs")
	}
	return logs, nil
}

// page/limitの最低限チェック（0 は既定値）
func normalizePage(page, limit int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = 20
	}
	if page < 1 {
		return 0, 0, lifecycle.Validation("invalid page")
	}
	if limit < 1 || limit > 100 {
		return 0, 0, lifecycle.Validation("invalid limit")
	}
	return page, limit, nil
}

func listOrders(ctx context.Context, tx repo.TransactionManager, f repo.AdminOrderListFilter) ([]OrderOutput, int64, error) {
	page, limit, err := normalizePage(f.Page, f.Limit)
	if err != nil {
		return nil, 0, err
	}
	f.Page, f.Limit = page, limit

	var (
		outs  []OrderOutput
		total int64
	)
	err = tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, n, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return lifecycle.PersistenceFailure(err, "list orders")
		}
		total = n

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return lifecycle.PersistenceFailure(err, "load items of order %d", o.ID)
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return outs, total, nil
}
