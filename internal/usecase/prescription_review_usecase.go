package usecase

import (
	"context"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/lifecycle"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	repo "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/repository"
)

// 処方箋レビュー（薬剤師の承認/却下）。遷移自体は OrderLifecycleUsecase に任せる。
type PrescriptionReviewUsecase struct {
	lifecycle *OrderLifecycleUsecase
	tx        repo.TransactionManager
}

func NewPrescriptionReviewUsecase(lc *OrderLifecycleUsecase, tx repo.TransactionManager) *PrescriptionReviewUsecase {
	return &PrescriptionReviewUsecase{lifecycle: lc, tx: tx}
}

func (u *PrescriptionReviewUsecase) Approve(ctx context.Context, reviewer model.Principal, orderID int64, notes string) (TransitionResult, error) {
	return u.review(ctx, reviewer, orderID, model.OrderStatusPrescriptionApproved, notes)
}

// 却下は理由が必須
func (u *PrescriptionReviewUsecase) Reject(ctx context.Context, reviewer model.Principal, orderID int64, notes string) (TransitionResult, error) {
	return u.review(ctx, reviewer, orderID, model.OrderStatusPrescriptionRejected, notes)
}

func (u *PrescriptionReviewUsecase) review(ctx context.Context, reviewer model.Principal, orderID int64, to model.OrderStatus, notes string) (TransitionResult, error) {
	return u.lifecycle.Transition(ctx, reviewer, orderID, TransitionInput{
		Status: to,
		Note:   notes,
		guard:  requirePrescription,
	})
}

func requirePrescription(o model.Order) error {
	if !o.HasPrescription() {
		return lifecycle.MissingPrescriptionData("order %s carries no prescription", o.OrderNumber)
	}
	return nil
}

// レビュー待ちの一覧
func (u *PrescriptionReviewUsecase) ListPending(ctx context.Context, page, limit int) ([]OrderOutput, int64, error) {
	pending := model.OrderStatusPrescriptionPending
	return listOrders(ctx, u.tx, repo.AdminOrderListFilter{Page: page, Limit: limit, Status: &pending})
}
