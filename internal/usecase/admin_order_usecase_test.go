package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/lifecycle"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	repo "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/repository"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/usecase"
)

func TestAdminOrderUsecase_List_InvalidPaging(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	_, _, err := f.admin.List(context.Background(), repo.AdminOrderListFilter{Page: -1, Limit: 20})
	assert.ErrorIs(t, err, lifecycle.ErrValidationFailed)

	_, _, err = f.admin.List(context.Background(), repo.AdminOrderListFilter{Page: 1, Limit: 101})
	assert.ErrorIs(t, err, lifecycle.ErrValidationFailed)

	from := testNow
	to := testNow.Add(-time.Hour)
	_, _, err = f.admin.List(context.Background(), repo.AdminOrderListFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, lifecycle.ErrValidationFailed)
}

func TestAdminOrderUsecase_List_CategoryMask(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	first := placeTwoItemOrder(t, f)
	second, err := f.orders.PlaceOrder(context.Background(), customer, twoItemInput())
	require.NoError(t, err)

	_, err = move(f, admin, first, model.OrderStatusPaid, "")
	require.NoError(t, err)
	_, err = move(f, admin, first, model.OrderStatusProcessing, "")
	require.NoError(t, err)

	outs, total, err := f.admin.List(context.Background(), repo.AdminOrderListFilter{
		StatusMask: model.CategoryMask(model.CategoryFulfillment),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, outs, 1)
	assert.Equal(t, first, outs[0].ID)

	pending := model.OrderStatusPendingPayment
	outs, _, err = f.admin.List(context.Background(), repo.AdminOrderListFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, second.ID, outs[0].ID)
}

func TestAdminOrderUsecase_ListAuditLogs_ByOrder(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	orderID := int64(77)
	want := []model.AuditLog{{ID: 1, ResourceID: orderID}}

	f.audit.On("List", mock.Anything, mock.MatchedBy(func(fl repo.AuditLogFilter) bool {
		return fl.ResourceID != nil && *fl.ResourceID == orderID &&
			fl.ResourceType != nil && *fl.ResourceType == model.AuditResourceOrder &&
			fl.Limit == 20 && fl.Offset == 20
	})).Return(want, nil).Once()

	got, err := f.admin.ListAuditLogs(context.Background(), usecase.AuditLogQuery{OrderID: &orderID, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	f.audit.AssertExpectations(t)
}

func TestAdminOrderUsecase_ListAuditLogs_DBError(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.audit.On("List", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

	_, err := f.admin.ListAuditLogs(context.Background(), usecase.AuditLogQuery{})
	assert.ErrorIs(t, err, lifecycle.ErrPersistenceFailure)
}

func TestAdminOrderUsecase_ListAuditLogs_ToStatus(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	refunded := model.OrderStatusRefunded
	f.audit.On("List", mock.Anything, mock.MatchedBy(func(fl repo.AuditLogFilter) bool {
		return fl.ToStatus != nil && *fl.ToStatus == 64 && fl.ResourceType == nil
	})).Return([]model.AuditLog{}, nil).Once()

	_, err := f.admin.ListAuditLogs(context.Background(), usecase.AuditLogQuery{ToStatus: &refunded})
	require.NoError(t, err)

	unknown := model.OrderStatusUnknown
	_, err = f.admin.ListAuditLogs(context.Background(), usecase.AuditLogQuery{ToStatus: &unknown})
	assert.ErrorIs(t, err, lifecycle.ErrValidationFailed)
	f.audit.AssertExpectations(t)
}
