package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/middleware"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/repository"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/usecase"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/validator"
)

// テスト用の認証: X-Test-User / X-Test-Role をそのまま context に入れる
func fakeAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if v := c.Request().Header.Get("X-Test-User"); v != "" {
			id, _ := strconv.ParseInt(v, 10, 64)
			c.Set(middleware.CtxUserIDKey, id)
			c.Set(middleware.CtxUserRoleKey, model.Role(c.Request().Header.Get("X-Test-Role")))
		}
		return next(c)
	}
}

type OrderServiceMock struct{ mock.Mock }

func (m *OrderServiceMock) PlaceOrder(ctx context.Context, actor model.Principal, in usecase.PlaceOrderInput) (usecase.OrderOutput, error) {
	args := m.Called(ctx, actor, in)
	return args.Get(0).(usecase.OrderOutput), args.Error(1)
}

func (m *OrderServiceMock) ListMyOrders(ctx context.Context, actor model.Principal, page, limit int) ([]usecase.OrderOutput, int64, error) {
	args := m.Called(ctx, actor, page, limit)
	return args.Get(0).([]usecase.OrderOutput), args.Get(1).(int64), args.Error(2)
}

func (m *OrderServiceMock) GetOrder(ctx context.Context, actor model.Principal, orderID int64) (usecase.OrderOutput, error) {
	args := m.Called(ctx, actor, orderID)
	return args.Get(0).(usecase.OrderOutput), args.Error(1)
}

type TransitionServiceMock struct{ mock.Mock }

func (m *TransitionServiceMock) Transition(ctx context.Context, actor model.Principal, orderID int64, in usecase.TransitionInput) (usecase.TransitionResult, error) {
	args := m.Called(ctx, actor, orderID, in)
	return args.Get(0).(usecase.TransitionResult), args.Error(1)
}

type ReviewServiceMock struct{ mock.Mock }

func (m *ReviewServiceMock) Approve(ctx context.Context, reviewer model.Principal, orderID int64, notes string) (usecase.TransitionResult, error) {
	args := m.Called(ctx, reviewer, orderID, notes)
	return args.Get(0).(usecase.TransitionResult), args.Error(1)
}

func (m *ReviewServiceMock) Reject(ctx context.Context, reviewer model.Principal, orderID int64, notes string) (usecase.TransitionResult, error) {
	args := m.Called(ctx, reviewer, orderID, notes)
	return args.Get(0).(usecase.TransitionResult), args.Error(1)
}

func (m *ReviewServiceMock) ListPending(ctx context.Context, page, limit int) ([]usecase.OrderOutput, int64, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]usecase.OrderOutput), args.Get(1).(int64), args.Error(2)
}

type AdminServiceMock struct{ mock.Mock }

func (m *AdminServiceMock) List(ctx context.Context, f repository.AdminOrderListFilter) ([]usecase.OrderOutput, int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]usecase.OrderOutput), args.Get(1).(int64), args.Error(2)
}

func (m *AdminServiceMock) ListAuditLogs(ctx context.Context, q usecase.AuditLogQuery) ([]model.AuditLog, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]model.AuditLog), args.Error(1)
}

type testServer struct {
	e         *echo.Echo
	orders    *OrderServiceMock
	lifecycle *TransitionServiceMock
	review    *ReviewServiceMock
	admin     *AdminServiceMock
}

func newTestServer() *testServer {
	ts := &testServer{
		e:         echo.New(),
		orders:    &OrderServiceMock{},
		lifecycle: &TransitionServiceMock{},
		review:    &ReviewServiceMock{},
		admin:     &AdminServiceMock{},
	}
	ts.e.Validator = validator.New()

	NewStatusHandler().RegisterRoutes(ts.e)
	NewOrderHandler(ts.orders, ts.lifecycle).RegisterRoutes(ts.e, fakeAuth, middleware.RequireRoles(model.RoleCustomer))
	NewPrescriptionHandler(ts.review).RegisterRoutes(ts.e, fakeAuth, middleware.RequireRoles(model.RolePharmacist, model.RoleAdmin))
	NewAdminOrderHandler(ts.admin).RegisterRoutes(ts.e, fakeAuth, middleware.RequireRoles(model.RoleAdmin))
	return ts
}

type asUser struct {
	id   int64
	role model.Role
}

var (
	customer   = asUser{1, model.RoleCustomer}
	pharmacist = asUser{50, model.RolePharmacist}
	admin      = asUser{99, model.RoleAdmin}
	anonymous  = asUser{}
)

func (u asUser) principal() model.Principal {
	return model.Principal{UserID: u.id, Role: u.role}
}

func (ts *testServer) do(method, path, body string, u asUser, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if u.id != 0 {
		req.Header.Set("X-Test-User", strconv.FormatInt(u.id, 10))
		req.Header.Set("X-Test-Role", string(u.role))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}
