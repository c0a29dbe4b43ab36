package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/repository"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/usecase"
)

type AdminOrderService interface {
	List(ctx context.Context, f repository.AdminOrderListFilter) ([]usecase.OrderOutput, int64, error)
	ListAuditLogs(ctx context.Context, q usecase.AuditLogQuery) ([]model.AuditLog, error)
}

type AdminOrderHandler struct {
	uc AdminOrderService
}

func NewAdminOrderHandler(uc AdminOrderService) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, auth, adminOnly echo.MiddlewareFunc) {
	admin := e.Group("/admin")
	admin.Use(auth)
	admin.Use(adminOnly)

	admin.GET("/orders", h.list)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, limit, err := pageParams(c)
	if err != nil {
		return writeError(c, err)
	}
	f := repository.AdminOrderListFilter{Page: page, Limit: limit}

	//status は数値コード1つ
	if v := c.QueryParam("status"); v != "" {
		s, err := parseStatusParam(v)
		if err != nil {
			return badRequest(c, err.Error())
		}
		f.Status = &s
	}

	//category はカンマ区切り可（レポート用マスク）
	if vs := c.QueryParams()["category"]; len(vs) > 0 {
		cats, ok := parseCategories(vs)
		if !ok {
			return badRequest(c, "invalid category")
		}
		f.StatusMask = model.CategoryMask(cats...)
	}

	if f.UserID, err = optionalID(c, "user_id"); err != nil {
		return badRequest(c, "invalid user_id")
	}
	if f.From, err = optionalTime(c, "from"); err != nil {
		return badRequest(c, "invalid from")
	}
	if f.To, err = optionalTime(c, "to"); err != nil {
		return badRequest(c, "invalid to")
	}

	out, total, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	page, limit = pageEcho(page, limit)
	return c.JSON(http.StatusOK, listResponse[usecase.OrderOutput]{Items: out, Total: total, Page: page, Limit: limit})
}

func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	page, limit, err := pageParams(c)
	if err != nil {
		return writeError(c, err)
	}
	q := usecase.AuditLogQuery{Page: page, Limit: limit}

	if q.OrderID, err = optionalID(c, "order_id"); err != nil {
		return badRequest(c, "invalid order_id")
	}
	if q.ActorID, err = optionalID(c, "actor_id"); err != nil {
		return badRequest(c, "invalid actor_id")
	}
	if v := c.QueryParam("to_status"); v != "" {
		s, err := parseStatusParam(v)
		if err != nil {
			return badRequest(c, err.Error())
		}
		q.ToStatus = &s
	}
	if q.From, err = optionalTime(c, "from"); err != nil {
		return badRequest(c, "invalid from")
	}
	if q.To, err = optionalTime(c, "to"); err != nil {
		return badRequest(c, "invalid to")
	}

	logs, err := h.uc.ListAuditLogs(c.Request().Context(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

func parseStatusParam(v string) (model.OrderStatus, error) {
	code, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return model.OrderStatusUnknown, errors.New("invalid status")
	}
	return model.ParseStatusCode(code)
}

func parseCategories(vs []string) ([]model.StatusCategory, bool) {
	known := map[model.StatusCategory]bool{
		model.CategoryPreFulfillment:   true,
		model.CategoryFulfillment:      true,
		model.CategoryTerminalSuccess:  true,
		model.CategoryTerminalFailure:  true,
		model.CategoryPrescriptionGate: true,
	}
	out := make([]model.StatusCategory, 0, len(vs))
	for _, v := range vs {
		for _, part := range strings.Split(v, ",") {
			c := model.StatusCategory(strings.TrimSpace(part))
			if !known[c] {
				return nil, false
			}
			out = append(out, c)
		}
	}
	return out, true
}

func optionalID(c echo.Context, name string) (*int64, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// RFC3339
func optionalTime(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	tm, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}
