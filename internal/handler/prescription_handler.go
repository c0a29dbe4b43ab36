package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/usecase"
)

type PrescriptionReviewService interface {
	Approve(ctx context.Context, reviewer model.Principal, orderID int64, notes string) (usecase.TransitionResult, error)
	Reject(ctx context.Context, reviewer model.Principal, orderID int64, notes string) (usecase.TransitionResult, error)
	ListPending(ctx context.Context, page, limit int) ([]usecase.OrderOutput, int64, error)
}

// /pharmacist 配下の処方箋レビューAPI
type PrescriptionHandler struct {
	uc PrescriptionReviewService
}

func NewPrescriptionHandler(uc PrescriptionReviewService) *PrescriptionHandler {
	return &PrescriptionHandler{uc: uc}
}

type PrescriptionReviewRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

func (h *PrescriptionHandler) RegisterRoutes(e *echo.Echo, auth, staff echo.MiddlewareFunc) {
	g := e.Group("/pharmacist/prescriptions")
	g.Use(auth)
	g.Use(staff)

	g.GET("", h.listPending)
	g.POST("/:id/approve", h.approve)
	g.POST("/:id/reject", h.reject)
}

func (h *PrescriptionHandler) listPending(c echo.Context) error {
	page, limit, err := pageParams(c)
	if err != nil {
		return writeError(c, err)
	}

	out, total, err := h.uc.ListPending(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	page, limit = pageEcho(page, limit)
	return c.JSON(http.StatusOK, listResponse[usecase.OrderOutput]{Items: out, Total: total, Page: page, Limit: limit})
}

func (h *PrescriptionHandler) approve(c echo.Context) error {
	return h.review(c, h.uc.Approve)
}

func (h *PrescriptionHandler) reject(c echo.Context) error {
	return h.review(c, h.uc.Reject)
}

type reviewFunc func(ctx context.Context, reviewer model.Principal, orderID int64, notes string) (usecase.TransitionResult, error)

func (h *PrescriptionHandler) review(c echo.Context, fn reviewFunc) error {
	reviewer, ok := principalFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	//承認はbodyなしでもよい
	var req PrescriptionReviewRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return writeError(c, err)
		}
	}

	res, err := fn(c.Request().Context(), reviewer, id, req.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return writeTransition(c, res)
}
