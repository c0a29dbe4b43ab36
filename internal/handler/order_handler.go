package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/usecase"
)

type OrderService interface {
	PlaceOrder(ctx context.Context, actor model.Principal, in usecase.PlaceOrderInput) (usecase.OrderOutput, error)
	ListMyOrders(ctx context.Context, actor model.Principal, page, limit int) ([]usecase.OrderOutput, int64, error)
	GetOrder(ctx context.Context, actor model.Principal, orderID int64) (usecase.OrderOutput, error)
}

type TransitionService interface {
	Transition(ctx context.Context, actor model.Principal, orderID int64, in usecase.TransitionInput) (usecase.TransitionResult, error)
}

type OrderHandler struct {
	orders    OrderService
	lifecycle TransitionService
}

func NewOrderHandler(orders OrderService, lifecycle TransitionService) *OrderHandler {
	return &OrderHandler{orders: orders, lifecycle: lifecycle}
}

type OrderItemRequest struct {
	MedicineID int64 `json:"medicineId" validate:"required,gt=0"`
	Quantity   int64 `json:"quantity" validate:"required,gt=0"`
}

// 処方箋の必須チェックは注文側で行う（不足は422）
type PrescriptionRequest struct {
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
	DoctorName  string `json:"doctorName" validate:"max=255"`
	DoctorPhone string `json:"doctorPhone" validate:"max=30"`
}

type OrderCreateRequest struct {
	//空ならアクティブなカートから作る
	Items           []OrderItemRequest    `json:"items" validate:"omitempty,dive"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod" validate:"max=50"`
	Prescription    *PrescriptionRequest  `json:"prescription"`
}

type OrderStatusUpdateRequest struct {
	//ステータスの数値コード
	Status int64  `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=2000"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, auth, customerOnly echo.MiddlewareFunc) {
	g := e.Group("/orders")
	g.Use(auth)

	//作成は顧客のみ。遷移の権限はルール表で判定する
	g.POST("", h.create, customerOnly)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.PATCH("/:id/status", h.updateStatus)
}

func (h *OrderHandler) create(c echo.Context) error {
	actor, ok := principalFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req OrderCreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	in := usecase.PlaceOrderInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
		IdempotencyKey: c.Request().Header.Get("X-Idempotency-Key"),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, usecase.PlaceOrderItemInput{MedicineID: it.MedicineID, Quantity: it.Quantity})
	}
	if req.Prescription != nil {
		in.Prescription = &usecase.PrescriptionInput{
			ImageURL:    req.Prescription.ImageURL,
			DoctorName:  req.Prescription.DoctorName,
			DoctorPhone: req.Prescription.DoctorPhone,
		}
	}

	out, err := h.orders.PlaceOrder(c.Request().Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	actor, ok := principalFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	page, limit, err := pageParams(c)
	if err != nil {
		return writeError(c, err)
	}

	out, total, err := h.orders.ListMyOrders(c.Request().Context(), actor, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	page, limit = pageEcho(page, limit)
	return c.JSON(http.StatusOK, listResponse[usecase.OrderOutput]{Items: out, Total: total, Page: page, Limit: limit})
}

func (h *OrderHandler) detail(c echo.Context) error {
	actor, ok := principalFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	out, err := h.orders.GetOrder(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	actor, ok := principalFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req OrderStatusUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	status, err := model.ParseStatusCode(req.Status)
	if err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.lifecycle.Transition(c.Request().Context(), actor, id, usecase.TransitionInput{
		Status: status,
		Note:   req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return writeTransition(c, res)
}

// 遷移後の注文をそのまま返す。監査ログが残せなかったときは Warning ヘッダだけで知らせる。
func writeTransition(c echo.Context, res usecase.TransitionResult) error {
	if res.Degraded {
		c.Response().Header().Set("Warning", `199 - "audit degraded"`)
	}
	return c.JSON(http.StatusOK, res.Order)
}
