package server

import (
	"github.com/labstack/echo/v4"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/handler"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/middleware"
)

type Handlers struct {
	Order        *handler.OrderHandler
	Prescription *handler.PrescriptionHandler
	AdminOrder   *handler.AdminOrderHandler
	Status       *handler.StatusHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string) {
	auth := middleware.AuthJWT(jwtSecret)

	h.Status.RegisterRoutes(e)
	h.Order.RegisterRoutes(e, auth, middleware.RequireRoles(model.RoleCustomer))
	h.Prescription.RegisterRoutes(e, auth, middleware.RequireRoles(model.RolePharmacist, model.RoleAdmin))
	h.AdminOrder.RegisterRoutes(e, auth, middleware.RequireRoles(model.RoleAdmin))
}
