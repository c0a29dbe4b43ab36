package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
)

type StatusResponse struct {
	Code     uint16               `json:"code"`
	Label    string               `json:"label"`
	Category model.StatusCategory `json:"category"`
	Badge    string               `json:"badge"`
	Terminal bool                 `json:"terminal"`
}

// ステータス一覧とヘルスチェック（認証なし）
type StatusHandler struct{}

func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/order-statuses", h.statuses)
	e.GET("/healthz", h.healthz)
}

func (h *StatusHandler) statuses(c echo.Context) error {
	all := model.AllOrderStatuses()
	out := make([]StatusResponse, 0, len(all))
	for _, s := range all {
		out = append(out, StatusResponse{
			Code:     s.Code(),
			Label:    s.Label(),
			Category: s.Category(),
			Badge:    s.Badge(),
			Terminal: s.IsTerminal(),
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StatusHandler) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
