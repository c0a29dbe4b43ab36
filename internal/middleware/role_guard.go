package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
)

// contextに入っているroleが許可リストにあるかを確認します。
// 遷移ごとの権限は遷移ルール側で判定する（ここは入口の絞り込みだけ）。
func RequireRoles(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxUserRoleKey).(model.Role)
			if !ok || role == "" {
				return unauthorized(c)
			}
			if !allowed[role] {
				return c.JSON(http.StatusForbidden, errorResponse{Kind: "Forbidden", Message: "role not allowed"})
			}
			return next(c)
		}
	}
}
