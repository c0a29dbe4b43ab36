package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/lifecycle"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/middleware"
)

type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// エラー種別→HTTPステータス
var statusByKind = map[lifecycle.Kind]int{
	lifecycle.KindNotFound:                     http.StatusNotFound,
	lifecycle.KindInvalidTransition:            http.StatusConflict,
	lifecycle.KindTerminalStateViolation:       http.StatusConflict,
	lifecycle.KindUnauthorizedTransition:       http.StatusForbidden,
	lifecycle.KindMissingPrescriptionData:      http.StatusUnprocessableEntity,
	lifecycle.KindValidationFailed:             http.StatusBadRequest,
	lifecycle.KindFulfillmentSideEffectFailure: http.StatusServiceUnavailable,
	lifecycle.KindConcurrentModification:       http.StatusConflict,
	lifecycle.KindPersistenceFailure:           http.StatusInternalServerError,
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	var le *lifecycle.Error
	if errors.As(err, &le) {
		status, ok := statusByKind[le.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		msg := le.Message
		//保存失敗の中身は返さない
		if le.Kind == lifecycle.KindPersistenceFailure || msg == "" {
			msg = http.StatusText(status)
		}
		return c.JSON(status, ErrorResponse{Kind: string(le.Kind), Message: msg})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Kind: "Internal", Message: "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Kind: string(lifecycle.KindValidationFailed), Message: msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Kind: "Unauthenticated", Message: "unauthorized"})
}

// JWTミドルウェアが入れた user_id / role を取り出す
func principalFromContext(c echo.Context) (model.Principal, bool) {
	userID, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || userID <= 0 {
		return model.Principal{}, false
	}
	role, ok := c.Get(middleware.CtxUserRoleKey).(model.Role)
	if !ok || !role.Valid() {
		return model.Principal{}, false
	}
	return model.Principal{UserID: userID, Role: role}, true
}

// :id を取り出す
func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// bind→validate をまとめて行う
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return lifecycle.Validation("invalid body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

// page/limit を読む（未指定は0 = 既定値）
func pageParams(c echo.Context) (int, int, error) {
	page, err := intQuery(c, "page")
	if err != nil {
		return 0, 0, lifecycle.Validation("invalid page")
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return 0, 0, lifecycle.Validation("invalid limit")
	}
	return page, limit, nil
}

func intQuery(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// 一覧レスポンス
type listResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// 画面に返すページ番号（0 は既定値に置き換える）
func pageEcho(page, limit int) (int, int) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = 20
	}
	return page, limit
}
