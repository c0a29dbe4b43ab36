package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, secret string) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, claims)
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims(sub any, role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
}

// AuthJWTを通した後に context の中身を返すだけのハンドラ
func run(t *testing.T, mw []echo.MiddlewareFunc, authz string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	require.NoError(t, h(c))
	return rec, c
}

func TestAuthJWT_SetsPrincipal(t *testing.T) {
	tests := []struct {
		name string
		sub  any
		role string
		want model.Role
	}{
		{"string sub", "42", "customer", model.RoleCustomer},
		{"numeric sub", float64(7), "pharmacist", model.RolePharmacist},
		{"upper role", "1", "ADMIN", model.RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := signToken(t, validClaims(tt.sub, tt.role), jwt.SigningMethodHS256, testSecret)
			rec, c := run(t, []echo.MiddlewareFunc{AuthJWT(testSecret)}, "Bearer "+token)

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Equal(t, tt.want, c.Get(CtxUserRoleKey))
			_, ok := c.Get(CtxUserIDKey).(int64)
			assert.True(t, ok)
		})
	}
}

func TestAuthJWT_Rejects(t *testing.T) {
	expired := jwt.MapClaims{"sub": "1", "role": "admin", "exp": time.Now().Add(-time.Minute).Unix()}

	tests := []struct {
		name  string
		authz string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer  "},
		{"garbage", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + signToken(t, validClaims("1", "admin"), jwt.SigningMethodHS256, "other")},
		{"wrong alg", "Bearer " + signToken(t, validClaims("1", "admin"), jwt.SigningMethodHS512, testSecret)},
		{"expired", "Bearer " + signToken(t, expired, jwt.SigningMethodHS256, testSecret)},
		{"no exp", "Bearer " + signToken(t, jwt.MapClaims{"sub": "1", "role": "admin"}, jwt.SigningMethodHS256, testSecret)},
		{"unknown role", "Bearer " + signToken(t, validClaims("1", "root"), jwt.SigningMethodHS256, testSecret)},
		{"bad sub", "Bearer " + signToken(t, validClaims("abc", "admin"), jwt.SigningMethodHS256, testSecret)},
		{"zero sub", "Bearer " + signToken(t, validClaims("0", "admin"), jwt.SigningMethodHS256, testSecret)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, c := run(t, []echo.MiddlewareFunc{AuthJWT(testSecret)}, tt.authz)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"kind":"Unauthenticated","message":"unauthorized"}`, rec.Body.String())
			assert.Nil(t, c.Get(CtxUserIDKey))
		})
	}
}

func TestRequireRoles(t *testing.T) {
	staff := RequireRoles(model.RolePharmacist, model.RoleAdmin)

	tests := []struct {
		role string
		want int
	}{
		{"pharmacist", http.StatusNoContent},
		{"admin", http.StatusNoContent},
		{"customer", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			token := signToken(t, validClaims("5", tt.role), jwt.SigningMethodHS256, testSecret)
			rec, _ := run(t, []echo.MiddlewareFunc{AuthJWT(testSecret), staff}, "Bearer "+token)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	rec, _ := run(t, []echo.MiddlewareFunc{staff}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "req-1", rec.Header().Get(HeaderRequestID))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "/healthz", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])

	//ヘッダが無ければ採番する
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}
