package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/handler"
)

func newTestServer() *Server {
	return New(zap.NewNop(), Handlers{
		Order:        handler.NewOrderHandler(nil, nil),
		Prescription: handler.NewPrescriptionHandler(nil),
		AdminOrder:   handler.NewAdminOrderHandler(nil),
		Status:       handler.NewStatusHandler(),
	}, "secret")
}

func TestRoutes_PublicAndProtected(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/order-statuses", http.StatusOK},
		{http.MethodGet, "/orders", http.StatusUnauthorized},
		{http.MethodPost, "/orders", http.StatusUnauthorized},
		{http.MethodPatch, "/orders/1/status", http.StatusUnauthorized},
		{http.MethodGet, "/pharmacist/prescriptions", http.StatusUnauthorized},
		{http.MethodPost, "/pharmacist/prescriptions/1/approve", http.StatusUnauthorized},
		{http.MethodGet, "/admin/orders", http.StatusUnauthorized},
		{http.MethodGet, "/admin/audit-logs", http.StatusUnauthorized},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}
