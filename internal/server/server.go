package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/middleware"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/validator"
)

type Server struct {
	e  *echo.Echo
	lg *zap.Logger
}

// echoの生成とルート登録
func New(lg *zap.Logger, h Handlers, jwtSecret string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()
	e.Use(middleware.RequestLogger(lg))

	RegisterRoutes(e, h, jwtSecret)
	return &Server{e: e, lg: lg}
}

// テストから直接リクエストを流すため
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start は ctx が終わるまでサーバを動かす
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.lg.Info("http server listening", zap.String("addr", addr))
		if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
