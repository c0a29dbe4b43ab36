package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/config"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/handler"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/infra/db"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/infra/notify"
	infraRepo "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/infra/repository"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/logger"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/server"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/telemetry"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/usecase"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	lg, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//トレース
	tp, shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing, lg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			lg.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	//DB接続
	gormDB, err := db.Connect(cfg.DatabaseURL, lg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB, infraRepo.WithLockTimeout(cfg.Lifecycle.LockTimeout))
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	rules, err := cfg.Pricing.Rules()
	if err != nil {
		return err
	}
	pricing := usecase.Pricing{
		TaxRate:          rules.TaxRate,
		ShippingFee:      rules.ShippingFee,
		FreeShippingOver: rules.FreeShippingOver,
	}

	//通知（SNS未設定なら何もしない）
	var notifier usecase.Notifier = notify.Noop{}
	if cfg.Notify.SNSTopicARN != "" {
		sn, err := notify.NewSNSNotifierFromEnv(ctx, cfg.Notify.SNSTopicARN, lg)
		if err != nil {
			return err
		}
		notifier = sn
	}

	//Usecase生成
	orderUC := usecase.NewOrderUsecase(txm, auditRepo, pricing, idGen, clock, lg, usecase.WithOrderTracerProvider(tp))
	lifecycleUC := usecase.NewOrderLifecycleUsecase(txm, auditRepo, usecase.NewStockLedger(lg), clock, lg, usecase.LifecycleOptions{
		ConflictRetries: cfg.Lifecycle.ConflictRetries,
		Notifier:        notifier,
		TracerProvider:  tp,
	})
	reviewUC := usecase.NewPrescriptionReviewUsecase(lifecycleUC, txm)
	adminUC := usecase.NewAdminOrderUsecase(txm, auditRepo)

	//Handler生成
	srv := server.New(lg, server.Handlers{
		Order:        handler.NewOrderHandler(orderUC, lifecycleUC),
		Prescription: handler.NewPrescriptionHandler(reviewUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminUC),
		Status:       handler.NewStatusHandler(),
	}, cfg.JWTSecret)

	//Server起動
	return srv.Start(ctx, cfg.Addr)
}
