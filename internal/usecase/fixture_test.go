package usecase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/usecase"
)

type fixtureOpts struct {
	auditErr error
	notifier usecase.Notifier
	retries  int
}

type fixture struct {
	store     *memStore
	audit     *AuditRepoMock
	orders    *usecase.OrderUsecase
	lifecycle *usecase.OrderLifecycleUsecase
	reviews   *usecase.PrescriptionReviewUsecase
	admin     *usecase.AdminOrderUsecase
	logs      *observer.ObservedLogs
	spans     *tracetest.SpanRecorder
}

func testPricing() usecase.Pricing {
	return usecase.Pricing{
		TaxRate:          decimal.RequireFromString("0.14"),
		ShippingFee:      decimal.RequireFromString("30"),
		FreeShippingOver: decimal.RequireFromString("500"),
	}
}

func newFixture(t *testing.T, opts fixtureOpts) *fixture {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	lg := zap.New(core)

	store := newMemStore()
	audit := new(AuditRepoMock)
	audit.On("Create", mock.Anything, mock.Anything).Return(opts.auditErr).Maybe()

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))

	clock := fixedClock{t: testNow}
	lc := usecase.NewOrderLifecycleUsecase(store, audit, usecase.NewStockLedger(lg), clock, lg, usecase.LifecycleOptions{
		ConflictRetries: opts.retries,
		Notifier:        opts.notifier,
		TracerProvider:  tp,
	})

	return &fixture{
		store:     store,
		audit:     audit,
		orders:    usecase.NewOrderUsecase(store, audit, testPricing(), uuidGen{}, clock, lg, usecase.WithOrderTracerProvider(tp)),
		lifecycle: lc,
		reviews:   usecase.NewPrescriptionReviewUsecase(lc, store),
		admin:     usecase.NewAdminOrderUsecase(store, audit),
		logs:      logs,
		spans:     spans,
	}
}
