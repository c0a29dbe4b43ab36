package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/lifecycle"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	repo "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/repository"
)

const tracerName = "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/usecase"

// 注文ステータスを動かす唯一の入口。
type OrderLifecycleUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	notifier  Notifier
	ledger    *StockLedger
	clock     Clock
	lg        *zap.Logger
	tracer    trace.Tracer
	retries   int
}

type LifecycleOptions struct {
	//競合時のやり直し回数（0ならやり直さない）
	ConflictRetries int
	Notifier        Notifier
	//nil ならグローバルの TracerProvider
	TracerProvider trace.TracerProvider
}

func NewOrderLifecycleUsecase(
	tx repo.TransactionManager,
	auditRepo repo.AuditLogRepository,
	ledger *StockLedger,
	clock Clock,
	lg *zap.Logger,
	opts LifecycleOptions,
) *OrderLifecycleUsecase {
	if lg == nil {
		lg = zap.NewNop()
	}
	retries := opts.ConflictRetries
	if retries < 0 {
		retries = 0
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OrderLifecycleUsecase{
		tx:        tx,
		auditRepo: auditRepo,
		notifier:  opts.Notifier,
		ledger:    ledger,
		clock:     clock,
		lg:        lg,
		tracer:    tp.Tracer(tracerName),
		retries:   retries,
	}
}

type TransitionInput struct {
	Status model.OrderStatus
	Note   string

	//読み込んだ注文に対する追加の前提条件（処方箋レビュー用）
	guard func(model.Order) error
}

type TransitionResult struct {
	Order OrderOutput
	//実際にステータスが変わったか（同じステータスなら false）
	Changed bool
	//監査ログを残せなかった（遷移自体は成功）
	Degraded bool
}

// 1回の遷移の結果（commit 後の監査・通知に使う）
type transitionOutcome struct {
	before  model.Order
	after   model.Order
	items   []model.OrderItem
	changed bool
}

// Transition は orderID の注文を in.Status に動かす。
func (u *OrderLifecycleUsecase) Transition(ctx context.Context, actor model.Principal, orderID int64, in TransitionInput) (TransitionResult, error) {
	ctx, span := u.tracer.Start(ctx, "OrderLifecycle.Transition", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int("order.requested_status", int(in.Status.Code())),
		attribute.String("actor.role", string(actor.Role)),
	))
	defer span.End()

	res, err := u.transition(ctx, actor, orderID, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(lifecycle.KindOf(err)))
		return TransitionResult{}, err
	}
	span.SetAttributes(attribute.Bool("order.changed", res.Changed), attribute.Bool("audit.degraded", res.Degraded))
	return res, nil
}

func (u *OrderLifecycleUsecase) transition(ctx context.Context, actor model.Principal, orderID int64, in TransitionInput) (TransitionResult, error) {
	if actor.UserID <= 0 || !actor.Role.Valid() {
		return TransitionResult{}, lifecycle.Validation("invalid principal")
	}
	if orderID <= 0 {
		return TransitionResult{}, lifecycle.Validation("invalid order id")
	}
	in.Note = strings.TrimSpace(in.Note)

	var (
		out transitionOutcome
		err error
	)
	for attempt := 0; ; attempt++ {
		out, err = u.transitionOnce(ctx, actor, orderID, in)
		if err == nil {
			break
		}
		if !isConflict(err) {
			return TransitionResult{}, err
		}
		if attempt >= u.retries {
			return TransitionResult{}, lifecycle.ConcurrentModification(orderID)
		}
		//読み直してもう一度
		u.lg.Debug("order transition conflict; retrying",
			zap.Int64("order_id", orderID),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	res := TransitionResult{
		Order:   toOrderOutput(out.after, out.items),
		Changed: out.changed,
	}
	if out.changed {
		res.Degraded = !u.emit(ctx, actor, out, in.Note)
	}
	return res, nil
}

// Tx 1回分: 読む→判定→在庫→条件付き更新
func (u *OrderLifecycleUsecase) transitionOnce(ctx context.Context, actor model.Principal, orderID int64, in TransitionInput) (transitionOutcome, error) {
	var out transitionOutcome

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return lifecycle.NotFound("order %d not found", orderID)
		}
		if err != nil {
			return lifecycle.PersistenceFailure(err, "load order %d", orderID)
		}
		//他人の注文は「存在しない扱い」にする
		if actor.Role == model.RoleCustomer && o.UserID != actor.UserID {
			return lifecycle.NotFound("order %d not found", orderID)
		}

		if err := lifecycle.CanTransition(o.Status, in.Status, lifecycle.Actor{
			Role:  actor.Role,
			Owner: o.UserID == actor.UserID,
		}, in.Note); err != nil {
			return err
		}
		if in.guard != nil {
			if err := in.guard(o); err != nil {
				return err
			}
		}

		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return lifecycle.PersistenceFailure(err, "load items of order %d", o.ID)
		}

		// すでに同じなら何もしない
		if o.Status == in.Status {
			out = transitionOutcome{before: o, after: o, items: items}
			return nil
		}

		now := u.clock.Now()
		change := repo.OrderStatusChange{Status: in.Status, UpdatedAt: now}
		if in.Note != "" {
			note := in.Note
			change.Note = &note
		}

		//初めて出荷可能になるときだけ在庫を引き当てる
		if in.Status.IsFulfillmentEligible() && o.StockDecrementedAt == nil {
			if err := u.ledger.Decrement(ctx, r, actor, o.ID, items); err != nil {
				return lifecycle.SideEffectFailure(err, "stock decrement for order %s failed", o.OrderNumber)
			}
			change.StockDecrementedAt = &now
		}
		//引き当て済みのときだけ戻す（未払いキャンセルは在庫に触らない）
		if in.Status.ReleasesStock() && o.HoldsStock() {
			if err := u.ledger.Restore(ctx, r, actor, o.ID); err != nil {
				return lifecycle.SideEffectFailure(err, "stock restore for order %s failed", o.OrderNumber)
			}
			change.StockRestoredAt = &now
		}
		if o.Status == model.OrderStatusPrescriptionPending {
			change.Review = &repo.PrescriptionReview{
				ReviewerID: actor.UserID,
				Notes:      in.Note,
				ReviewedAt: now,
			}
		}

		ok, err := r.Orders().UpdateStatusIf(ctx, o.ID, o.Status, change)
		if err != nil {
			return lifecycle.PersistenceFailure(err, "update status of order %d", o.ID)
		}
		if !ok {
			return lifecycle.ConcurrentModification(o.ID)
		}

		out = transitionOutcome{before: o, after: applyChange(o, change), items: items, changed: true}
		return nil
	})
	if err != nil {
		return transitionOutcome{}, err
	}
	return out, nil
}

func applyChange(o model.Order, c repo.OrderStatusChange) model.Order {
	o.Status = c.Status
	o.UpdatedAt = c.UpdatedAt
	if c.Note != nil {
		o.StatusNote = *c.Note
	}
	if c.StockDecrementedAt != nil {
		o.StockDecrementedAt = c.StockDecrementedAt
	}
	if c.StockRestoredAt != nil {
		o.StockRestoredAt = c.StockRestoredAt
	}
	if c.Review != nil {
		reviewer := c.Review.ReviewerID
		reviewedAt := c.Review.ReviewedAt
		o.Prescription.ReviewerID = &reviewer
		o.Prescription.ReviewNotes = c.Review.Notes
		o.Prescription.ReviewedAt = &reviewedAt
	}
	return o
}

// 競合（読み直せば通るかもしれない）か
func isConflict(err error) bool {
	return errors.Is(err, lifecycle.ErrConcurrentModification) || errors.Is(err, repo.ErrConflict)
}

type statusSnapshot struct {
	Status uint16 `json:"status"`
	Label  string `json:"label"`
}

func snapshotJSON(s model.OrderStatus) string {
	b, _ := json.Marshal(statusSnapshot{Status: s.Code(), Label: s.Label()})
	return string(b)
}

// commit 後の監査ログと通知。監査ログを残せたら true。
func (u *OrderLifecycleUsecase) emit(ctx context.Context, actor model.Principal, out transitionOutcome, note string) bool {
	from, to := out.before.Status, out.after.Status
	fields := []zap.Field{
		zap.Int64("order_id", out.after.ID),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int64("actor_id", actor.UserID),
	}

	action := model.AuditActionUpdateOrderStatus
	if from == model.OrderStatusPrescriptionPending {
		action = model.AuditActionReviewPrescription
	}

	audited := true
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actor.UserID,
		ActorRole:    actor.Role,
		Action:       action,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   out.after.ID,
		FromStatus:   from.Code(),
		ToStatus:     to.Code(),
		Note:         note,
		BeforeJSON:   snapshotJSON(from),
		AfterJSON:    snapshotJSON(to),
		CreatedAt:    out.after.UpdatedAt,
	}); err != nil {
		audited = false
		u.lg.Warn("audit log write failed; transition kept", append(fields, zap.Error(err))...)
	}

	if u.notifier != nil {
		if err := u.notifier.Notify(ctx, OrderEvent{
			OrderID:     out.after.ID,
			OrderNumber: out.after.OrderNumber,
			UserID:      out.after.UserID,
			FromStatus:  from.Code(),
			ToStatus:    to.Code(),
			Note:        note,
			ActorUserID: actor.UserID,
			ActorRole:   actor.Role,
			OccurredAt:  out.after.UpdatedAt,
		}); err != nil {
			u.lg.Warn("order notification failed", append(fields, zap.Error(err))...)
		}
	}
	return audited
}
