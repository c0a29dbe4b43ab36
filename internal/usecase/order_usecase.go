package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/lifecycle"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	repo "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/repository"
)

// 注文作成（カート→注文）と購入者向けの読み取り
type OrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	pricing   Pricing
	ids       IDGenerator
	clock     Clock
	lg        *zap.Logger
	tracer    trace.Tracer
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	auditRepo repo.AuditLogRepository,
	pricing Pricing,
	ids IDGenerator,
	clock Clock,
	lg *zap.Logger,
	opts ...OrderOption,
) *OrderUsecase {
	if lg == nil {
		lg = zap.NewNop()
	}
	u := &OrderUsecase{
		tx:        tx,
		auditRepo: auditRepo,
		pricing:   pricing,
		ids:       ids,
		clock:     clock,
		lg:        lg,
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type OrderOption func(*OrderUsecase)

// WithOrderTracerProvider はスパンの出し先を差し替える。
func WithOrderTracerProvider(tp trace.TracerProvider) OrderOption {
	return func(u *OrderUsecase) {
		if tp != nil {
			u.tracer = tp.Tracer(tracerName)
		}
	}
}

type PlaceOrderItemInput struct {
	MedicineID int64
	Quantity   int64
}

type PrescriptionInput struct {
	ImageURL    string
	DoctorName  string
	DoctorPhone string
}

type PlaceOrderInput struct {
	//空ならACTIVEカートの中身を使う
	Items           []PlaceOrderItemInput
	ShippingAddress model.ShippingAddress
	PaymentMethod   string
	Prescription    *PrescriptionInput
	//空ならサーバー側で採番（リトライで同じ注文を返せない）
	IdempotencyKey string
}

func (u *OrderUsecase) PlaceOrder(ctx context.Context, actor model.Principal, in PlaceOrderInput) (OrderOutput, error) {
	ctx, span := u.tracer.Start(ctx, "Order.Place", trace.WithAttributes(
		attribute.Int64("user.id", actor.UserID),
		attribute.Int("order.lines", len(in.Items)),
	))
	defer span.End()

	out, created, err := u.placeOrder(ctx, actor, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(lifecycle.KindOf(err)))
		return OrderOutput{}, err
	}
	span.SetAttributes(attribute.Int64("order.id", out.ID), attribute.Bool("order.created", created))

	if created {
		u.auditCreated(ctx, actor, out)
	}
	return out, nil
}

func (u *OrderUsecase) placeOrder(ctx context.Context, actor model.Principal, in PlaceOrderInput) (OrderOutput, bool, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, false, lifecycle.Validation("invalid principal")
	}
	if err := validateShipTo(in.ShippingAddress); err != nil {
		return OrderOutput{}, false, err
	}
	for _, it := range in.Items {
		if it.MedicineID <= 0 {
			return OrderOutput{}, false, lifecycle.Validation("invalid medicine id %d", it.MedicineID)
		}
		if it.Quantity <= 0 {
			return OrderOutput{}, false, lifecycle.Validation("quantity must be positive for medicine %d", it.MedicineID)
		}
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return OrderOutput{}, false, lifecycle.Validation("invalid idempotency key")
	}
	if key == "" {
		key = u.ids.NewID()
	}

	//同じキーの同時作成は1回だけ読み直す（2回目は既存の注文が見える）
	var (
		out     OrderOutput
		created bool
		err     error
	)
	for attempt := 0; attempt < 2; attempt++ {
		out, created, err = u.placeOnce(ctx, actor, in, key)
		if !errors.Is(err, repo.ErrConflict) {
			break
		}
	}
	if errors.Is(err, repo.ErrConflict) {
		return OrderOutput{}, false, lifecycle.PersistenceFailure(err, "create order")
	}
	return out, created, err
}

func (u *OrderUsecase) placeOnce(ctx context.Context, actor model.Principal, in PlaceOrderInput, key string) (OrderOutput, bool, error) {
	var (
		out     OrderOutput
		created bool
	)

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, actor.UserID, key)
		if err != nil {
			return lifecycle.PersistenceFailure(err, "lookup idempotency key")
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return lifecycle.PersistenceFailure(err, "load items of order %d", existing.ID)
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		//明細の指定がなければACTIVEカートから作る（指定ありならカートには触らない）
		var (
			cart     model.Cart
			fromCart bool
		)
		lines := in.Items
		if len(lines) == 0 {
			c, hasCart, err := activeCart(ctx, r, actor.UserID)
			if err != nil {
				return err
			}
			if !hasCart {
				return lifecycle.Validation("no items and no active cart")
			}
			cartItems, err := r.Carts().ListItems(ctx, c.ID)
			if err != nil {
				return lifecycle.PersistenceFailure(err, "load cart items")
			}
			for _, ci := range cartItems {
				lines = append(lines, PlaceOrderItemInput{MedicineID: ci.MedicineID, Quantity: ci.Quantity})
			}
			cart, fromCart = c, true
		}
		if len(lines) == 0 {
			return lifecycle.Validation("cart empty")
		}

		//価格を解決できない明細があれば何も作らない
		catalog, err := loadCatalog(ctx, r, lines)
		if err != nil {
			return err
		}

		orderItems := make([]model.OrderItem, 0, len(lines))
		subtotal := decimal.Zero
		requiresRx := false
		now := u.clock.Now()
		for _, l := range lines {
			m := catalog[l.MedicineID]
			if m.RequiresPrescription {
				requiresRx = true
			}
			//スナップショット
			it := model.OrderItem{
				MedicineID:           m.ID,
				MedicineNameSnapshot: m.Name,
				UnitPriceSnapshot:    m.Price,
				Quantity:             l.Quantity,
				CreatedAt:            now,
			}
			orderItems = append(orderItems, it)
			subtotal = subtotal.Add(it.LineTotal())
		}

		status := model.OrderStatusPendingPayment
		var rx model.Prescription
		if requiresRx {
			//1つでも処方箋医薬品があれば注文全体を処方箋ルートへ
			if in.Prescription == nil ||
				strings.TrimSpace(in.Prescription.ImageURL) == "" ||
				strings.TrimSpace(in.Prescription.DoctorName) == "" {
				return lifecycle.MissingPrescriptionData("prescription image and doctor name are required for prescription medicines")
			}
			rx = model.Prescription{
				ImageURL:    strings.TrimSpace(in.Prescription.ImageURL),
				DoctorName:  strings.TrimSpace(in.Prescription.DoctorName),
				DoctorPhone: strings.TrimSpace(in.Prescription.DoctorPhone),
			}
			status = model.OrderStatusPrescriptionPending
		}

		q := u.pricing.Quote(subtotal)
		order := model.Order{
			OrderNumber:    u.orderNumber(),
			UserID:         actor.UserID,
			Status:         status,
			Subtotal:       q.Subtotal,
			Tax:            q.Tax,
			ShippingFee:    q.ShippingFee,
			Total:          q.Total,
			PaymentMethod:  strings.TrimSpace(in.PaymentMethod),
			ShipTo:         in.ShippingAddress,
			Prescription:   rx,
			IdempotencyKey: key,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		// 注文作成
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//同時に同じキーが入った（このtxは使えないので外でやり直す）
			if errors.Is(err, repo.ErrConflict) {
				return err
			}
			return lifecycle.PersistenceFailure(err, "create order")
		}
		order.ID = orderID

		//注文明細一括作成
		for i := range orderItems {
			orderItems[i].OrderID = orderID
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return lifecycle.PersistenceFailure(err, "create order items")
		}

		//カートから作った注文だけ、カートをCHECKED_OUTにして明細をクリア（再注文防止）
		if fromCart {
			if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
				return lifecycle.PersistenceFailure(err, "check out cart %d", cart.ID)
			}
			if err := r.Carts().Clear(ctx, cart.ID); err != nil {
				return lifecycle.PersistenceFailure(err, "clear cart %d", cart.ID)
			}
		}

		out = toOrderOutput(order, orderItems)
		created = true
		return nil
	})
	if err != nil {
		return OrderOutput{}, false, err
	}
	return out, created, nil
}

func validateShipTo(a model.ShippingAddress) error {
	if strings.TrimSpace(a.RecipientName) == "" ||
		strings.TrimSpace(a.Line1) == "" ||
		strings.TrimSpace(a.City) == "" {
		return lifecycle.Validation("shipping address requires recipient name, line1 and city")
	}
	return nil
}

func activeCart(ctx context.Context, r repo.TxRepos, userID int64) (model.Cart, bool, error) {
	cart, err := r.Carts().FindActiveByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, false, nil
	}
	if err != nil {
		return model.Cart{}, false, lifecycle.PersistenceFailure(err, "load active cart")
	}
	return cart, true, nil
}

// 明細の医薬品をまとめて取得。無い/販売停止なら NotFound。
func loadCatalog(ctx context.Context, r repo.TxRepos, lines []PlaceOrderItemInput) (map[int64]model.Medicine, error) {
	ids := make([]int64, 0, len(lines))
	seen := map[int64]bool{}
	for _, l := range lines {
		if !seen[l.MedicineID] {
			seen[l.MedicineID] = true
			ids = append(ids, l.MedicineID)
		}
	}

	meds, err := r.Medicines().FindByIDs(ctx, ids)
	if err != nil {
		return nil, lifecycle.PersistenceFailure(err, "load medicines")
	}
	catalog := make(map[int64]model.Medicine, len(meds))
	for _, m := range meds {
		catalog[m.ID] = m
	}
	for _, id := range ids {
		m, ok := catalog[id]
		if !ok || !m.IsActive {
			return nil, lifecycle.NotFound("medicine %d not found", id)
		}
	}
	return catalog, nil
}

// ORD-YYYYMMDD-XXXXXXXX
func (u *OrderUsecase) orderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(u.ids.NewID(), "-", ""))
	if len(id) > 8 {
		id = id[:8]
	}
	return "ORD-" + u.clock.Now().UTC().Format("20060102") + "-" + id
}

func (u *OrderUsecase) auditCreated(ctx context.Context, actor model.Principal, out OrderOutput) {
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actor.UserID,
		ActorRole:    actor.Role,
		Action:       model.AuditActionCreateOrder,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   out.ID,
		ToStatus:     out.Status.Code(),
		AfterJSON:    snapshotJSON(out.Status),
		CreatedAt:    out.CreatedAt,
	}); err != nil {
		u.lg.Warn("audit log write failed; order kept",
			zap.Int64("order_id", out.ID),
			zap.Int64("actor_id", actor.UserID),
			zap.Error(err),
		)
	}
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, actor model.Principal, page, limit int) ([]OrderOutput, int64, error) {
	if actor.UserID <= 0 {
		return nil, 0, lifecycle.Validation("invalid principal")
	}
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return nil, 0, err
	}

	var (
		outs  []OrderOutput
		total int64
	)
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, n, err := r.Orders().ListByUserID(ctx, actor.UserID, page, limit)
		if err != nil {
			return lifecycle.PersistenceFailure(err, "list orders")
		}
		total = n

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return lifecycle.PersistenceFailure(err, "load items of order %d", o.ID)
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return outs, total, nil
}

// 購入者は自分の注文だけ。スタッフは全注文を見られる。
func (u *OrderUsecase) GetOrder(ctx context.Context, actor model.Principal, orderID int64) (OrderOutput, error) {
	if actor.UserID <= 0 {
		return OrderOutput{}, lifecycle.Validation("invalid principal")
	}
	if orderID <= 0 {
		return OrderOutput{}, lifecycle.Validation("invalid order id")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return lifecycle.NotFound("order %d not found", orderID)
		}
		if err != nil {
			return lifecycle.PersistenceFailure(err, "load order %d", orderID)
		}
		if actor.Role == model.RoleCustomer && o.UserID != actor.UserID {
			//他人の注文は「存在しない扱い」にする
			return lifecycle.NotFound("order %d not found", orderID)
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return lifecycle.PersistenceFailure(err, "load items of order %d", orderID)
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}
