package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	repo "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/repository"
	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/usecase"
)

// memState はトランザクション1回分の作業コピー
type memState struct {
	orders      map[int64]model.Order
	items       map[int64][]model.OrderItem
	medicines   map[int64]model.Medicine
	carts       map[int64]model.Cart
	cartItems   map[int64][]model.CartItem
	adjustments []model.InventoryAdjustment
	nextID      int64
}

func (s *memState) clone() *memState {
	c := &memState{
		orders:      make(map[int64]model.Order, len(s.orders)),
		items:       make(map[int64][]model.OrderItem, len(s.items)),
		medicines:   make(map[int64]model.Medicine, len(s.medicines)),
		carts:       make(map[int64]model.Cart, len(s.carts)),
		cartItems:   make(map[int64][]model.CartItem, len(s.cartItems)),
		adjustments: append([]model.InventoryAdjustment(nil), s.adjustments...),
		nextID:      s.nextID,
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = append([]model.OrderItem(nil), v...)
	}
	for k, v := range s.medicines {
		c.medicines[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for k, v := range s.cartItems {
		c.cartItems[k] = append([]model.CartItem(nil), v...)
	}
	return c
}

func (s *memState) id() int64 {
	s.nextID++
	return s.nextID
}

// memStore は commit/rollback つきのインメモリ永続化
type memStore struct {
	mu    sync.Mutex
	state *memState

	//UpdateStatusIf がこの回数だけ競合を返す
	conflicts int
	//DecreaseStockIfEnough がこのエラーを返す
	stockErr error
	//FindByIdempotencyKey がこの回数だけ見つからない扱い（同時作成の再現）
	hiddenKeys int
	txCalls    int
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		orders:    map[int64]model.Order{},
		items:     map[int64][]model.OrderItem{},
		medicines: map[int64]model.Medicine{},
		carts:     map[int64]model.Cart{},
		cartItems: map[int64][]model.CartItem{},
		nextID:    100,
	}}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCalls++

	work := s.state.clone()
	if err := fn(&memTx{s: s, st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *memStore) addMedicine(id int64, name, price string, stock int64, rx bool) {
	s.state.medicines[id] = model.Medicine{
		ID:                   id,
		Name:                 name,
		Price:                decimal.RequireFromString(price),
		Stock:                stock,
		RequiresPrescription: rx,
		IsActive:             true,
	}
}

func (s *memStore) addCart(userID int64, items ...model.CartItem) int64 {
	id := s.state.id()
	s.state.carts[userID] = model.Cart{ID: id, UserID: userID, Status: model.CartStatusActive}
	for i := range items {
		items[i].CartID = id
	}
	s.state.cartItems[id] = items
	return id
}

func (s *memStore) stock(id int64) int64 { return s.state.medicines[id].Stock }

func (s *memStore) order(id int64) model.Order { return s.state.orders[id] }

type memTx struct {
	s  *memStore
	st *memState
}

func (t *memTx) Orders() repo.OrderRepository         { return memOrders{t} }
func (t *memTx) OrderItems() repo.OrderItemRepository { return memOrderItems{t} }
func (t *memTx) Carts() repo.CartRepository           { return memCarts{t} }
func (t *memTx) Inventory() repo.InventoryRepository  { return memInventory{t} }
func (t *memTx) Medicines() repo.MedicineRepository   { return memMedicines{t} }

type memOrders struct{ t *memTx }

func (r memOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := r.t.st.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r memOrders) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.t.st.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r memOrders) Create(ctx context.Context, order model.Order) (int64, error) {
	for _, o := range r.t.st.orders {
		if o.UserID == order.UserID && o.IdempotencyKey == order.IdempotencyKey {
			return 0, repo.ErrConflict
		}
	}
	order.ID = r.t.st.id()
	r.t.st.orders[order.ID] = order
	return order.ID, nil
}

func (r memOrders) UpdateStatusIf(ctx context.Context, orderID int64, expected model.OrderStatus, c repo.OrderStatusChange) (bool, error) {
	if r.t.s.conflicts > 0 {
		r.t.s.conflicts--
		return false, nil
	}
	o, ok := r.t.st.orders[orderID]
	if !ok || o.Status != expected {
		return false, nil
	}
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
		id, at := c.Review.ReviewerID, c.Review.ReviewedAt
		o.Prescription.ReviewerID = &id
		o.Prescription.ReviewNotes = c.Review.Notes
		o.Prescription.ReviewedAt = &at
	}
	r.t.st.orders[orderID] = o
	return true, nil
}

func (r memOrders) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	if r.t.s.hiddenKeys > 0 {
		r.t.s.hiddenKeys--
		return model.Order{}, false, nil
	}
	for _, o := range r.t.st.orders {
		if o.UserID == userID && o.IdempotencyKey == key {
			return o, true, nil
		}
	}
	return model.Order{}, false, nil
}

func (r memOrders) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.t.st.orders {
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.StatusMask != 0 && o.Status.Code()&f.StatusMask == 0 {
			continue
		}
		if f.UserID != nil && o.UserID != *f.UserID {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

type memOrderItems struct{ t *memTx }

func (r memOrderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	for _, it := range items {
		it.ID = r.t.st.id()
		it.OrderID = orderID
		r.t.st.items[orderID] = append(r.t.st.items[orderID], it)
	}
	return nil
}

func (r memOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	return append([]model.OrderItem(nil), r.t.st.items[orderID]...), nil
}

type memCarts struct{ t *memTx }

func (r memCarts) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	c, ok := r.t.st.carts[userID]
	if !ok || c.Status != model.CartStatusActive {
		return model.Cart{}, repo.ErrNotFound
	}
	return c, nil
}

func (r memCarts) ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	return append([]model.CartItem(nil), r.t.st.cartItems[cartID]...), nil
}

func (r memCarts) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	for uid, c := range r.t.st.carts {
		if c.ID == cartID {
			c.Status = status
			r.t.st.carts[uid] = c
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r memCarts) Clear(ctx context.Context, cartID int64) error {
	delete(r.t.st.cartItems, cartID)
	return nil
}

type memInventory struct{ t *memTx }

func (r memInventory) DecreaseStockIfEnough(ctx context.Context, medicineID int64, qty int64) (bool, error) {
	if r.t.s.stockErr != nil {
		return false, r.t.s.stockErr
	}
	m, ok := r.t.st.medicines[medicineID]
	if !ok || m.Stock < qty {
		return false, nil
	}
	m.Stock -= qty
	r.t.st.medicines[medicineID] = m
	return true, nil
}

func (r memInventory) IncreaseStock(ctx context.Context, medicineID int64, qty int64) error {
	m, ok := r.t.st.medicines[medicineID]
	if !ok {
		return repo.ErrNotFound
	}
	m.Stock += qty
	r.t.st.medicines[medicineID] = m
	return nil
}

func (r memInventory) CreateAdjustment(ctx context.Context, a model.InventoryAdjustment) error {
	a.ID = r.t.st.id()
	r.t.st.adjustments = append(r.t.st.adjustments, a)
	return nil
}

func (r memInventory) ListAdjustmentsByOrderID(ctx context.Context, orderID int64) ([]model.InventoryAdjustment, error) {
	var out []model.InventoryAdjustment
	for _, a := range r.t.st.adjustments {
		if a.OrderID != nil && *a.OrderID == orderID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memMedicines struct{ t *memTx }

func (r memMedicines) FindByID(ctx context.Context, id int64) (model.Medicine, error) {
	m, ok := r.t.st.medicines[id]
	if !ok {
		return model.Medicine{}, repo.ErrNotFound
	}
	return m, nil
}

func (r memMedicines) FindByIDs(ctx context.Context, ids []int64) ([]model.Medicine, error) {
	var out []model.Medicine
	for _, id := range ids {
		if m, ok := r.t.st.medicines[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// =====================
// mocks
// =====================

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Notify(ctx context.Context, e usecase.OrderEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type uuidGen struct{}

func (uuidGen) NewID() string { return uuid.NewString() }

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

var (
	customer   = model.Principal{UserID: 1, Role: model.RoleCustomer}
	otherUser  = model.Principal{UserID: 2, Role: model.RoleCustomer}
	pharmacist = model.Principal{UserID: 50, Role: model.RolePharmacist}
	admin      = model.Principal{UserID: 99, Role: model.RoleAdmin}
)

func testAddress() model.ShippingAddress {
	return model.ShippingAddress{
		RecipientName: "Mona Adel",
		Phone:         "01000000000",
		Line1:         "12 Tahrir St",
		City:          "Cairo",
		Country:       "EG",
	}
}
