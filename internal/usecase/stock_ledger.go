package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/domain/model"
	repo "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/repository"
)

// InsufficientStockError は在庫不足で引当できなかった。
type InsufficientStockError struct {
	MedicineID int64
	Requested  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for medicine %d (requested %d)", e.MedicineID, e.Requested)
}

// StockLedger は注文による在庫の引当と戻しを台帳つきで行う。
// 呼び出し側のトランザクション内で使う。
type StockLedger struct {
	lg *zap.Logger
}

func NewStockLedger(lg *zap.Logger) *StockLedger {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &StockLedger{lg: lg}
}

// Decrement は明細ごとに在庫を減らし、負の差分を台帳に残す。
// 1件でも足りなければエラー（ロールバックは呼び出し側）。
func (l *StockLedger) Decrement(ctx context.Context, r repo.TxRepos, actor model.Principal, orderID int64, items []model.OrderItem) error {
	for _, it := range items {
		ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.MedicineID, it.Quantity)
		if err != nil {
			return fmt.Errorf("decrease stock of medicine %d: %w", it.MedicineID, err)
		}
		if !ok {
			return &InsufficientStockError{MedicineID: it.MedicineID, Requested: it.Quantity}
		}

		oid := orderID
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			MedicineID:  it.MedicineID,
			OrderID:     &oid,
			ActorUserID: actor.UserID,
			Delta:       -it.Quantity,
			Reason:      model.AdjustmentReasonOrderFulfillment,
		}); err != nil {
			return fmt.Errorf("record adjustment for medicine %d: %w", it.MedicineID, err)
		}

		l.warnIfLow(ctx, r, it.MedicineID)
	}
	return nil
}

// Restore は注文の台帳を合計し、減らした分だけを戻す。
// 戻し済み（合計0）の医薬品は触らない。
func (l *StockLedger) Restore(ctx context.Context, r repo.TxRepos, actor model.Principal, orderID int64) error {
	adjs, err := r.Inventory().ListAdjustmentsByOrderID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("list adjustments of order %d: %w", orderID, err)
	}

	//医薬品ごとの純増減（登場順を保つ）
	net := map[int64]int64{}
	order := make([]int64, 0, len(adjs))
	for _, a := range adjs {
		if _, seen := net[a.MedicineID]; !seen {
			order = append(order, a.MedicineID)
		}
		net[a.MedicineID] += a.Delta
	}

	for _, medicineID := range order {
		qty := -net[medicineID]
		if qty <= 0 {
			continue
		}
		if err := r.Inventory().IncreaseStock(ctx, medicineID, qty); err != nil {
			return fmt.Errorf("increase stock of medicine %d: %w", medicineID, err)
		}
		oid := orderID
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			MedicineID:  medicineID,
			OrderID:     &oid,
			ActorUserID: actor.UserID,
			Delta:       qty,
			Reason:      model.AdjustmentReasonOrderRelease,
		}); err != nil {
			return fmt.Errorf("record adjustment for medicine %d: %w", medicineID, err)
		}
	}
	return nil
}

// 最低在庫を下回ったら警告だけ出す（失敗しても引当は続ける）
func (l *StockLedger) warnIfLow(ctx context.Context, r repo.TxRepos, medicineID int64) {
	m, err := r.Medicines().FindByID(ctx, medicineID)
	if err != nil {
		l.lg.Debug("low stock check skipped", zap.Int64("medicine_id", medicineID), zap.Error(err))
		return
	}
	if m.MinStock > 0 && m.Stock <= m.MinStock {
		l.lg.Warn("medicine stock at or below minimum",
			zap.Int64("medicine_id", m.ID),
			zap.String("name", m.Name),
			zap.Int64("stock", m.Stock),
			zap.Int64("min_stock", m.MinStock),
		)
	}
}
