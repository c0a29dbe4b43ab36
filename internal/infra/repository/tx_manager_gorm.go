package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	infradb "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/infra/db"
	repo "github.com/AbdallahMohamedDotnet/pharmacy-management-system-sub000/internal/repository"
)

type txReposGorm struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	carts      repo.CartRepository
	inventory  repo.InventoryRepository
	medicines  repo.MedicineRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository         { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txReposGorm) Carts() repo.CartRepository           { return r.carts }
func (r *txReposGorm) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *txReposGorm) Medicines() repo.MedicineRepository   { return r.medicines }

type TxManagerGorm struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

type TxOption func(*TxManagerGorm)

// 行ロック待ちの上限。超えると 55P03 で失敗し、競合として扱われる。
func WithLockTimeout(d time.Duration) TxOption {
	return func(tm *TxManagerGorm) { tm.lockTimeout = d }
}

func NewTxManagerGorm(db *gorm.DB, opts ...TxOption) *TxManagerGorm {
	tm := &TxManagerGorm{db: db}
	for _, o := range opts {
		o(tm)
	}
	return tm
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	err := tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tm.lockTimeout > 0 {
			//SET は bind 変数を受けない
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", tm.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}

		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:     NewOrderGormRepository(tx),
			orderItems: NewOrderItemGormRepository(tx),
			carts:      NewCartGormRepository(tx),
			inventory:  NewInventoryGormRepository(tx),
			medicines:  NewMedicineGormRepository(tx),
		}
		return fn(r)
	})
	//直列化失敗・デッドロック（commit 時を含む）
	if err != nil && infradb.IsRetryable(err) {
		return fmt.Errorf("%w: %w", repo.ErrConflict, err)
	}
	return err
}
