package repository

import (
	"context"
	"errors"
)

// 直列化失敗・デッドロックなど、やり直せば通る可能性があるDBエラー
var ErrConflict = errors.New("transaction conflict")

// トランザクション内で使う約束
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Carts() CartRepository
	Inventory() InventoryRepository
	Medicines() MedicineRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fn がエラーを返したら全部ロールバック。
// やり直し可能な失敗は ErrConflict を wrap して返す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
