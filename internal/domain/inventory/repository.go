package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/shared"
)

// LotRepository defines the interface for lot persistence
type LotRepository interface {
	// FindByID finds a lot by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lot, error)

	// FindByIDForTenant finds a lot by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Lot, error)

	// FindAvailableForStock returns lots with available quantity for a
	// (warehouse, sku) key in FIFO order, acquiring row locks so that
	// concurrent selections are serialized. Lock order follows the FIFO
	// ordering (received_at, then id ascending).
	FindAvailableForStock(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID) ([]*Lot, error)

	// FindByIDsForUpdate loads specific lots with row locks, in ascending
	// id order to avoid deadlocks between overlapping lot sets.
	FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*Lot, error)

	// FindByStock lists lots for a (warehouse, sku) key
	FindByStock(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID, filter shared.Filter) ([]Lot, error)

	// SumAvailableForStock sums available quantity across lots of a key
	SumAvailableForStock(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID) (decimal.Decimal, error)

	// Save creates or updates a lot
	Save(ctx context.Context, lot *Lot) error

	// SaveAll persists multiple lots
	SaveAll(ctx context.Context, lots []*Lot) error
}

// StockTransactionRepository is the append-only ledger store. Transactions
// are immutable once created; there is no update or delete.
type StockTransactionRepository interface {
	// Create appends a transaction together with its lot lines
	Create(ctx context.Context, txn *StockTransaction) error

	// FindByID finds a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockTransaction, error)

	// FindByIDForTenant finds a transaction by ID within a tenant,
	// loading its lot lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*StockTransaction, error)

	// FindByStock lists transactions for a (warehouse, sku) key
	FindByStock(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID, filter shared.Filter) ([]StockTransaction, error)

	// FindReversalOf returns the reversal of a transaction, or ErrNotFound
	FindReversalOf(ctx context.Context, tenantID, txnID uuid.UUID) (*StockTransaction, error)

	// SumByStock returns total qty_in and qty_out for a key, used for
	// conservation checks and balance rebuilds
	SumByStock(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID) (totalIn, totalOut decimal.Decimal, err error)
}

// StockBalanceRepository persists the derived balance cache
type StockBalanceRepository interface {
	// GetOrCreateForUpdate returns the balance row for a key, creating it
	// if absent, holding a row lock for the rest of the transaction.
	GetOrCreateForUpdate(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID) (*StockBalance, error)

	// FindByStock returns the balance row without locking
	FindByStock(ctx context.Context, tenantID, warehouseID, skuID uuid.UUID) (*StockBalance, error)

	// FindByWarehouse lists balances for a warehouse
	FindByWarehouse(ctx context.Context, tenantID, warehouseID uuid.UUID, filter shared.Filter) ([]StockBalance, error)

	// Save persists the balance row
	Save(ctx context.Context, balance *StockBalance) error
}
