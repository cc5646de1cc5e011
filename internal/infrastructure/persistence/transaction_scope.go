package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	appinventory "github.com/tradedist/backend/internal/application/inventory"
	"github.com/tradedist/backend/internal/domain/billing"
	"github.com/tradedist/backend/internal/domain/inventory"
	"github.com/tradedist/backend/internal/domain/shared"
	"github.com/tradedist/backend/internal/domain/trade"
	"github.com/tradedist/backend/internal/domain/transfer"
)

// GormTransactionScope runs a unit of work inside a single database
// transaction. All repositories handed to the callback share the same
// *gorm.DB transaction handle, so writes across aggregates commit or roll
// back together.
type GormTransactionScope struct {
	db *gorm.DB
}

func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute opens a SERIALIZABLE transaction and invokes fn with transactional
// repositories. Serialization failures, deadlocks and lock timeouts are
// translated to shared.ErrContention so callers can retry.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	opts := &sql.TxOptions{}
	if s.db.Dialector.Name() == "postgres" {
		opts.Isolation = sql.LevelSerializable
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	}, opts)
	if err != nil {
		return translateContention(err)
	}
	return nil
}

// translateContention maps retryable database failures onto the domain
// contention error. SQLSTATE 40001 is serialization_failure, 40P01 is
// deadlock_detected, 55P03 is lock_not_available.
func translateContention(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: %s", shared.ErrContention, pgErr.Message)
		}
	}
	return err
}

// gormTransactionalRepositories builds repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) LotRepo() inventory.LotRepository {
	return NewGormLotRepository(r.tx)
}

func (r *gormTransactionalRepositories) TransactionRepo() inventory.StockTransactionRepository {
	return NewGormStockTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) BalanceRepo() inventory.StockBalanceRepository {
	return NewGormStockBalanceRepository(r.tx)
}

func (r *gormTransactionalRepositories) TransferRepo() transfer.TransferRepository {
	return NewGormTransferRepository(r.tx)
}

func (r *gormTransactionalRepositories) OrderRepo() trade.SalesOrderRepository {
	return NewGormSalesOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) AllocationRepo() trade.AllocationRepository {
	return NewGormAllocationRepository(r.tx)
}

func (r *gormTransactionalRepositories) InvoiceRepo() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

func (r *gormTransactionalRepositories) OperationKeyRepo() shared.OperationKeyRepository {
	return NewGormOperationKeyRepository(r.tx)
}

var _ appinventory.TransactionScope = (*GormTransactionScope)(nil)
var _ appinventory.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
