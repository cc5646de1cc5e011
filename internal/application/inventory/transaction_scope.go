package inventory

import (
	"context"

	"github.com/tradedist/backend/internal/domain/billing"
	"github.com/tradedist/backend/internal/domain/inventory"
	"github.com/tradedist/backend/internal/domain/shared"
	"github.com/tradedist/backend/internal/domain/trade"
	"github.com/tradedist/backend/internal/domain/transfer"
)

// TransactionScope provides transactional access to the back-office
// repositories. When a function is executed within a scope, all repository
// operations join the same database transaction and commit or roll back
// atomically. Implementations run the transaction at SERIALIZABLE isolation
// and map serialization failures to shared.ErrContention.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to every repository within a
// transaction. Transfer dispatch, order allocation and invoicing all post
// stock transactions, so one scope spans the whole back office: a ledger
// posting always commits together with the document that caused it.
type TransactionalRepositories interface {
	// LotRepo returns the lot repository scoped to the current transaction
	LotRepo() inventory.LotRepository
	// TransactionRepo returns the stock ledger repository scoped to the current transaction
	TransactionRepo() inventory.StockTransactionRepository
	// BalanceRepo returns the stock balance repository scoped to the current transaction
	BalanceRepo() inventory.StockBalanceRepository
	// TransferRepo returns the transfer repository scoped to the current transaction
	TransferRepo() transfer.TransferRepository
	// OrderRepo returns the sales order repository scoped to the current transaction
	OrderRepo() trade.SalesOrderRepository
	// AllocationRepo returns the allocation repository scoped to the current transaction
	AllocationRepo() trade.AllocationRepository
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// OperationKeyRepo returns the idempotency key repository scoped to the current transaction
	OperationKeyRepo() shared.OperationKeyRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests exercising service logic without a database.
type NoOpTransactionScope struct {
	lotRepo          inventory.LotRepository
	transactionRepo  inventory.StockTransactionRepository
	balanceRepo      inventory.StockBalanceRepository
	transferRepo     transfer.TransferRepository
	orderRepo        trade.SalesOrderRepository
	allocationRepo   trade.AllocationRepository
	invoiceRepo      billing.InvoiceRepository
	operationKeyRepo shared.OperationKeyRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	lotRepo inventory.LotRepository,
	transactionRepo inventory.StockTransactionRepository,
	balanceRepo inventory.StockBalanceRepository,
	transferRepo transfer.TransferRepository,
	orderRepo trade.SalesOrderRepository,
	allocationRepo trade.AllocationRepository,
	invoiceRepo billing.InvoiceRepository,
	operationKeyRepo shared.OperationKeyRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		lotRepo:          lotRepo,
		transactionRepo:  transactionRepo,
		balanceRepo:      balanceRepo,
		transferRepo:     transferRepo,
		orderRepo:        orderRepo,
		allocationRepo:   allocationRepo,
		invoiceRepo:      invoiceRepo,
		operationKeyRepo: operationKeyRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LotRepo returns the lot repository
func (s *NoOpTransactionScope) LotRepo() inventory.LotRepository { return s.lotRepo }

// TransactionRepo returns the stock ledger repository
func (s *NoOpTransactionScope) TransactionRepo() inventory.StockTransactionRepository {
	return s.transactionRepo
}

// BalanceRepo returns the stock balance repository
func (s *NoOpTransactionScope) BalanceRepo() inventory.StockBalanceRepository {
	return s.balanceRepo
}

// TransferRepo returns the transfer repository
func (s *NoOpTransactionScope) TransferRepo() transfer.TransferRepository { return s.transferRepo }

// OrderRepo returns the sales order repository
func (s *NoOpTransactionScope) OrderRepo() trade.SalesOrderRepository { return s.orderRepo }

// AllocationRepo returns the allocation repository
func (s *NoOpTransactionScope) AllocationRepo() trade.AllocationRepository {
	return s.allocationRepo
}

// InvoiceRepo returns the invoice repository
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository { return s.invoiceRepo }

// OperationKeyRepo returns the idempotency key repository
func (s *NoOpTransactionScope) OperationKeyRepo() shared.OperationKeyRepository {
	return s.operationKeyRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
