package inventory

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradedist/backend/internal/domain/shared"
)

// LotDebit is one lot's share of a selection: the lot and how much to take
type LotDebit struct {
	Lot      *Lot
	Quantity decimal.Decimal
}

// LotRequest names a specific lot and quantity for explicit selection
type LotRequest struct {
	LotID    uuid.UUID
	Quantity decimal.Decimal
}

// SelectionResult is the outcome of a lot selection. Selection is a pure
// calculation; ApplyDebits mutates the lots afterwards.
type SelectionResult struct {
	Debits        []LotDebit
	TotalSelected decimal.Decimal
}

// ApplyDebits executes the selection against the lot entities
func (r *SelectionResult) ApplyDebits() error {
	for _, d := range r.Debits {
		if err := d.Lot.Debit(d.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// LotSelector decides which lots satisfy an outbound quantity
type LotSelector interface {
	Select(requested decimal.Decimal, lots []*Lot) (*SelectionResult, error)
}

// SortLotsFIFO orders lots by received time ascending, ties broken by lot
// id ascending. The persistence layer uses the same ordering when locking
// candidate rows, which keeps lock acquisition order deterministic.
func SortLotsFIFO(lots []*Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		if !lots[i].ReceivedAt.Equal(lots[j].ReceivedAt) {
			return lots[i].ReceivedAt.Before(lots[j].ReceivedAt)
		}
		return strings.Compare(lots[i].ID.String(), lots[j].ID.String()) < 0
	})
}

// FIFOLotSelector consumes the oldest-received lots first, splitting across
// lots as needed.
type FIFOLotSelector struct{}

// NewFIFOLotSelector creates a FIFO lot selector
func NewFIFOLotSelector() *FIFOLotSelector {
	return &FIFOLotSelector{}
}

// Select picks lots in FIFO order until the requested quantity is covered.
// Fails with InsufficientStock if total availability falls short; in that
// case nothing is selected.
func (s *FIFOLotSelector) Select(requested decimal.Decimal, lots []*Lot) (*SelectionResult, error) {
	if requested.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}

	candidates := make([]*Lot, 0, len(lots))
	for _, lot := range lots {
		if lot.HasAvailable() {
			candidates = append(candidates, lot)
		}
	}
	SortLotsFIFO(candidates)

	result := &SelectionResult{
		Debits:        make([]LotDebit, 0),
		TotalSelected: decimal.Zero,
	}
	remaining := requested
	for _, lot := range candidates {
		if remaining.IsZero() {
			break
		}
		take := decimal.Min(remaining, lot.QtyAvailable)
		result.Debits = append(result.Debits, LotDebit{Lot: lot, Quantity: take})
		result.TotalSelected = result.TotalSelected.Add(take)
		remaining = remaining.Sub(take)
	}

	if remaining.GreaterThan(decimal.Zero) {
		return nil, shared.ErrInsufficientStock
	}
	return result, nil
}

// SpecifiedLotSelector takes the caller's explicit lot allocations in the
// order given.
type SpecifiedLotSelector struct {
	requests []LotRequest
}

// NewSpecifiedLotSelector creates a selector for explicit lot requests
func NewSpecifiedLotSelector(requests []LotRequest) *SpecifiedLotSelector {
	return &SpecifiedLotSelector{requests: requests}
}

// Select resolves the explicit requests against the candidate lots. The
// requested quantities must cover the total exactly and every named lot
// must have enough availability.
func (s *SpecifiedLotSelector) Select(requested decimal.Decimal, lots []*Lot) (*SelectionResult, error) {
	if requested.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Requested quantity must be positive")
	}
	if len(s.requests) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Explicit lot selection requires at least one lot request")
	}

	byID := make(map[uuid.UUID]*Lot, len(lots))
	for _, lot := range lots {
		byID[lot.ID] = lot
	}

	result := &SelectionResult{
		Debits:        make([]LotDebit, 0, len(s.requests)),
		TotalSelected: decimal.Zero,
	}
	remainingPerLot := make(map[uuid.UUID]decimal.Decimal, len(lots))
	for _, req := range s.requests {
		if req.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Lot request quantity must be positive")
		}
		lot, ok := byID[req.LotID]
		if !ok {
			return nil, shared.ErrNotFound
		}
		available, tracked := remainingPerLot[lot.ID]
		if !tracked {
			available = lot.QtyAvailable
		}
		if req.Quantity.GreaterThan(available) {
			return nil, shared.ErrInsufficientLotQuantity
		}
		remainingPerLot[lot.ID] = available.Sub(req.Quantity)
		result.Debits = append(result.Debits, LotDebit{Lot: lot, Quantity: req.Quantity})
		result.TotalSelected = result.TotalSelected.Add(req.Quantity)
	}

	if !result.TotalSelected.Equal(requested) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Explicit lot quantities must sum to the requested quantity")
	}
	return result, nil
}

// TotalAvailable sums the available quantity across lots
func TotalAvailable(lots []*Lot) decimal.Decimal {
	total := decimal.Zero
	for _, lot := range lots {
		total = total.Add(lot.QtyAvailable)
	}
	return total
}
