package receivable

import (
	"github.com/erp/backoffice/internal/domain/shared/valueobject"
)

// Allocation is the part of a payment applied to one open invoice
type Allocation struct {
	InvoiceID     int64
	AmountApplied valueobject.Money
}

// AllocationSheet keeps the amounts a user wants to apply to each open
// invoice of a snapshot. Amounts are stored as entered (after normalization)
// and capped by the invoice's current balance on every read, so a refresh
// that lowers a balance can never leak an over-allocation.
type AllocationSheet struct {
	snapshot *DebtSnapshot
	amounts  map[int64]valueobject.Money
}

// NewAllocationSheet creates an empty sheet over snapshot (which may be nil
// while the first load is pending)
func NewAllocationSheet(snapshot *DebtSnapshot) *AllocationSheet {
	return &AllocationSheet{
		snapshot: snapshot,
		amounts:  make(map[int64]valueobject.Money),
	}
}

// Snapshot returns the debt snapshot the sheet allocates against
func (s *AllocationSheet) Snapshot() *DebtSnapshot {
	return s.snapshot
}

// Reset swaps in a freshly loaded snapshot and discards every edit
func (s *AllocationSheet) Reset(snapshot *DebtSnapshot) {
	s.snapshot = snapshot
	s.Clear()
}

// Clear discards every edit
func (s *AllocationSheet) Clear() {
	s.amounts = make(map[int64]valueobject.Money)
}

// Set normalizes raw to [0, balance] and stores it for the invoice
func (s *AllocationSheet) Set(invoiceID int64, raw string) (valueobject.Money, error) {
	inv, ok := s.snapshot.Invoice(invoiceID)
	if !ok {
		return valueobject.Zero(), ErrInvoiceNotFound
	}
	amount := valueobject.Normalize(raw, valueobject.UpTo(inv.Balance))
	s.store(invoiceID, amount)
	return amount, nil
}

// FillAll allocates each invoice's full balance
func (s *AllocationSheet) FillAll() {
	if s.snapshot == nil {
		return
	}
	for _, inv := range s.snapshot.Invoices {
		s.store(inv.ID, inv.Balance)
	}
}

// Applied returns the amount applied to an invoice, capped by its current balance
func (s *AllocationSheet) Applied(invoiceID int64) valueobject.Money {
	inv, ok := s.snapshot.Invoice(invoiceID)
	if !ok {
		return valueobject.Zero()
	}
	return s.amounts[invoiceID].Clamp(valueobject.Zero(), inv.Balance)
}

// Total sums every positive applied amount
func (s *AllocationSheet) Total() valueobject.Money {
	total := valueobject.Zero()
	for _, a := range s.Allocations() {
		total = total.Add(a.AmountApplied)
	}
	return total
}

// ResultingBalance is the debt left after the payment, never negative
func (s *AllocationSheet) ResultingBalance() valueobject.Money {
	if s.snapshot == nil {
		return valueobject.Zero()
	}
	return s.snapshot.TotalDebt.Subtract(s.Total()).FloorZero()
}

// Allocations returns the positive allocations in snapshot order
func (s *AllocationSheet) Allocations() []Allocation {
	if s.snapshot == nil {
		return nil
	}
	allocations := make([]Allocation, 0, len(s.amounts))
	for _, inv := range s.snapshot.Invoices {
		applied := s.Applied(inv.ID)
		if !applied.IsPositive() {
			continue
		}
		allocations = append(allocations, Allocation{
			InvoiceID:     inv.ID,
			AmountApplied: applied,
		})
	}
	return allocations
}

// Amounts returns a copy of the stored amounts
func (s *AllocationSheet) Amounts() map[int64]valueobject.Money {
	out := make(map[int64]valueobject.Money, len(s.amounts))
	for id, amount := range s.amounts {
		out[id] = amount
	}
	return out
}

// Restore replaces the stored amounts with a previously captured copy
func (s *AllocationSheet) Restore(amounts map[int64]valueobject.Money) {
	s.amounts = make(map[int64]valueobject.Money, len(amounts))
	for id, amount := range amounts {
		s.amounts[id] = amount
	}
}

func (s *AllocationSheet) store(invoiceID int64, amount valueobject.Money) {
	if amount.IsZero() {
		delete(s.amounts, invoiceID)
		return
	}
	s.amounts[invoiceID] = amount
}
