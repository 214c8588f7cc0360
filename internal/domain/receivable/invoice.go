package receivable

import (
	"time"

	"github.com/erp/backoffice/internal/domain/shared/valueobject"
)

// Client is the debtor a collection is registered for
type Client struct {
	ID           int64
	Name         string
	Document     string
	Neighborhood string
}

// OpenInvoice is a partially paid credit sale ("venta fiado") owned by the
// back-office. It is read-only here and replaced wholesale on every load.
type OpenInvoice struct {
	ID          int64
	Date        time.Time
	TotalAmount valueobject.Money
	AmountPaid  valueobject.Money
	Balance     valueobject.Money
	DaysOverdue int
}

// IsOverdue returns true if the invoice is past due
func (i OpenInvoice) IsOverdue() bool {
	return i.DaysOverdue > 0
}

// DebtSnapshot is the client's debt as reported by the back-office at load time
type DebtSnapshot struct {
	Client    Client
	TotalDebt valueobject.Money
	Invoices  []OpenInvoice
	LoadedAt  time.Time
}

// NewDebtSnapshot builds a snapshot, flooring negative balances at zero so
// that the allocation cap can never go negative
func NewDebtSnapshot(client Client, totalDebt valueobject.Money, invoices []OpenInvoice) *DebtSnapshot {
	normalized := make([]OpenInvoice, len(invoices))
	for i, inv := range invoices {
		inv.Balance = inv.Balance.FloorZero()
		normalized[i] = inv
	}
	return &DebtSnapshot{
		Client:    client,
		TotalDebt: totalDebt.FloorZero(),
		Invoices:  normalized,
		LoadedAt:  time.Now(),
	}
}

// Invoice finds an open invoice by ID
func (s *DebtSnapshot) Invoice(id int64) (OpenInvoice, bool) {
	if s == nil {
		return OpenInvoice{}, false
	}
	for _, inv := range s.Invoices {
		if inv.ID == id {
			return inv, true
		}
	}
	return OpenInvoice{}, false
}

// BalanceSum adds up the balances of all open invoices
func (s *DebtSnapshot) BalanceSum() valueobject.Money {
	if s == nil {
		return valueobject.Zero()
	}
	total := valueobject.Zero()
	for _, inv := range s.Invoices {
		total = total.Add(inv.Balance)
	}
	return total
}
