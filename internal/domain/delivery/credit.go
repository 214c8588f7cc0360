package delivery

import (
	"github.com/erp/backoffice/internal/domain/shared/valueobject"
)

// CreditSheet holds the upfront payment ("a cuenta") entered per client.
// Amounts are non-negative and not capped by the client's subtotal.
type CreditSheet struct {
	amounts map[int64]valueobject.Money
}

// NewCreditSheet creates an empty sheet
func NewCreditSheet() *CreditSheet {
	return &CreditSheet{amounts: make(map[int64]valueobject.Money)}
}

// Set normalizes raw to >= 0 and stores it
func (c *CreditSheet) Set(clientID int64, raw string) valueobject.Money {
	amount := valueobject.Normalize(raw, valueobject.NonNegative())
	if amount.IsZero() {
		delete(c.amounts, clientID)
	} else {
		c.amounts[clientID] = amount
	}
	return amount
}

// Get returns the credit as entered
func (c *CreditSheet) Get(clientID int64) valueobject.Money {
	return c.amounts[clientID]
}

// Clear removes a client's credit
func (c *CreditSheet) Clear(clientID int64) {
	delete(c.amounts, clientID)
}

// Copy returns a deep copy
func (c *CreditSheet) Copy() *CreditSheet {
	out := NewCreditSheet()
	for id, amount := range c.amounts {
		out.amounts[id] = amount
	}
	return out
}

// ResultingBalance is what the client still owes after the credit, never negative
func ResultingBalance(subtotal, credit valueobject.Money) valueobject.Money {
	return subtotal.Subtract(credit).FloorZero()
}

// CreditPolicy decides what is transmitted as monto_a_cuenta
type CreditPolicy struct {
	// ClampToSubtotal sends min(credit, subtotal) instead of the credit as entered
	ClampToSubtotal bool
}

// Transmitted returns the amount to send for a client
func (p CreditPolicy) Transmitted(subtotal, credit valueobject.Money) valueobject.Money {
	if !credit.IsPositive() {
		return valueobject.Zero()
	}
	if p.ClampToSubtotal {
		return credit.Min(subtotal)
	}
	return credit
}
