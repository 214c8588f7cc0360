package delivery

import (
	"github.com/erp/backoffice/internal/domain/shared/valueobject"
)

// QuantityMatrix holds unit counts keyed by (client, product). Only positive
// counts are stored.
type QuantityMatrix struct {
	cells map[int64]map[int64]int64
}

// NewQuantityMatrix creates an empty matrix
func NewQuantityMatrix() *QuantityMatrix {
	return &QuantityMatrix{cells: make(map[int64]map[int64]int64)}
}

// Set stores a count; zero removes the cell
func (m *QuantityMatrix) Set(clientID, productID, quantity int64) {
	row := m.cells[clientID]
	if quantity <= 0 {
		if row != nil {
			delete(row, productID)
			if len(row) == 0 {
				delete(m.cells, clientID)
			}
		}
		return
	}
	if row == nil {
		row = make(map[int64]int64)
		m.cells[clientID] = row
	}
	row[productID] = quantity
}

// Get returns the count for a cell
func (m *QuantityMatrix) Get(clientID, productID int64) int64 {
	return m.cells[clientID][productID]
}

// ClearClient removes a client's row
func (m *QuantityMatrix) ClearClient(clientID int64) {
	delete(m.cells, clientID)
}

// Subtotal prices a client's row with the given list. Products missing from
// the list contribute nothing.
func (m *QuantityMatrix) Subtotal(clientID int64, prices PriceList) valueobject.Money {
	total := valueobject.Zero()
	for productID, qty := range m.cells[clientID] {
		price, ok := prices.UnitPrice(productID)
		if !ok {
			continue
		}
		total = total.Add(price.MultiplyByInt(qty))
	}
	return total
}

// Lines returns the client's positive lines in price-list order, priced at
// the list's current unit price
func (m *QuantityMatrix) Lines(clientID int64, prices PriceList) []Line {
	row := m.cells[clientID]
	if len(row) == 0 {
		return nil
	}
	lines := make([]Line, 0, len(row))
	for _, p := range prices.Products() {
		qty := row[p.ID]
		if qty <= 0 {
			continue
		}
		lines = append(lines, Line{
			ClientID:  clientID,
			ProductID: p.ID,
			Quantity:  qty,
			UnitPrice: p.UnitPrice,
		})
	}
	return lines
}

// Copy returns a deep copy
func (m *QuantityMatrix) Copy() *QuantityMatrix {
	out := NewQuantityMatrix()
	for clientID, row := range m.cells {
		for productID, qty := range row {
			out.Set(clientID, productID, qty)
		}
	}
	return out
}

// Line is one (client, product, quantity) cell priced for submission
type Line struct {
	ClientID  int64
	ProductID int64
	Quantity  int64
	UnitPrice valueobject.Money
}

// Amount returns quantity × unit price
func (l Line) Amount() valueobject.Money {
	return l.UnitPrice.MultiplyByInt(l.Quantity)
}
