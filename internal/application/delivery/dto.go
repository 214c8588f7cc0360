package delivery

import (
	"time"

	"github.com/google/uuid"

	"github.com/erp/backoffice/internal/domain/delivery"
	"github.com/erp/backoffice/internal/domain/shared/valueobject"
)

// ProductView is one column of the round matrix
type ProductView struct {
	ID        int64             `json:"producto_id"`
	Name      string            `json:"nombre"`
	UnitPrice valueobject.Money `json:"precio"`
}

// SellerView is a seller the round can be attributed to
type SellerView struct {
	ID   int64  `json:"vendedor_id"`
	Name string `json:"nombre"`
}

// ClientRowView is one row of the round matrix
type ClientRowView struct {
	ID               int64             `json:"cliente_id"`
	Name             string            `json:"nombre"`
	Document         string            `json:"documento,omitempty"`
	Neighborhood     string            `json:"barrio,omitempty"`
	Excluded         bool              `json:"excluido"`
	Quantities       map[int64]int64   `json:"cantidades"`
	Subtotal         valueobject.Money `json:"subtotal"`
	Credit           valueobject.Money `json:"a_cuenta"`
	ResultingBalance valueobject.Money `json:"saldo_resultante"`
}

// TotalsView sums the visible rows
type TotalsView struct {
	Subtotal         valueobject.Money `json:"subtotal"`
	Credit           valueobject.Money `json:"a_cuenta"`
	ResultingBalance valueobject.Money `json:"saldo_resultante"`
	Units            int64             `json:"unidades"`
	ClientsWithSale  int               `json:"clientes_con_venta"`
}

// BatchView is the recomputed state of a batch draft
type BatchView struct {
	ID         uuid.UUID           `json:"id"`
	RouteID    int64               `json:"reparto_id"`
	SaleTypes  []delivery.SaleType `json:"tipos_venta"`
	Products   []ProductView       `json:"productos"`
	Sellers    []SellerView        `json:"vendedores"`
	Clients    []ClientRowView     `json:"clientes"`
	Totals     TotalsView          `json:"totales"`
	Submitting bool                `json:"enviando"`
}

// SubmitInput is the header of a batch submission
type SubmitInput struct {
	SellerID     int64
	SaleType     delivery.SaleType
	Date         *time.Time
	Observations string
}

// SubmitResult is returned after the back-office accepted a batch. The
// draft is closed and the caller must reload the route.
type SubmitResult struct {
	SaleIDs      []int64           `json:"ventas"`
	Count        int               `json:"cantidad"`
	Total        valueobject.Money `json:"total"`
	RefreshRoute bool              `json:"refrescar_reparto"`
}

// newBatchView renders d. The caller holds d's lock.
func newBatchView(d *delivery.BatchSaleDraft) *BatchView {
	products := d.Prices().Products()
	view := &BatchView{
		ID:         d.ID,
		RouteID:    d.RouteID(),
		SaleTypes:  delivery.AllSaleTypes(),
		Products:   make([]ProductView, 0, len(products)),
		Sellers:    make([]SellerView, 0, len(d.Sellers())),
		Clients:    make([]ClientRowView, 0),
		Submitting: d.IsSubmitting(),
		Totals: TotalsView{
			Subtotal:         valueobject.Zero(),
			Credit:           valueobject.Zero(),
			ResultingBalance: valueobject.Zero(),
		},
	}
	for _, p := range products {
		view.Products = append(view.Products, ProductView{ID: p.ID, Name: p.Name, UnitPrice: p.UnitPrice})
	}
	for _, s := range d.Sellers() {
		view.Sellers = append(view.Sellers, SellerView{ID: s.ID, Name: s.Name})
	}

	for _, c := range d.Clients() {
		row := ClientRowView{
			ID:               c.ID,
			Name:             c.Name,
			Document:         c.Document,
			Neighborhood:     c.Neighborhood,
			Excluded:         d.IsExcluded(c.ID),
			Quantities:       make(map[int64]int64),
			Subtotal:         d.Subtotal(c.ID),
			Credit:           d.Credit(c.ID),
			ResultingBalance: d.ResultingBalance(c.ID),
		}
		var units int64
		for _, p := range products {
			if q := d.Quantity(c.ID, p.ID); q > 0 {
				row.Quantities[p.ID] = q
				units += q
			}
		}
		view.Clients = append(view.Clients, row)

		if row.Excluded {
			continue
		}
		view.Totals.Subtotal = view.Totals.Subtotal.Add(row.Subtotal)
		view.Totals.Credit = view.Totals.Credit.Add(row.Credit)
		view.Totals.ResultingBalance = view.Totals.ResultingBalance.Add(row.ResultingBalance)
		view.Totals.Units += units
		if units > 0 {
			view.Totals.ClientsWithSale++
		}
	}
	return view
}
