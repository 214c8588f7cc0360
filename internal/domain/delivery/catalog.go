package delivery

import (
	"github.com/erp/backoffice/internal/domain/shared/valueobject"
)

// Product is a catalog entry as priced at the moment the list was fetched
type Product struct {
	ID        int64
	Name      string
	UnitPrice valueobject.Money
}

// RouteClient is a client assigned to a delivery route
type RouteClient struct {
	ID           int64
	Name         string
	Document     string
	Neighborhood string
}

// Seller is a salesperson a batch can be attributed to
type Seller struct {
	ID   int64
	Name string
}

// PriceList is an ordered, read-only product snapshot
type PriceList struct {
	order []int64
	byID  map[int64]Product
}

// NewPriceList indexes products, keeping the first occurrence of duplicated IDs
func NewPriceList(products []Product) PriceList {
	pl := PriceList{
		order: make([]int64, 0, len(products)),
		byID:  make(map[int64]Product, len(products)),
	}
	for _, p := range products {
		if _, dup := pl.byID[p.ID]; dup {
			continue
		}
		pl.order = append(pl.order, p.ID)
		pl.byID[p.ID] = p
	}
	return pl
}

// Product looks up a product by ID
func (pl PriceList) Product(id int64) (Product, bool) {
	p, ok := pl.byID[id]
	return p, ok
}

// UnitPrice returns the current price of a product
func (pl PriceList) UnitPrice(id int64) (valueobject.Money, bool) {
	p, ok := pl.byID[id]
	return p.UnitPrice, ok
}

// Products returns the products in catalog order
func (pl PriceList) Products() []Product {
	out := make([]Product, 0, len(pl.order))
	for _, id := range pl.order {
		out = append(out, pl.byID[id])
	}
	return out
}

// Len returns the number of products
func (pl PriceList) Len() int {
	return len(pl.order)
}
