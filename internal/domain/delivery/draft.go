package delivery

import (
	"sync"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/shared/valueobject"
)

// BatchSaleDraft is one delivery round being captured: a quantity per
// (client, product), an optional upfront payment per client and a
// session-only set of clients hidden from the round. It is owned by one
// session and guarded by its own mutex.
type BatchSaleDraft struct {
	sync.Mutex
	shared.BaseEntity

	OwnerID string

	routeID    int64
	clients    []RouteClient
	prices     PriceList
	sellers    []Seller
	quantities *QuantityMatrix
	credits    *CreditSheet
	excluded   map[int64]struct{}
	submitting bool
}

// NewBatchSaleDraft opens a round for a route
func NewBatchSaleDraft(ownerID string, routeID int64, clients []RouteClient, products []Product, sellers []Seller) (*BatchSaleDraft, error) {
	if routeID <= 0 {
		return nil, ErrRouteRequired
	}
	d := &BatchSaleDraft{
		BaseEntity: shared.NewBaseEntity(),
		OwnerID:    ownerID,
		sellers:    sellers,
		prices:     NewPriceList(products),
	}
	d.resetRound(routeID, clients)
	return d, nil
}

// ChangeRoute starts a new round for another route. Quantities, credits and
// exclusions belong to the round and are discarded.
func (d *BatchSaleDraft) ChangeRoute(routeID int64, clients []RouteClient) error {
	if routeID <= 0 {
		return ErrRouteRequired
	}
	d.resetRound(routeID, clients)
	d.Touch()
	return nil
}

func (d *BatchSaleDraft) resetRound(routeID int64, clients []RouteClient) {
	d.routeID = routeID
	d.clients = append([]RouteClient(nil), clients...)
	d.quantities = NewQuantityMatrix()
	d.credits = NewCreditSheet()
	d.excluded = make(map[int64]struct{})
}

// RouteID returns the route of the round
func (d *BatchSaleDraft) RouteID() int64 {
	return d.routeID
}

// Prices returns the current price list
func (d *BatchSaleDraft) Prices() PriceList {
	return d.prices
}

// Sellers returns the seller snapshot taken when the round was opened
func (d *BatchSaleDraft) Sellers() []Seller {
	return d.sellers
}

// HasSeller reports whether sellerID is in the seller snapshot. An empty
// snapshot accepts any seller.
func (d *BatchSaleDraft) HasSeller(sellerID int64) bool {
	if len(d.sellers) == 0 {
		return true
	}
	for _, s := range d.sellers {
		if s.ID == sellerID {
			return true
		}
	}
	return false
}

// RefreshPrices replaces the price list; subtotals follow on the next read
func (d *BatchSaleDraft) RefreshPrices(products []Product) {
	d.prices = NewPriceList(products)
	d.Touch()
}

// IsSubmitting returns true while a submission is in flight
func (d *BatchSaleDraft) IsSubmitting() bool {
	return d.submitting
}

func (d *BatchSaleDraft) client(clientID int64) (RouteClient, bool) {
	for _, c := range d.clients {
		if c.ID == clientID {
			return c, true
		}
	}
	return RouteClient{}, false
}

func (d *BatchSaleDraft) editableClient(clientID int64) error {
	if _, ok := d.client(clientID); !ok {
		return ErrClientNotInRoute
	}
	if d.IsExcluded(clientID) {
		return ErrClientExcluded
	}
	return nil
}

// SetQuantity normalizes raw to a non-negative integer and stores it
func (d *BatchSaleDraft) SetQuantity(clientID, productID int64, raw string) (int64, error) {
	if err := d.editableClient(clientID); err != nil {
		return 0, err
	}
	if _, ok := d.prices.Product(productID); !ok {
		return 0, ErrProductNotInPrice
	}
	qty := valueobject.NormalizeQuantity(raw)
	d.quantities.Set(clientID, productID, qty)
	d.Touch()
	return qty, nil
}

// Quantity returns the count for a cell
func (d *BatchSaleDraft) Quantity(clientID, productID int64) int64 {
	return d.quantities.Get(clientID, productID)
}

// Subtotal prices a client's row with the current price list
func (d *BatchSaleDraft) Subtotal(clientID int64) valueobject.Money {
	return d.quantities.Subtotal(clientID, d.prices)
}

// SetCredit normalizes raw to >= 0 and stores it as the client's upfront payment
func (d *BatchSaleDraft) SetCredit(clientID int64, raw string) (valueobject.Money, error) {
	if err := d.editableClient(clientID); err != nil {
		return valueobject.Zero(), err
	}
	amount := d.credits.Set(clientID, raw)
	d.Touch()
	return amount, nil
}

// Credit returns the upfront payment as entered
func (d *BatchSaleDraft) Credit(clientID int64) valueobject.Money {
	return d.credits.Get(clientID)
}

// ResultingBalance is max(0, subtotal - credit) for display
func (d *BatchSaleDraft) ResultingBalance(clientID int64) valueobject.Money {
	return ResultingBalance(d.Subtotal(clientID), d.Credit(clientID))
}

// ClearClient zeroes a client's quantities and credit
func (d *BatchSaleDraft) ClearClient(clientID int64) error {
	if _, ok := d.client(clientID); !ok {
		return ErrClientNotInRoute
	}
	d.quantities.ClearClient(clientID)
	d.credits.Clear(clientID)
	d.Touch()
	return nil
}

// Exclude hides a client from this round only; route membership is untouched
func (d *BatchSaleDraft) Exclude(clientID int64) error {
	if _, ok := d.client(clientID); !ok {
		return ErrClientNotInRoute
	}
	d.excluded[clientID] = struct{}{}
	d.Touch()
	return nil
}

// Include shows a previously hidden client again
func (d *BatchSaleDraft) Include(clientID int64) error {
	if _, ok := d.client(clientID); !ok {
		return ErrClientNotInRoute
	}
	delete(d.excluded, clientID)
	d.Touch()
	return nil
}

// IsExcluded reports whether a client is hidden from this round
func (d *BatchSaleDraft) IsExcluded(clientID int64) bool {
	_, ok := d.excluded[clientID]
	return ok
}

// Clients returns every route member in route order
func (d *BatchSaleDraft) Clients() []RouteClient {
	return append([]RouteClient(nil), d.clients...)
}

// VisibleClients returns route members not hidden from this round
func (d *BatchSaleDraft) VisibleClients() []RouteClient {
	visible := make([]RouteClient, 0, len(d.clients))
	for _, c := range d.clients {
		if !d.IsExcluded(c.ID) {
			visible = append(visible, c)
		}
	}
	return visible
}

// Entries returns one entry per visible client with at least one positive
// line, in route order
func (d *BatchSaleDraft) Entries() []ClientBatchEntry {
	entries := make([]ClientBatchEntry, 0)
	for _, c := range d.VisibleClients() {
		lines := d.quantities.Lines(c.ID, d.prices)
		if len(lines) == 0 {
			continue
		}
		entries = append(entries, ClientBatchEntry{
			ClientID:      c.ID,
			Lines:         lines,
			CreditApplied: d.Credit(c.ID),
		})
	}
	return entries
}

// BeginSubmit marks the draft as submitting; a second call before EndSubmit fails
func (d *BatchSaleDraft) BeginSubmit() error {
	if d.submitting {
		return shared.ErrSubmissionInFlight
	}
	d.submitting = true
	return nil
}

// EndSubmit clears the submitting mark
func (d *BatchSaleDraft) EndSubmit() {
	d.submitting = false
}

// RoundState is the user-editable part of a round
type RoundState struct {
	Quantities *QuantityMatrix
	Credits    *CreditSheet
	Excluded   map[int64]struct{}
}

// Capture deep-copies the user-editable state
func (d *BatchSaleDraft) Capture() RoundState {
	excluded := make(map[int64]struct{}, len(d.excluded))
	for id := range d.excluded {
		excluded[id] = struct{}{}
	}
	return RoundState{
		Quantities: d.quantities.Copy(),
		Credits:    d.credits.Copy(),
		Excluded:   excluded,
	}
}

// Restore puts back a captured state
func (d *BatchSaleDraft) Restore(state RoundState) {
	d.quantities = state.Quantities
	d.credits = state.Credits
	d.excluded = state.Excluded
}

// ClientBatchEntry is what one client takes in a round
type ClientBatchEntry struct {
	ClientID      int64
	Lines         []Line
	CreditApplied valueobject.Money
}

// Subtotal sums the entry's lines
func (e ClientBatchEntry) Subtotal() valueobject.Money {
	total := valueobject.Zero()
	for _, l := range e.Lines {
		total = total.Add(l.Amount())
	}
	return total
}
