package delivery

import (
	"context"

	"github.com/erp/backoffice/internal/domain/identity"
)

// Gateway is the back-office API as used by the batch-sale workflow
type Gateway interface {
	// RouteClients returns the clients assigned to a route, in route order
	RouteClients(ctx context.Context, session identity.Session, routeID int64) ([]RouteClient, error)

	// Products returns the product master with current prices
	Products(ctx context.Context, session identity.Session) ([]Product, error)

	// Sellers returns the active sellers
	Sellers(ctx context.Context, session identity.Session) ([]Seller, error)

	// CreateBatchSale submits a whole round in one request
	CreateBatchSale(ctx context.Context, session identity.Session, payload *BatchSalePayload) (*BatchSaleReceipt, error)
}

// BatchSaleReceipt is the back-office acknowledgement of a batch
type BatchSaleReceipt struct {
	SaleIDs []int64 `json:"ventas"`
	Count   int     `json:"cantidad"`
}
