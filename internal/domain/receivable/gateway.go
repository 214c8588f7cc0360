package receivable

import (
	"context"
	"time"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared/valueobject"
)

// Gateway is the back-office API as used by the collections workflow
type Gateway interface {
	// LoadDebt fetches a client's aggregate debt and open invoices
	LoadDebt(ctx context.Context, session identity.Session, clientID int64) (*DebtSnapshot, error)

	// CreateCollection registers a payment; the back-office assigns its ID
	CreateCollection(ctx context.Context, session identity.Session, payload *CollectionPayload) (*CollectionReceipt, error)

	// ListCollections returns a page of registered collections
	ListCollections(ctx context.Context, session identity.Session, filter CollectionFilter) (*CollectionPage, error)

	// GetCollection returns one collection with its applications
	GetCollection(ctx context.Context, session identity.Session, id int64) (*CollectionRecord, error)
}

// CollectionReceipt is the back-office acknowledgement of a created collection
type CollectionReceipt struct {
	ID int64 `json:"id"`
}

// CollectionFilter narrows a collection listing
type CollectionFilter struct {
	ClientID int64
	Page     int
	PageSize int
}

// AppliedInvoice is one application of a registered collection
type AppliedInvoice struct {
	InvoiceID    int64             `json:"venta_id"`
	Amount       valueobject.Money `json:"monto_aplicado"`
	InvoiceDate  *time.Time        `json:"fecha_venta,omitempty"`
	InvoiceTotal valueobject.Money `json:"total_venta"`
}

// CollectionRecord is a collection as stored by the back-office
type CollectionRecord struct {
	ID           int64             `json:"id"`
	ClientID     int64             `json:"cliente_id"`
	ClientName   string            `json:"cliente"`
	SellerID     *int64            `json:"vendedor_id"`
	Date         string            `json:"fecha"`
	Total        valueobject.Money `json:"total_cobrado"`
	Observations *string           `json:"observaciones"`
	Applications []AppliedInvoice  `json:"aplicaciones"`
}

// CollectionPage is one page of collections
type CollectionPage struct {
	Items    []CollectionRecord `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}
