package delivery

import (
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/shared/valueobject"
)

// BatchSaleLine is one product line as sent to the back-office
type BatchSaleLine struct {
	ProductoID int64             `json:"producto_id" validate:"required,gt=0"`
	Cantidad   int64             `json:"cantidad" validate:"required,gt=0"`
	PrecioUnit valueobject.Money `json:"precio_unit"`
}

// BatchSaleItem is one client's sale inside a batch
type BatchSaleItem struct {
	ClienteID    int64             `json:"cliente_id" validate:"required,gt=0"`
	MontoACuenta valueobject.Money `json:"monto_a_cuenta"`
	Lineas       []BatchSaleLine   `json:"lineas" validate:"required,min=1,dive"`
}

// BatchSalePayload is the body of POST /ventas/reparto-masiva
type BatchSalePayload struct {
	RepartoID     int64           `json:"reparto_id" validate:"required,gt=0"`
	Fecha         string          `json:"fecha" validate:"required"`
	Tipo          SaleType        `json:"tipo" validate:"required,oneof=contado fiado a_cuenta"`
	VendedorID    int64           `json:"vendedor_id" validate:"required,gt=0"`
	Observaciones *string         `json:"observaciones"`
	Items         []BatchSaleItem `json:"items" validate:"required,min=1,dive"`
}

// BatchDetails is the header a person fills in before submitting a round
type BatchDetails struct {
	SellerID     int64
	SaleType     SaleType
	Date         time.Time
	Observations string
}

// BuildBatchPayload validates the round and assembles one item per visible
// client with at least one positive quantity
func BuildBatchPayload(d *BatchSaleDraft, details BatchDetails, policy CreditPolicy) (*BatchSalePayload, error) {
	if d.RouteID() <= 0 {
		return nil, ErrRouteRequired
	}
	if details.SellerID <= 0 || !d.HasSeller(details.SellerID) {
		return nil, ErrSellerRequired
	}
	if !details.SaleType.IsValid() {
		return nil, ErrInvalidSaleType
	}

	entries := d.Entries()
	if len(entries) == 0 {
		return nil, ErrNoQuantities
	}

	items := make([]BatchSaleItem, 0, len(entries))
	for _, e := range entries {
		lines := make([]BatchSaleLine, 0, len(e.Lines))
		for _, l := range e.Lines {
			lines = append(lines, BatchSaleLine{
				ProductoID: l.ProductID,
				Cantidad:   l.Quantity,
				PrecioUnit: l.UnitPrice,
			})
		}
		items = append(items, BatchSaleItem{
			ClienteID:    e.ClientID,
			MontoACuenta: policy.Transmitted(e.Subtotal(), e.CreditApplied),
			Lineas:       lines,
		})
	}

	var observations *string
	if t := strings.TrimSpace(details.Observations); t != "" {
		observations = &t
	}

	return &BatchSalePayload{
		RepartoID:     d.RouteID(),
		Fecha:         details.Date.Format(time.RFC3339),
		Tipo:          details.SaleType,
		VendedorID:    details.SellerID,
		Observaciones: observations,
		Items:         items,
	}, nil
}

// Total sums every item's lines
func (p *BatchSalePayload) Total() valueobject.Money {
	total := valueobject.Zero()
	for _, item := range p.Items {
		for _, l := range item.Lineas {
			total = total.Add(l.PrecioUnit.MultiplyByInt(l.Cantidad))
		}
	}
	return total
}
