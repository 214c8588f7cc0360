package backoffice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/erp/backoffice/internal/domain/delivery"
	"github.com/erp/backoffice/internal/domain/receivable"
	"github.com/erp/backoffice/internal/domain/shared/valueobject"
)

// errorEnvelope is the body of every non-2xx answer
type errorEnvelope struct {
	Code         string         `json:"code"`
	MensajeError string         `json:"mensajeError"`
	Message      string         `json:"message"`
	Tips         []string       `json:"tips"`
	Details      map[string]any `json:"details"`
}

// decodeBody accepts either the bare payload or a {"data": payload} wrapper.
// This is the only place that tolerates both shapes.
func decodeBody[T any](body []byte) (T, error) {
	var out T
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return out, fmt.Errorf("%w: empty body", ErrInvalidResponse)
	}

	if trimmed[0] == '{' {
		var wrapper struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err == nil && len(wrapper.Data) > 0 && string(wrapper.Data) != "null" {
			if err := json.Unmarshal(wrapper.Data, &out); err == nil {
				return out, nil
			}
		}
	}

	if err := json.Unmarshal(trimmed, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return out, nil
}

// wireDate parses "YYYY-MM-DD" as well as full RFC 3339 timestamps
type wireDate struct {
	time.Time
}

func (d *wireDate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, receivable.DateLayout, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

// ---------------------------------------------------------------------------
// GET /cxc/deuda/{clienteId}
// ---------------------------------------------------------------------------

type clientWire struct {
	ID        int64  `json:"id"`
	Nombre    string `json:"nombre"`
	Documento string `json:"documento"`
	Barrio    *struct {
		Nombre string `json:"nombre"`
	} `json:"barrio"`
}

func (c clientWire) toClient() receivable.Client {
	client := receivable.Client{ID: c.ID, Name: c.Nombre, Document: c.Documento}
	if c.Barrio != nil {
		client.Neighborhood = c.Barrio.Nombre
	}
	return client
}

type openInvoiceWire struct {
	ID         int64             `json:"id"`
	Fecha      wireDate          `json:"fecha"`
	TotalVenta valueobject.Money `json:"total_venta"`
	Cobrado    valueobject.Money `json:"cobrado"`
	Saldo      valueobject.Money `json:"saldo"`
	DiasAtraso int               `json:"dias_atraso"`
}

type debtResponse struct {
	Cliente          clientWire        `json:"cliente"`
	TotalDeuda       valueobject.Money `json:"total_deuda"`
	VentasPendientes []openInvoiceWire `json:"ventas_pendientes"`
}

func (r debtResponse) toSnapshot() *receivable.DebtSnapshot {
	invoices := make([]receivable.OpenInvoice, 0, len(r.VentasPendientes))
	for _, v := range r.VentasPendientes {
		invoices = append(invoices, receivable.OpenInvoice{
			ID:          v.ID,
			Date:        v.Fecha.Time,
			TotalAmount: v.TotalVenta,
			AmountPaid:  v.Cobrado,
			Balance:     v.Saldo,
			DaysOverdue: v.DiasAtraso,
		})
	}
	return receivable.NewDebtSnapshot(r.Cliente.toClient(), r.TotalDeuda, invoices)
}

// ---------------------------------------------------------------------------
// /cobranzas_clientes
// ---------------------------------------------------------------------------

type createdResponse struct {
	ID int64 `json:"id"`
}

type applicationWire struct {
	VentaID       int64             `json:"venta_id"`
	MontoAplicado valueobject.Money `json:"monto_aplicado"`
	Venta         *struct {
		ID         int64             `json:"id"`
		Fecha      wireDate          `json:"fecha"`
		TotalVenta valueobject.Money `json:"total_venta"`
	} `json:"venta"`
}

type collectionWire struct {
	ID            int64             `json:"id"`
	ClienteID     int64             `json:"cliente_id"`
	Cliente       *clientWire       `json:"cliente"`
	VendedorID    *int64            `json:"vendedor_id"`
	Fecha         wireDate          `json:"fecha"`
	TotalCobrado  valueobject.Money `json:"total_cobrado"`
	Observaciones *string           `json:"observaciones"`
	Aplicaciones  []applicationWire `json:"aplicaciones"`
}

func (c collectionWire) toRecord() receivable.CollectionRecord {
	rec := receivable.CollectionRecord{
		ID:           c.ID,
		ClientID:     c.ClienteID,
		SellerID:     c.VendedorID,
		Total:        c.TotalCobrado,
		Observations: c.Observaciones,
		Applications: make([]receivable.AppliedInvoice, 0, len(c.Aplicaciones)),
	}
	if !c.Fecha.IsZero() {
		rec.Date = c.Fecha.Format(receivable.DateLayout)
	}
	if c.Cliente != nil {
		rec.ClientName = c.Cliente.Nombre
		if rec.ClientID == 0 {
			rec.ClientID = c.Cliente.ID
		}
	}
	for _, a := range c.Aplicaciones {
		applied := receivable.AppliedInvoice{InvoiceID: a.VentaID, Amount: a.MontoAplicado}
		if a.Venta != nil {
			if applied.InvoiceID == 0 {
				applied.InvoiceID = a.Venta.ID
			}
			if !a.Venta.Fecha.IsZero() {
				date := a.Venta.Fecha.Time
				applied.InvoiceDate = &date
			}
			applied.InvoiceTotal = a.Venta.TotalVenta
		}
		rec.Applications = append(rec.Applications, applied)
	}
	return rec
}

type collectionListResponse struct {
	Items []collectionWire `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// decodeCollectionList accepts {data: [...], total, page, limit}, a bare
// array, or {items: [...]} and normalizes them to one page
func decodeCollectionList(body []byte, filter receivable.CollectionFilter) (*receivable.CollectionPage, error) {
	trimmed := bytes.TrimSpace(body)
	var list collectionListResponse

	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &list.Items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	default:
		var paged struct {
			collectionListResponse
			Data []collectionWire `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &paged); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		list = paged.collectionListResponse
		if len(paged.Data) > 0 {
			list.Items = paged.Data
		}
	}

	page := &receivable.CollectionPage{
		Items:    make([]receivable.CollectionRecord, 0, len(list.Items)),
		Total:    list.Total,
		Page:     list.Page,
		PageSize: list.Limit,
	}
	for _, item := range list.Items {
		page.Items = append(page.Items, item.toRecord())
	}
	if page.Total == 0 {
		page.Total = int64(len(page.Items))
	}
	if page.Page == 0 {
		page.Page = filter.Page
	}
	if page.PageSize == 0 {
		page.PageSize = filter.PageSize
	}
	return page, nil
}

// ---------------------------------------------------------------------------
// Master data and batch sales
// ---------------------------------------------------------------------------

// routeMemberWire is either a client row or a membership row with a nested client
type routeMemberWire struct {
	clientWire
	ClienteID int64       `json:"cliente_id"`
	Cliente   *clientWire `json:"cliente"`
}

func (m routeMemberWire) toRouteClient() delivery.RouteClient {
	c := m.clientWire
	if m.Cliente != nil {
		c = *m.Cliente
	}
	if c.ID == 0 {
		c.ID = m.ClienteID
	}
	rc := delivery.RouteClient{ID: c.ID, Name: c.Nombre, Document: c.Documento}
	if c.Barrio != nil {
		rc.Neighborhood = c.Barrio.Nombre
	}
	return rc
}

type productWire struct {
	ID     int64             `json:"id"`
	Nombre string            `json:"nombre"`
	Precio valueobject.Money `json:"precio"`
}

type sellerWire struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

type batchSaleResponse struct {
	Ventas []struct {
		ID int64 `json:"id"`
	} `json:"ventas"`
	Cantidad int `json:"cantidad"`
}

func (r batchSaleResponse) toReceipt() *delivery.BatchSaleReceipt {
	receipt := &delivery.BatchSaleReceipt{SaleIDs: make([]int64, 0, len(r.Ventas)), Count: r.Cantidad}
	for _, v := range r.Ventas {
		receipt.SaleIDs = append(receipt.SaleIDs, v.ID)
	}
	if receipt.Count == 0 {
		receipt.Count = len(receipt.SaleIDs)
	}
	return receipt
}
