package receivable

import (
	"fmt"
	"time"

	"github.com/erp/backoffice/internal/domain/shared/valueobject"
)

// DateLayout is the calendar date format the back-office expects for collections
const DateLayout = "2006-01-02"

// PaymentApplication is one allocation as sent to the back-office
type PaymentApplication struct {
	VentaID       int64             `json:"venta_id"`
	MontoAplicado valueobject.Money `json:"monto_aplicado"`
}

// CollectionPayload is the body of POST /cobranzas_clientes
type CollectionPayload struct {
	ClienteID     int64                `json:"cliente_id"`
	VendedorID    *int64               `json:"vendedor_id"`
	Fecha         string               `json:"fecha"`
	TotalCobrado  valueobject.Money    `json:"total_cobrado"`
	Observaciones *string              `json:"observaciones"`
	Aplicaciones  []PaymentApplication `json:"aplicaciones"`
}

// PaymentRules holds the submission thresholds
type PaymentRules struct {
	// MinTotal is the smallest total that may be submitted
	MinTotal valueobject.Money
}

// DefaultPaymentRules requires at least one cent
func DefaultPaymentRules() PaymentRules {
	return PaymentRules{MinTotal: valueobject.Cents(1)}
}

// BuildPayload validates the draft and assembles the collection payload.
// Only positive allocations are included and the total is the sum of exactly
// those allocations.
func BuildPayload(d *CollectionDraft, today time.Time, rules PaymentRules) (*CollectionPayload, error) {
	if d.State() != LoadStateReady {
		return nil, ErrSnapshotNotReady
	}

	allocations := d.Sheet().Allocations()
	if len(allocations) == 0 {
		return nil, ErrNothingAllocated
	}

	total := valueobject.Zero()
	applications := make([]PaymentApplication, 0, len(allocations))
	for _, a := range allocations {
		total = total.Add(a.AmountApplied)
		applications = append(applications, PaymentApplication{
			VentaID:       a.InvoiceID,
			MontoAplicado: a.AmountApplied,
		})
	}
	if total.LessThan(rules.MinTotal) || !total.IsPositive() {
		return nil, ErrTotalTooSmall
	}

	var seller *int64
	if d.SellerID != nil {
		id := *d.SellerID
		seller = &id
	}

	return &CollectionPayload{
		ClienteID:     d.ClientID,
		VendedorID:    seller,
		Fecha:         today.Format(DateLayout),
		TotalCobrado:  total,
		Observaciones: trimmedOrNil(d.Observations),
		Aplicaciones:  applications,
	}, nil
}

// Confirmation is the summary a person accepts before the payment is sent
type Confirmation struct {
	ClientName   string            `json:"cliente"`
	Amount       valueobject.Money `json:"monto"`
	AmountText   string            `json:"monto_texto"`
	InvoiceCount int               `json:"ventas"`
	Message      string            `json:"mensaje"`
}

// Confirm builds the confirmation summary for a payload
func Confirm(snapshot *DebtSnapshot, payload *CollectionPayload) Confirmation {
	name := ""
	if snapshot != nil {
		name = snapshot.Client.Name
	}
	count := len(payload.Aplicaciones)
	noun := "ventas"
	if count == 1 {
		noun = "venta"
	}
	amountText := valueobject.Format(payload.TotalCobrado)
	return Confirmation{
		ClientName:   name,
		Amount:       payload.TotalCobrado,
		AmountText:   amountText,
		InvoiceCount: count,
		Message:      fmt.Sprintf("¿Registrar cobranza de %s a %s aplicada a %d %s?", amountText, name, count, noun),
	}
}
