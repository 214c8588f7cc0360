package collection

import (
	"github.com/google/uuid"

	"github.com/erp/backoffice/internal/domain/receivable"
	"github.com/erp/backoffice/internal/domain/shared/valueobject"
)

// InvoiceView is one open invoice with the amount currently applied to it
type InvoiceView struct {
	ID          int64             `json:"venta_id"`
	Date        string            `json:"fecha"`
	Total       valueobject.Money `json:"total"`
	Paid        valueobject.Money `json:"pagado"`
	Balance     valueobject.Money `json:"saldo"`
	DaysOverdue int               `json:"dias_vencida"`
	Overdue     bool              `json:"vencida"`
	Applied     valueobject.Money `json:"monto_aplicado"`
}

// DraftView is the recomputed state of a collection draft
type DraftView struct {
	ID               uuid.UUID         `json:"id"`
	ClientID         int64             `json:"cliente_id"`
	ClientName       string            `json:"cliente"`
	State            string            `json:"estado"`
	Error            string            `json:"error,omitempty"`
	TotalDebt        valueobject.Money `json:"deuda_total"`
	Invoices         []InvoiceView     `json:"ventas"`
	TotalApplied     valueobject.Money `json:"total_a_cobrar"`
	TotalAppliedText string            `json:"total_a_cobrar_texto"`
	ResultingBalance valueobject.Money `json:"saldo_resultante"`
	SellerID         *int64            `json:"vendedor_id"`
	Observations     string            `json:"observaciones"`
	Submitting       bool              `json:"enviando"`
}

// SubmitResult is returned after the back-office accepted a collection
type SubmitResult struct {
	CollectionID int64                   `json:"cobranza_id"`
	Confirmation receivable.Confirmation `json:"confirmacion"`
	Draft        *DraftView              `json:"borrador"`
}

// newDraftView renders d. The caller holds d's lock.
func newDraftView(d *receivable.CollectionDraft) *DraftView {
	sheet := d.Sheet()
	view := &DraftView{
		ID:               d.ID,
		ClientID:         d.ClientID,
		State:            d.State().String(),
		Error:            d.LoadError(),
		TotalDebt:        valueobject.Zero(),
		Invoices:         []InvoiceView{},
		TotalApplied:     sheet.Total(),
		ResultingBalance: sheet.ResultingBalance(),
		SellerID:         d.SellerID,
		Observations:     d.Observations,
		Submitting:       d.IsSubmitting(),
	}
	view.TotalAppliedText = valueobject.Format(view.TotalApplied)

	snapshot := d.Snapshot()
	if snapshot == nil {
		return view
	}
	view.ClientName = snapshot.Client.Name
	view.TotalDebt = snapshot.TotalDebt
	for _, inv := range snapshot.Invoices {
		view.Invoices = append(view.Invoices, InvoiceView{
			ID:          inv.ID,
			Date:        inv.Date.Format(receivable.DateLayout),
			Total:       inv.TotalAmount,
			Paid:        inv.AmountPaid,
			Balance:     inv.Balance,
			DaysOverdue: inv.DaysOverdue,
			Overdue:     inv.IsOverdue(),
			Applied:     sheet.Applied(inv.ID),
		})
	}
	return view
}
