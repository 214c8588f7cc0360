package receivable

import "github.com/erp/backoffice/internal/domain/shared"

// Collection errors
var (
	ErrInvoiceNotFound  = shared.NewDomainError("INVOICE_NOT_FOUND", "La venta no pertenece a la deuda del cliente")
	ErrSnapshotNotReady = shared.NewDomainError("SNAPSHOT_NOT_READY", "La deuda del cliente todavía no se cargó")
	ErrNothingAllocated = shared.NewDomainError("NOTHING_ALLOCATED", "Ingresá un monto a cobrar en al menos una venta")
	ErrTotalTooSmall    = shared.NewDomainError("TOTAL_TOO_SMALL", "El total a cobrar debe ser mayor a cero")
	ErrClientRequired   = shared.NewDomainError("CLIENT_REQUIRED", "Seleccioná un cliente")
)
