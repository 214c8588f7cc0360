package delivery

import "github.com/erp/backoffice/internal/domain/shared"

// Batch sale errors
var (
	ErrRouteRequired     = shared.NewDomainError("ROUTE_REQUIRED", "Seleccioná un reparto")
	ErrSellerRequired    = shared.NewDomainError("SELLER_REQUIRED", "Seleccioná un vendedor")
	ErrInvalidSaleType   = shared.NewDomainError("INVALID_SALE_TYPE", "Tipo de venta inválido")
	ErrNoQuantities      = shared.NewDomainError("NO_QUANTITIES", "Cargá al menos una cantidad para algún cliente")
	ErrClientNotInRoute  = shared.NewDomainError("CLIENT_NOT_IN_ROUTE", "El cliente no pertenece al reparto")
	ErrClientExcluded    = shared.NewDomainError("CLIENT_EXCLUDED", "El cliente está oculto en esta vuelta")
	ErrProductNotInPrice = shared.NewDomainError("PRODUCT_NOT_IN_PRICE_LIST", "El producto no está en la lista de precios")
)
