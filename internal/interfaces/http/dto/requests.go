package dto

import "time"

// OpenCollectionRequest opens a collection draft for a client
type OpenCollectionRequest struct {
	ClientID int64 `json:"cliente_id" binding:"required,gt=0"`
}

// SwitchClientRequest points a collection draft at another client
type SwitchClientRequest struct {
	ClientID int64 `json:"cliente_id" binding:"required,gt=0"`
}

// AmountRequest carries a raw amount exactly as typed, e.g. "1.234,50"
type AmountRequest struct {
	Raw string `json:"valor" binding:"max=32"`
}

// CollectionDetailsRequest sets the optional seller and observations
type CollectionDetailsRequest struct {
	SellerID     *int64 `json:"vendedor_id" binding:"omitempty,gt=0"`
	Observations string `json:"observaciones" binding:"max=500"`
}

// SubmitCollectionRequest must carry confirmado=true
type SubmitCollectionRequest struct {
	Confirmed bool `json:"confirmado"`
}

// ListCollectionsRequest filters the collection listing
type ListCollectionsRequest struct {
	ClientID int64 `form:"cliente_id" binding:"omitempty,gt=0"`
	Page     int   `form:"page" binding:"omitempty,min=1"`
	PageSize int   `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// QuantityRequest sets one cell of a round
type QuantityRequest struct {
	ClientID  int64  `json:"cliente_id" binding:"required,gt=0"`
	ProductID int64  `json:"producto_id" binding:"required,gt=0"`
	Raw       string `json:"valor" binding:"max=16"`
}

// ChangeRouteRequest moves a batch draft to another route
type ChangeRouteRequest struct {
	RouteID int64 `json:"reparto_id" binding:"required,gt=0"`
}

// SubmitBatchRequest is the header of a batch submission
type SubmitBatchRequest struct {
	SellerID     int64      `json:"vendedor_id" binding:"required,gt=0"`
	SaleType     string     `json:"tipo" binding:"required,oneof=contado fiado a_cuenta"`
	Date         *time.Time `json:"fecha"`
	Observations string     `json:"observaciones" binding:"max=500"`
}
