package router

import (
	"github.com/erp/backoffice/internal/interfaces/http/handler"
)

// Handlers groups the handlers mounted under the API prefix
type Handlers struct {
	Collection *handler.CollectionHandler
	Delivery   *handler.DeliveryHandler
	Session    *handler.SessionHandler
	System     *handler.SystemHandler
}

// CollectionRoutes returns the collection draft and history routes
func CollectionRoutes(h *handler.CollectionHandler) *DomainGroup {
	g := NewDomainGroup("cobranzas", "/cobranzas")
	g.GET("", h.List)
	g.GET("/:id", h.Detail)

	drafts := g.Group("borradores", "/borradores")
	drafts.POST("", h.Open)
	drafts.GET("/:id", h.Get)
	drafts.DELETE("/:id", h.Close)
	drafts.PUT("/:id/cliente", h.SwitchClient)
	drafts.PUT("/:id/detalles", h.SetDetails)
	drafts.POST("/:id/recargar", h.Reload)
	drafts.PUT("/:id/aplicaciones/:venta_id", h.SetAllocation)
	drafts.POST("/:id/saldar-todo", h.FillAll)
	drafts.GET("/:id/confirmacion", h.Confirmation)
	drafts.POST("/:id/enviar", h.Submit)
	return g
}

// DeliveryRoutes returns the batch sale routes
func DeliveryRoutes(h *handler.DeliveryHandler) []*DomainGroup {
	routes := NewDomainGroup("repartos", "/repartos")
	routes.POST("/:reparto_id/lotes", h.Open)

	lotes := NewDomainGroup("lotes", "/lotes")
	lotes.GET("/:id", h.Get)
	lotes.DELETE("/:id", h.Close)
	lotes.PUT("/:id/reparto", h.ChangeRoute)
	lotes.PUT("/:id/cantidades", h.SetQuantity)
	lotes.POST("/:id/precios", h.RefreshPrices)
	lotes.POST("/:id/enviar", h.Submit)

	clients := lotes.Group("clientes", "/:id/clientes")
	clients.PUT("/:cliente_id/a-cuenta", h.SetCredit)
	clients.POST("/:cliente_id/exclusion", h.Exclude)
	clients.DELETE("/:cliente_id/exclusion", h.Include)
	clients.DELETE("/:cliente_id", h.ClearClient)

	return []*DomainGroup{routes, lotes}
}

// SessionRoutes returns the session routes
func SessionRoutes(h *handler.SessionHandler) *DomainGroup {
	g := NewDomainGroup("sesion", "/sesion")
	g.DELETE("", h.Clear)
	return g
}

// SystemRoutes returns the authenticated ping route. /health is mounted
// outside the API prefix so probes need no session.
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "")
	g.GET("/ping", h.Ping)
	return g
}

// API returns every route group of the gateway
func API(h Handlers) []RouteRegistrar {
	registrars := []RouteRegistrar{
		CollectionRoutes(h.Collection),
		SessionRoutes(h.Session),
		SystemRoutes(h.System),
	}
	for _, g := range DeliveryRoutes(h.Delivery) {
		registrars = append(registrars, g)
	}
	return registrars
}
