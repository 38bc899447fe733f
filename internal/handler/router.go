package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	assistantHandler "github.com/bargainmart/backend/internal/handler/assistant"
	cartHandler "github.com/bargainmart/backend/internal/handler/cart"
	catalogHandler "github.com/bargainmart/backend/internal/handler/catalog"
	checkoutHandler "github.com/bargainmart/backend/internal/handler/checkout"
	negotiationHandler "github.com/bargainmart/backend/internal/handler/negotiation"
	middlewarePkg "github.com/bargainmart/backend/internal/middleware"
	catalogModel "github.com/bargainmart/backend/internal/model/catalog"
	"github.com/bargainmart/backend/internal/model/identity"
	aiService "github.com/bargainmart/backend/internal/service/ai"
	assistantService "github.com/bargainmart/backend/internal/service/assistant"
	cartService "github.com/bargainmart/backend/internal/service/cart"
	checkoutService "github.com/bargainmart/backend/internal/service/checkout"
	negotiationService "github.com/bargainmart/backend/internal/service/negotiation"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Catalog     catalogModel.Store
	Identities  identity.Provider
	Cart        *cartService.Service
	Checkout    *checkoutService.Service
	Negotiation *negotiationService.Service
	Assistant   *assistantService.Service
	AI          *aiService.Service
}

// NewRouter wires HTTP routes to core services.
func NewRouter(svcs Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		catalogHandler.New(svcs.Catalog).RegisterRoutes(api)
		cartHandler.New(svcs.Cart, svcs.Catalog, svcs.Identities).RegisterRoutes(api)

		if svcs.Checkout != nil {
			checkoutHandler.New(svcs.Checkout, svcs.Identities).RegisterRoutes(api)
		}
		if svcs.Negotiation != nil {
			negotiationHandler.New(svcs.Negotiation, svcs.Identities).RegisterRoutes(api)
		}
		assistantHandler.New(svcs.Assistant, svcs.AI, svcs.Identities).RegisterRoutes(api)
	})

	return r
}
