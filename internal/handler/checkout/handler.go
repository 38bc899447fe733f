package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bargainmart/backend/internal/model/identity"
	"github.com/bargainmart/backend/internal/model/order"
	checkoutService "github.com/bargainmart/backend/internal/service/checkout"
	"github.com/bargainmart/backend/pkg/utils"
)

// Handler serves order submission and history.
type Handler struct {
	checkoutSvc *checkoutService.Service
	identities  identity.Provider
}

// New creates a checkout handler.
func New(checkoutSvc *checkoutService.Service, identities identity.Provider) *Handler {
	return &Handler{checkoutSvc: checkoutSvc, identities: identities}
}

// RegisterRoutes mounts the checkout endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/checkout", h.handleCreateOrder)
	r.Get("/orders", h.handleListOrders)
	r.Put("/orders/{orderID}/status", h.handleUpdateStatus)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Shipping checkoutService.ShippingInfo `json:"shipping"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ident := h.identities.Current(r)
	orderID, err := h.checkoutSvc.CreateOrder(r.Context(), ident, payload.Shipping)
	switch {
	case errors.Is(err, checkoutService.ErrNotAuthenticated):
		utils.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	case errors.Is(err, checkoutService.ErrEmptyCart):
		utils.RespondError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, checkoutService.ErrInvalidShipping):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		utils.RespondError(w, http.StatusBadGateway, "failed to create order")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{"orderId": orderID})
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var payload struct {
		Status order.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Status == "" {
		utils.RespondError(w, http.StatusBadRequest, "status is required")
		return
	}

	err := h.checkoutSvc.UpdateOrderStatus(r.Context(), orderID, payload.Status)
	if errors.Is(err, order.ErrInvalidTransition) {
		utils.RespondError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to update order status")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"orderId": orderID, "status": string(payload.Status)})
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	ident := h.identities.Current(r)

	orders, err := h.checkoutSvc.ListOrders(r.Context(), ident)
	if errors.Is(err, checkoutService.ErrNotAuthenticated) {
		utils.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	utils.RespondJSON(w, http.StatusOK, orders)
}
