package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	cartModel "github.com/bargainmart/backend/internal/model/cart"
	catalogModel "github.com/bargainmart/backend/internal/model/catalog"
	"github.com/bargainmart/backend/internal/model/identity"
	cartService "github.com/bargainmart/backend/internal/service/cart"
	"github.com/bargainmart/backend/pkg/utils"
)

// Handler serves the per-identity cart.
type Handler struct {
	cartSvc    *cartService.Service
	store      catalogModel.Store
	identities identity.Provider
}

// New creates a cart handler.
func New(cartSvc *cartService.Service, store catalogModel.Store, identities identity.Provider) *Handler {
	return &Handler{cartSvc: cartSvc, store: store, identities: identities}
}

// RegisterRoutes mounts the cart endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/cart", h.handleGet)
	r.Post("/cart/items", h.handleAddItem)
	r.Put("/cart/items/{productID}", h.handleUpdateQuantity)
	r.Delete("/cart/items/{productID}", h.handleRemoveItem)
	r.Delete("/cart", h.handleClear)
}

type cartView struct {
	Items      []cartModel.Line `json:"items"`
	TotalItems int              `json:"totalItems"`
	TotalPrice float64          `json:"totalPrice"`
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ProductID       string   `json:"productId"`
		Quantity        int      `json:"quantity"`
		NegotiatedPrice *float64 `json:"negotiatedPrice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}
	if payload.Quantity < 1 {
		utils.RespondError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	product, err := h.store.FindByID(r.Context(), payload.ProductID)
	if errors.Is(err, catalogModel.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	if payload.NegotiatedPrice != nil && *payload.NegotiatedPrice > product.Price {
		utils.RespondError(w, http.StatusBadRequest, "negotiated price cannot exceed list price")
		return
	}

	partition := h.identities.Current(r).PartitionKey()
	if err := h.cartSvc.AddItem(r.Context(), partition, product, payload.Quantity, payload.NegotiatedPrice); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to add item")
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	partition := h.identities.Current(r).PartitionKey()
	productID := chi.URLParam(r, "productID")
	if err := h.cartSvc.UpdateQuantity(r.Context(), partition, productID, payload.Quantity); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to update quantity")
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	partition := h.identities.Current(r).PartitionKey()
	productID := chi.URLParam(r, "productID")
	if err := h.cartSvc.RemoveItem(r.Context(), partition, productID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	partition := h.identities.Current(r).PartitionKey()
	if err := h.cartSvc.Clear(r.Context(), partition); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	h.respondCart(w, r, http.StatusOK)
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, status int) {
	partition := h.identities.Current(r).PartitionKey()

	lines, err := h.cartSvc.Lines(r.Context(), partition)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	totalItems, err := h.cartSvc.TotalItems(r.Context(), partition)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to compute totals")
		return
	}
	totalPrice, err := h.cartSvc.TotalPrice(r.Context(), partition)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to compute totals")
		return
	}

	if lines == nil {
		lines = []cartModel.Line{}
	}
	utils.RespondJSON(w, status, cartView{Items: lines, TotalItems: totalItems, TotalPrice: totalPrice})
}
