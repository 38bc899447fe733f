package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	catalogModel "github.com/bargainmart/backend/internal/model/catalog"
	"github.com/bargainmart/backend/pkg/utils"
)

// Handler serves the product catalog.
type Handler struct {
	store catalogModel.Store
}

// New creates a catalog handler.
func New(store catalogModel.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the catalog endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.handleList)
	r.Get("/products/search", h.handleSearch)
	r.Get("/products/{id}", h.handleGet)
	r.Post("/products", h.handleCreate)
	r.Put("/products/{id}", h.handleUpdate)
	r.Delete("/products/{id}", h.handleDelete)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.List(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	utils.RespondJSON(w, http.StatusOK, products)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	products, err := h.store.Search(r.Context(), query, category)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to search products")
		return
	}
	utils.RespondJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.store.FindByID(r.Context(), id)
	if errors.Is(err, catalogModel.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	utils.RespondJSON(w, http.StatusOK, product)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var product catalogModel.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if product.Name == "" || product.Price < 0 || product.Stock < 0 {
		utils.RespondError(w, http.StatusBadRequest, "name is required and price/stock must be non-negative")
		return
	}

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	if err := h.store.Create(r.Context(), product); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create product")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, product)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var product catalogModel.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	product.ID = chi.URLParam(r, "id")
	if product.Price < 0 || product.Stock < 0 {
		utils.RespondError(w, http.StatusBadRequest, "price and stock must be non-negative")
		return
	}

	err := h.store.Update(r.Context(), product)
	if errors.Is(err, catalogModel.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to update product")
		return
	}
	utils.RespondJSON(w, http.StatusOK, product)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, catalogModel.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
