package negotiation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	catalogModel "github.com/bargainmart/backend/internal/model/catalog"
	"github.com/bargainmart/backend/internal/model/chat"
	"github.com/bargainmart/backend/internal/model/identity"
	negotiationService "github.com/bargainmart/backend/internal/service/negotiation"
	"github.com/bargainmart/backend/pkg/utils"
)

// Handler serves the price-negotiation chat.
type Handler struct {
	negotiationSvc *negotiationService.Service
	identities     identity.Provider
}

// New creates a negotiation handler.
func New(negotiationSvc *negotiationService.Service, identities identity.Provider) *Handler {
	return &Handler{negotiationSvc: negotiationSvc, identities: identities}
}

// RegisterRoutes mounts the negotiation endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/negotiations", h.handleOpen)
	r.Post("/negotiations/{sessionID}/messages", h.handleSend)
	r.Get("/negotiations/{sessionID}", h.handleGet)
}

func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ProductID string `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.ProductID == "" {
		utils.RespondError(w, http.StatusBadRequest, "productId is required")
		return
	}

	ownerID := h.identities.Current(r).ID
	session, opening, err := h.negotiationSvc.Open(r.Context(), payload.ProductID, ownerID)
	if errors.Is(err, catalogModel.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to open negotiation")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"session": session,
		"message": opening,
	})
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.Content == "" {
		utils.RespondError(w, http.StatusBadRequest, "content is required")
		return
	}

	reply, err := h.negotiationSvc.Send(r.Context(), sessionID, payload.Content)
	if errors.Is(err, negotiationService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "negotiation session not found")
		return
	}
	// An unavailable completion service still yields the apology reply; the
	// customer keeps the session and can retry.
	if err != nil && !errors.Is(err, negotiationService.ErrUnavailable) {
		utils.RespondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, reply)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	transcript, err := h.negotiationSvc.Get(r.Context(), sessionID)
	if errors.Is(err, negotiationService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "negotiation session not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load negotiation")
		return
	}

	if transcript.Messages == nil {
		transcript.Messages = []chat.Message{}
	}
	utils.RespondJSON(w, http.StatusOK, transcript)
}
