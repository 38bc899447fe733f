package assistant

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bargainmart/backend/internal/model/chat"
	"github.com/bargainmart/backend/internal/model/identity"
	aiService "github.com/bargainmart/backend/internal/service/ai"
	assistantService "github.com/bargainmart/backend/internal/service/assistant"
	"github.com/bargainmart/backend/pkg/utils"
)

// Handler serves the shopping-assistant chat over SSE.
type Handler struct {
	assistantSvc *assistantService.Service
	aiSvc        *aiService.Service
	identities   identity.Provider
}

// New creates an assistant handler. aiSvc may be nil when no completion
// credentials are configured; streaming then reports unavailable.
func New(assistantSvc *assistantService.Service, aiSvc *aiService.Service, identities identity.Provider) *Handler {
	return &Handler{assistantSvc: assistantSvc, aiSvc: aiSvc, identities: identities}
}

// RegisterRoutes mounts the assistant endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/assistant/sessions", h.handleCreateSession)
	r.Get("/assistant/sessions/{sessionID}/messages", h.handleTranscript)
	r.Get("/assistant/stream/{sessionID}", h.handleStream)
}

// streamFrame is one SSE chunk.
type streamFrame struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ownerID := h.identities.Current(r).ID

	session, err := h.assistantSvc.CreateSession(r.Context(), ownerID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.assistantSvc.Transcript(r.Context(), sessionID)
	if errors.Is(err, assistantService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}
	if messages == nil {
		messages = []chat.Message{}
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userMessage := r.URL.Query().Get("message")

	if h.aiSvc == nil {
		utils.RespondError(w, http.StatusServiceUnavailable, "assistant unavailable")
		return
	}
	if userMessage == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	history, err := h.assistantSvc.Transcript(ctx, sessionID)
	if errors.Is(err, assistantService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}

	system, err := h.assistantSvc.SystemPrompt(ctx)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to build prompt")
		return
	}

	if _, err := h.assistantSvc.Append(ctx, sessionID, chat.RoleUser, userMessage); err != nil {
		log.Printf("[assistant] failed to save user message: %v", err)
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEChunk(w, flusher, streamFrame{Event: "start", SessionID: sessionID})

	stream, err := h.aiSvc.Stream(ctx, system, history, userMessage)
	if err != nil {
		utils.SendSSEChunk(w, flusher, streamFrame{Event: "error", Error: "completion failed"})
		return
	}
	defer stream.Close()

	var reply strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			utils.SendSSEChunk(w, flusher, streamFrame{Event: "error", Error: fmt.Sprintf("stream failed: %v", err)})
			return
		}
		reply.WriteString(chunk.Content)
		utils.SendSSEChunk(w, flusher, streamFrame{Event: "chunk", Content: chunk.Content, SessionID: sessionID})
	}

	if _, err := h.assistantSvc.Append(ctx, sessionID, chat.RoleAssistant, reply.String()); err != nil {
		log.Printf("[assistant] failed to save assistant message: %v", err)
	}

	utils.SendSSEChunk(w, flusher, streamFrame{Event: "done", SessionID: sessionID, Finished: true})
}
