package negotiation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bargainmart/backend/internal/config"
	catalogModel "github.com/bargainmart/backend/internal/model/catalog"
	"github.com/bargainmart/backend/internal/model/chat"
	"github.com/bargainmart/backend/internal/model/identity"
	negotiationService "github.com/bargainmart/backend/internal/service/negotiation"
)

type fakeCompleter struct {
	reply string
	err   error
}

func (f *fakeCompleter) Generate(context.Context, string, []chat.Message, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func setupRouter(completer *fakeCompleter) *chi.Mux {
	store := catalogModel.NewMemoryStore([]catalogModel.Product{{
		ID:        "prod-cam",
		Name:      "Camera",
		Price:     200,
		Stock:     5,
		CreatedAt: time.Now().UTC(),
	}})
	cfg := config.NegotiationConfig{FloorRatio: 0.8, HistoryLimit: 20}
	svc := negotiationService.NewService(completer, store, cfg)
	handler := New(svc, identity.NewHeaderProvider())

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func openSession(t *testing.T, r *chi.Mux) string {
	t.Helper()
	payload := []byte(`{"productId": "prod-cam"}`)
	req := httptest.NewRequest(http.MethodPost, "/negotiations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	var body struct {
		Session chat.Session `json:"session"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode open response: %v", err)
	}
	return body.Session.ID
}

func TestOpenNegotiation(t *testing.T) {
	r := setupRouter(&fakeCompleter{})
	sessionID := openSession(t, r)
	if sessionID == "" {
		t.Fatal("expected a session ID")
	}
}

func TestOpenNegotiationUnknownProduct(t *testing.T) {
	r := setupRouter(&fakeCompleter{})
	payload := []byte(`{"productId": "missing"}`)

	req := httptest.NewRequest(http.MethodPost, "/negotiations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestOpenNegotiationMissingProductID(t *testing.T) {
	r := setupRouter(&fakeCompleter{})
	payload := []byte(`{}`)

	req := httptest.NewRequest(http.MethodPost, "/negotiations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSendMessageAcceptsOffer(t *testing.T) {
	r := setupRouter(&fakeCompleter{reply: "Deal at $170."})
	sessionID := openSession(t, r)

	payload := []byte(`{"content": "Can you do 170?"}`)
	req := httptest.NewRequest(http.MethodPost, "/negotiations/"+sessionID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var reply negotiationService.Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("failed to decode reply: %v", err)
	}
	if reply.AcceptedPrice == nil || *reply.AcceptedPrice != 170 {
		t.Fatalf("expected accepted price 170, got %v", reply.AcceptedPrice)
	}
}

func TestSendMessageUnavailableStillResponds(t *testing.T) {
	r := setupRouter(&fakeCompleter{err: errors.New("upstream down")})
	sessionID := openSession(t, r)

	payload := []byte(`{"content": "Hello?"}`)
	req := httptest.NewRequest(http.MethodPost, "/negotiations/"+sessionID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with apology, got %d", resp.Code)
	}
	var reply negotiationService.Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatalf("failed to decode reply: %v", err)
	}
	if !reply.Unavailable {
		t.Fatal("expected unavailable flag")
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	r := setupRouter(&fakeCompleter{})

	payload := []byte(`{"content": "hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/negotiations/missing/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestGetTranscript(t *testing.T) {
	r := setupRouter(&fakeCompleter{reply: "Let me think."})
	sessionID := openSession(t, r)

	payload := []byte(`{"content": "How about 170?"}`)
	req := httptest.NewRequest(http.MethodPost, "/negotiations/"+sessionID+"/messages", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("send failed with %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/negotiations/"+sessionID, nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var transcript negotiationService.Transcript
	if err := json.NewDecoder(resp.Body).Decode(&transcript); err != nil {
		t.Fatalf("failed to decode transcript: %v", err)
	}
	// Opening message, customer message, assistant reply.
	if len(transcript.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(transcript.Messages))
	}
}
