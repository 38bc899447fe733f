package negotiation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bargainmart/backend/internal/config"
	"github.com/bargainmart/backend/internal/model/catalog"
	"github.com/bargainmart/backend/internal/model/chat"
	"github.com/bargainmart/backend/internal/service/ai"
)

var (
	ErrSessionNotFound = errors.New("negotiation session not found")
	// ErrUnavailable reports a completion-service failure; the session stays
	// open and the customer may retry.
	ErrUnavailable = errors.New("negotiation service unavailable")
)

const apologyReply = "I'm sorry, I'm having trouble with our negotiation system. Please try again later."

// State tracks where a negotiation session stands.
type State string

const (
	StateAwaitingReply State = "awaiting_reply"
	StateAccepted      State = "accepted"
)

// Reply is the outcome of one negotiation turn.
type Reply struct {
	Message       chat.Message `json:"message"`
	AcceptedPrice *float64     `json:"acceptedPrice,omitempty"`
	Unavailable   bool         `json:"unavailable,omitempty"`
}

// Transcript is the full view of one session.
type Transcript struct {
	Session       chat.Session   `json:"session"`
	State         State          `json:"state"`
	AcceptedPrice *float64       `json:"acceptedPrice,omitempty"`
	Messages      []chat.Message `json:"messages"`
}

type sessionState struct {
	session  chat.Session
	state    State
	accepted *float64
	messages []chat.Message
}

// Service conducts price negotiations for single products by forwarding the
// conversation to the completion service and extracting a dollar figure from
// each reply. The prompt tells the model about the floor, but the only
// binding checks are here: an extracted price is accepted only when it is
// between the floor and the list price.
type Service struct {
	completer ai.Completer
	catalog   catalog.Store
	cfg       config.NegotiationConfig

	mu       sync.RWMutex
	sessions map[string]*sessionState
}

// NewService builds the negotiation forwarder.
func NewService(completer ai.Completer, catalogStore catalog.Store, cfg config.NegotiationConfig) *Service {
	return &Service{
		completer: completer,
		catalog:   catalogStore,
		cfg:       cfg,
		sessions:  make(map[string]*sessionState),
	}
}

// Open starts a session for one product and returns it together with the
// synthetic opening message quoting the list price.
func (s *Service) Open(ctx context.Context, productID, ownerID string) (chat.Session, chat.Message, error) {
	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return chat.Session{}, chat.Message{}, err
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		ProductID: product.ID,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	opening := chat.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      chat.RoleAssistant,
		Content: fmt.Sprintf(
			"Hi there! I'm your sales assistant for the %s. The listed price is $%.2f, but I might be able to offer you a better deal. What price did you have in mind?",
			product.Name, product.Price),
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionState{
		session:  session,
		state:    StateAwaitingReply,
		messages: []chat.Message{opening},
	}
	s.mu.Unlock()

	return session, opening, nil
}

// Send forwards the customer's message plus history to the completion
// service and scans the reply for an agreed price.
func (s *Service) Send(ctx context.Context, sessionID, text string) (Reply, error) {
	s.mu.Lock()
	st, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return Reply{}, ErrSessionNotFound
	}
	userMsg := chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      chat.RoleUser,
		Content:   text,
		OwnerID:   st.session.OwnerID,
		CreatedAt: time.Now().UTC(),
	}
	st.messages = append(st.messages, userMsg)
	history := append([]chat.Message(nil), st.messages...)
	productID := st.session.ProductID
	s.mu.Unlock()

	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		return Reply{}, err
	}

	system := ai.BuildNegotiationPrompt(product, s.cfg.FloorRatio, s.cfg.CouponCodes)
	content, err := s.completer.Generate(ctx, system, s.trimHistory(history), text)
	if err != nil {
		log.Printf("[negotiation] completion failed for session=%s: %v", sessionID, err)
		apology := s.appendAssistant(sessionID, apologyReply)
		return Reply{Message: apology, Unavailable: true}, ErrUnavailable
	}

	reply := s.appendAssistant(sessionID, content)
	out := Reply{Message: reply}

	if price, found := ai.ExtractPrice(content); found && s.acceptable(price, product) {
		s.mu.Lock()
		if st, ok := s.sessions[sessionID]; ok {
			p := price
			st.state = StateAccepted
			st.accepted = &p
			out.AcceptedPrice = &p
		}
		s.mu.Unlock()
	}
	return out, nil
}

// Get returns the session transcript and state.
func (s *Service) Get(_ context.Context, sessionID string) (Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.sessions[sessionID]
	if !ok {
		return Transcript{}, ErrSessionNotFound
	}
	return Transcript{
		Session:       st.session,
		State:         st.state,
		AcceptedPrice: st.accepted,
		Messages:      append([]chat.Message(nil), st.messages...),
	}, nil
}

// acceptable is the hard guard: never above list price, never below the
// configured floor. The prompt alone cannot be trusted to hold either bound.
// The floor is truncated to cents so a reply agreeing to exactly the
// advertised minimum is accepted.
func (s *Service) acceptable(price float64, product catalog.Product) bool {
	floor := ai.FloorPrice(product.Price, s.cfg.FloorRatio)
	return price <= product.Price && price >= floor
}

// trimHistory keeps the most recent turns within the configured limit. The
// final user message is delivered as the query, not as history.
func (s *Service) trimHistory(messages []chat.Message) []chat.Message {
	if len(messages) > 0 {
		messages = messages[:len(messages)-1]
	}
	if limit := s.cfg.HistoryLimit; limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	return messages
}

func (s *Service) appendAssistant(sessionID, content string) chat.Message {
	msg := chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      chat.RoleAssistant,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	if st, ok := s.sessions[sessionID]; ok {
		msg.OwnerID = st.session.OwnerID
		st.messages = append(st.messages, msg)
	}
	s.mu.Unlock()
	return msg
}
