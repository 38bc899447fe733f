package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bargainmart/backend/internal/model/catalog"
	"github.com/bargainmart/backend/internal/model/identity"
	"github.com/bargainmart/backend/internal/model/order"
	cartservice "github.com/bargainmart/backend/internal/service/cart"
)

var (
	ErrNotAuthenticated = errors.New("sign in required to create an order")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidShipping  = errors.New("invalid shipping info")
)

// Repo is the order persistence surface the service depends on.
type Repo interface {
	CreateOrderTx(ctx context.Context, o order.Order) (string, error)
	ListByUser(ctx context.Context, userID string) ([]order.Order, error)
	UpdateStatus(ctx context.Context, orderID string, to order.Status) error
}

// Publisher emits order events; a nil Publisher disables publication.
type Publisher interface {
	Publish(key, value []byte)
}

// ShippingInfo is the checkout form; validated before any write happens.
type ShippingInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Validate rejects missing required fields.
func (s ShippingInfo) Validate() error {
	missing := make([]string, 0, 5)
	for _, f := range []struct{ name, value string }{
		{"name", s.Name},
		{"email", s.Email},
		{"address", s.Address},
		{"city", s.City},
		{"zipCode", s.ZipCode},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidShipping, strings.Join(missing, ", "))
	}
	return nil
}

// Service turns the current cart into a persisted order.
type Service struct {
	catalog   catalog.Store
	cart      *cartservice.Service
	repo      Repo
	publisher Publisher
	producer  string
}

// NewService wires the checkout workflow.
func NewService(catalogStore catalog.Store, cart *cartservice.Service, repo Repo, publisher Publisher, producerName string) *Service {
	return &Service{
		catalog:   catalogStore,
		cart:      cart,
		repo:      repo,
		publisher: publisher,
		producer:  producerName,
	}
}

// CreateOrder snapshots the cart into an order plus item records, written in
// one transaction, then clears the cart. Preconditions (authenticated user,
// non-empty cart, valid shipping form) fail before any side effect; a failed
// write leaves the cart untouched.
func (s *Service) CreateOrder(ctx context.Context, ident identity.Identity, shipping ShippingInfo) (string, error) {
	if ident.IsGuest() {
		return "", ErrNotAuthenticated
	}
	if err := shipping.Validate(); err != nil {
		return "", err
	}

	partition := ident.PartitionKey()
	lines, err := s.cart.Lines(ctx, partition)
	if err != nil {
		return "", fmt.Errorf("load cart: %w", err)
	}
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	total, err := s.cart.TotalPrice(ctx, partition)
	if err != nil {
		return "", fmt.Errorf("compute total: %w", err)
	}

	o := order.Order{
		ID:        uuid.NewString(),
		UserID:    ident.ID,
		Status:    order.StatusPending,
		Total:     total,
		CreatedAt: time.Now().UTC(),
		Items:     make([]order.Item, 0, len(lines)),
	}
	for _, line := range lines {
		product, err := s.catalog.FindByID(ctx, line.ProductID)
		if err != nil {
			return "", fmt.Errorf("snapshot product %s: %w", line.ProductID, err)
		}
		o.Items = append(o.Items, order.Item{
			OrderID:         o.ID,
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			Price:           product.Price,
			NegotiatedPrice: line.NegotiatedPrice,
		})
	}

	orderID, err := s.repo.CreateOrderTx(ctx, o)
	if err != nil {
		return "", fmt.Errorf("persist order: %w", err)
	}

	// Only a committed order clears the cart; persistence hiccups here are
	// recoverable and must not cost the customer their lines.
	if err := s.cart.Clear(ctx, partition); err != nil {
		log.Printf("[checkout] order %s created but cart clear failed: %v", orderID, err)
	}

	s.publishCreated(orderID, ident.ID, total, o.Items)
	return orderID, nil
}

// ListOrders returns the identity's order history.
func (s *Service) ListOrders(ctx context.Context, ident identity.Identity) ([]order.Order, error) {
	if ident.IsGuest() {
		return nil, ErrNotAuthenticated
	}
	return s.repo.ListByUser(ctx, ident.ID)
}

// UpdateOrderStatus moves an order along its lifecycle. The repo rejects
// transitions the status machine forbids.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, to order.Status) error {
	return s.repo.UpdateStatus(ctx, orderID, to)
}

func (s *Service) publishCreated(orderID, userID string, total float64, items []order.Item) {
	if s.publisher == nil {
		return
	}

	briefs := make([]order.ItemBrief, 0, len(items))
	for _, it := range items {
		briefs = append(briefs, order.ItemBrief{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Agreed:    it.NegotiatedPrice,
		})
	}

	payload, err := json.Marshal(order.CreatedPayload{
		OrderID: orderID,
		UserID:  userID,
		Total:   total,
		Items:   briefs,
	})
	if err != nil {
		log.Printf("[checkout] marshal event payload: %v", err)
		return
	}

	envelope, err := json.Marshal(order.Envelope{
		EventID:    uuid.NewString(),
		EventType:  order.EventOrderCreated,
		OccurredAt: time.Now().UTC(),
		Producer:   s.producer,
		Payload:    payload,
	})
	if err != nil {
		log.Printf("[checkout] marshal event envelope: %v", err)
		return
	}

	s.publisher.Publish(order.PartitionKey(orderID), envelope)
}
