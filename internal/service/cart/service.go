package cart

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	model "github.com/bargainmart/backend/internal/model/cart"
	"github.com/bargainmart/backend/internal/model/catalog"
)

var (
	// ErrInvalidQuantity rejects non-positive add quantities at the boundary.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// persistTimeout bounds a single snapshot write.
const persistTimeout = 5 * time.Second

// Service is the cart aggregate: the authoritative per-partition line sets
// plus derived totals. Every mutation re-persists the partition's full
// snapshot through a single writer goroutine per partition, so writes land
// in mutation order and a slow earlier write can never clobber a later one.
// Persistence failures are logged and leave the in-memory state authoritative.
type Service struct {
	catalog catalog.Store
	store   Store

	mu      sync.Mutex
	lines   map[string][]model.Line
	loaded  map[string]bool
	writers map[string]chan persistJob
	wg      sync.WaitGroup
	closed  bool
}

type persistJob struct {
	clear    bool
	snapshot model.Snapshot
}

// NewService builds a cart aggregate over the given catalog and snapshot store.
func NewService(catalogStore catalog.Store, store Store) *Service {
	return &Service{
		catalog: catalogStore,
		store:   store,
		lines:   make(map[string][]model.Line),
		loaded:  make(map[string]bool),
		writers: make(map[string]chan persistJob),
	}
}

// Lines returns the partition's current lines in insertion order, loading
// the persisted snapshot on first access.
func (s *Service) Lines(ctx context.Context, partition string) ([]model.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx, partition); err != nil {
		return nil, err
	}
	return append([]model.Line(nil), s.lines[partition]...), nil
}

// AddItem inserts a line for the product or increments an existing one.
// A supplied negotiated price overwrites a previous one; omitting it keeps
// whatever was already agreed.
func (s *Service) AddItem(ctx context.Context, partition string, product catalog.Product, quantity int, negotiated *float64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx, partition); err != nil {
		return err
	}

	lines := s.lines[partition]
	updated := false
	for i := range lines {
		if lines[i].ProductID == product.ID {
			lines[i].Quantity += quantity
			if negotiated != nil {
				lines[i].NegotiatedPrice = negotiated
			}
			updated = true
			break
		}
	}
	if !updated {
		lines = append(lines, model.Line{
			ProductID:       product.ID,
			Quantity:        quantity,
			NegotiatedPrice: negotiated,
		})
	}
	s.lines[partition] = lines
	s.enqueuePersist(partition)
	return nil
}

// RemoveItem deletes the product's line; missing lines are a no-op.
func (s *Service) RemoveItem(ctx context.Context, partition, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx, partition); err != nil {
		return err
	}

	lines := s.lines[partition]
	for i := range lines {
		if lines[i].ProductID == productID {
			s.lines[partition] = append(lines[:i], lines[i+1:]...)
			s.enqueuePersist(partition)
			return nil
		}
	}
	return nil
}

// UpdateQuantity sets a line's quantity exactly; anything below 1 removes
// the line.
func (s *Service) UpdateQuantity(ctx context.Context, partition, productID string, quantity int) error {
	if quantity < 1 {
		return s.RemoveItem(ctx, partition, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx, partition); err != nil {
		return err
	}

	lines := s.lines[partition]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = quantity
			s.enqueuePersist(partition)
			return nil
		}
	}
	return nil
}

// SetNegotiatedPrice overwrites the negotiated price on an existing line.
// Ceiling/floor validation happens in the negotiation flow before this is
// called; a missing line is a no-op.
func (s *Service) SetNegotiatedPrice(ctx context.Context, partition, productID string, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx, partition); err != nil {
		return err
	}

	lines := s.lines[partition]
	for i := range lines {
		if lines[i].ProductID == productID {
			p := price
			lines[i].NegotiatedPrice = &p
			s.enqueuePersist(partition)
			return nil
		}
	}
	return nil
}

// Clear empties the partition and removes its persisted snapshot.
func (s *Service) Clear(ctx context.Context, partition string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx, partition); err != nil {
		return err
	}

	s.lines[partition] = nil
	s.enqueueClear(partition)
	return nil
}

// TotalItems sums all line quantities.
func (s *Service) TotalItems(ctx context.Context, partition string) (int, error) {
	lines, err := s.Lines(ctx, partition)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total, nil
}

// TotalPrice sums negotiated-or-list price times quantity over all lines,
// recomputed fresh from the catalog on every call. Lines whose product was
// deleted from the catalog contribute nothing; they stay visible so the
// customer can remove them.
func (s *Service) TotalPrice(ctx context.Context, partition string) (float64, error) {
	lines, err := s.Lines(ctx, partition)
	if err != nil {
		return 0, err
	}

	total := 0.0
	for _, line := range lines {
		unit, err := s.unitPrice(ctx, line)
		if errors.Is(err, catalog.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		total += unit * float64(line.Quantity)
	}
	return total, nil
}

func (s *Service) unitPrice(ctx context.Context, line model.Line) (float64, error) {
	if line.NegotiatedPrice != nil {
		return *line.NegotiatedPrice, nil
	}
	product, err := s.catalog.FindByID(ctx, line.ProductID)
	if err != nil {
		return 0, err
	}
	return product.Price, nil
}

// Close stops all partition writers after their queued snapshots flush.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, ch := range s.writers {
		close(ch)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// ensureLoaded pulls the persisted snapshot on the partition's first access.
// Callers hold s.mu.
func (s *Service) ensureLoaded(ctx context.Context, partition string) error {
	if s.loaded[partition] {
		return nil
	}
	lines, err := s.store.Load(ctx, partition)
	if err != nil {
		return err
	}
	s.lines[partition] = lines
	s.loaded[partition] = true
	return nil
}

// enqueuePersist hands the current snapshot to the partition writer.
// Callers hold s.mu, so enqueue order equals mutation order.
func (s *Service) enqueuePersist(partition string) {
	snapshot := model.Snapshot{
		Partition: partition,
		Lines:     append([]model.Line(nil), s.lines[partition]...),
		UpdatedAt: time.Now().UTC(),
	}
	s.writer(partition) <- persistJob{snapshot: snapshot}
}

func (s *Service) enqueueClear(partition string) {
	s.writer(partition) <- persistJob{clear: true, snapshot: model.Snapshot{Partition: partition}}
}

func (s *Service) writer(partition string) chan persistJob {
	ch, ok := s.writers[partition]
	if ok {
		return ch
	}

	ch = make(chan persistJob, 64)
	s.writers[partition] = ch
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for job := range ch {
			s.apply(job)
		}
	}()
	return ch
}

func (s *Service) apply(job persistJob) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	var err error
	if job.clear {
		err = s.store.Clear(ctx, job.snapshot.Partition)
	} else {
		err = s.store.Save(ctx, job.snapshot)
	}
	if err != nil {
		// Durability is at risk but the in-memory cart stays correct;
		// the next mutation retries with a fresh snapshot.
		log.Printf("[cart] persist failed for partition=%s: %v", job.snapshot.Partition, err)
	}
}
