package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bargainmart/backend/internal/model/catalog"
)

func testCatalog() *catalog.MemoryStore {
	now := time.Now().UTC()
	return catalog.NewMemoryStore([]catalog.Product{
		{ID: "prod-a", Name: "Product A", Price: 50, Stock: 10, CreatedAt: now},
		{ID: "prod-b", Name: "Product B", Price: 30, Stock: 10, CreatedAt: now},
	})
}

func mustProduct(t *testing.T, store catalog.Store, id string) catalog.Product {
	t.Helper()
	p, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func TestAddItemMergesLines(t *testing.T) {
	ctx := context.Background()
	catalogStore := testCatalog()
	svc := NewService(catalogStore, NewMemoryStore())
	defer svc.Close()

	productA := mustProduct(t, catalogStore, "prod-a")
	require.NoError(t, svc.AddItem(ctx, "guest", productA, 1, nil))
	require.NoError(t, svc.AddItem(ctx, "guest", productA, 2, nil))

	lines, err := svc.Lines(ctx, "guest")
	require.NoError(t, err)
	require.Len(t, lines, 1, "same product must never produce two lines")
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	catalogStore := testCatalog()
	svc := NewService(catalogStore, NewMemoryStore())
	defer svc.Close()

	productA := mustProduct(t, catalogStore, "prod-a")
	err := svc.AddItem(ctx, "guest", productA, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	lines, err := svc.Lines(ctx, "guest")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestAddItemPreservesNegotiatedPrice(t *testing.T) {
	ctx := context.Background()
	catalogStore := testCatalog()
	svc := NewService(catalogStore, NewMemoryStore())
	defer svc.Close()

	productB := mustProduct(t, catalogStore, "prod-b")
	agreed := 24.0
	require.NoError(t, svc.AddItem(ctx, "guest", productB, 1, &agreed))

	// A plain add must not revert the line to list price.
	require.NoError(t, svc.AddItem(ctx, "guest", productB, 1, nil))

	lines, err := svc.Lines(ctx, "guest")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.NotNil(t, lines[0].NegotiatedPrice)
	assert.Equal(t, 24.0, *lines[0].NegotiatedPrice)

	// A new negotiated price overwrites the old one.
	better := 22.5
	require.NoError(t, svc.AddItem(ctx, "guest", productB, 1, &better))
	lines, err = svc.Lines(ctx, "guest")
	require.NoError(t, err)
	require.NotNil(t, lines[0].NegotiatedPrice)
	assert.Equal(t, 22.5, *lines[0].NegotiatedPrice)
}

func TestTotalsScenario(t *testing.T) {
	ctx := context.Background()
	catalogStore := testCatalog()
	svc := NewService(catalogStore, NewMemoryStore())
	defer svc.Close()

	productA := mustProduct(t, catalogStore, "prod-a")
	productB := mustProduct(t, catalogStore, "prod-b")

	agreed := 24.0
	require.NoError(t, svc.AddItem(ctx, "user-1", productA, 2, nil))
	require.NoError(t, svc.AddItem(ctx, "user-1", productB, 1, &agreed))

	totalItems, err := svc.TotalItems(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, totalItems)

	totalPrice, err := svc.TotalPrice(ctx, "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 124.0, totalPrice, 0.001) // 2x50 + 24
}

func TestTotalPriceSkipsDeletedProducts(t *testing.T) {
	ctx := context.Background()
	catalogStore := testCatalog()
	svc := NewService(catalogStore, NewMemoryStore())
	defer svc.Close()

	productA := mustProduct(t, catalogStore, "prod-a")
	productB := mustProduct(t, catalogStore, "prod-b")
	require.NoError(t, svc.AddItem(ctx, "user-1", productA, 2, nil))
	require.NoError(t, svc.AddItem(ctx, "user-1", productB, 1, nil))

	require.NoError(t, catalogStore.Delete(ctx, "prod-a"))

	// The orphaned line stays visible for removal but no longer prices.
	lines, err := svc.Lines(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	totalPrice, err := svc.TotalPrice(ctx, "user-1")
	require.NoError(t, err)
	assert.InDelta(t, 30.0, totalPrice, 0.001)

	require.NoError(t, svc.RemoveItem(ctx, "user-1", "prod-a"))
	lines, err = svc.Lines(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lines, 1)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	catalogStore := testCatalog()
	svc := NewService(catalogStore, NewMemoryStore())
	defer svc.Close()

	productA := mustProduct(t, catalogStore, "prod-a")
	productB := mustProduct(t, catalogStore, "prod-b")
	require.NoError(t, svc.AddItem(ctx, "guest", productA, 2, nil))
	require.NoError(t, svc.AddItem(ctx, "guest", productB, 1, nil))

	require.NoError(t, svc.UpdateQuantity(ctx, "guest", "prod-a", 0))

	lines, err := svc.Lines(ctx, "guest")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "prod-b", lines[0].ProductID)

	totalItems, err := svc.TotalItems(ctx, "guest")
	require.NoError(t, err)
	assert.Equal(t, 1, totalItems)
}

func TestUpdateQuantitySetsExactValue(t *testing.T) {
	ctx := context.Background()
	catalogStore := testCatalog()
	svc := NewService(catalogStore, NewMemoryStore())
	defer svc.Close()

	productA := mustProduct(t, catalogStore, "prod-a")
	require.NoError(t, svc.AddItem(ctx, "guest", productA, 2, nil))
	require.NoError(t, svc.UpdateQuantity(ctx, "guest", "prod-a", 5))

	lines, err := svc.Lines(ctx, "guest")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity, "update is not additive")
}

func TestSetNegotiatedPriceMissingLineIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := NewService(testCatalog(), NewMemoryStore())
	defer svc.Close()

	require.NoError(t, svc.SetNegotiatedPrice(ctx, "guest", "prod-a", 40))

	lines, err := svc.Lines(ctx, "guest")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	catalogStore := testCatalog()
	store := NewMemoryStore()

	svc := NewService(catalogStore, store)
	productA := mustProduct(t, catalogStore, "prod-a")
	productB := mustProduct(t, catalogStore, "prod-b")
	agreed := 24.0
	require.NoError(t, svc.AddItem(ctx, "user-1", productA, 2, nil))
	require.NoError(t, svc.AddItem(ctx, "user-1", productB, 1, &agreed))
	svc.Close() // flush queued snapshots

	reloaded := NewService(catalogStore, store)
	defer reloaded.Close()

	lines, err := reloaded.Lines(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "prod-a", lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Nil(t, lines[0].NegotiatedPrice)
	assert.Equal(t, "prod-b", lines[1].ProductID)
	require.NotNil(t, lines[1].NegotiatedPrice)
	assert.Equal(t, 24.0, *lines[1].NegotiatedPrice)
}

func TestPartitionsStayIsolated(t *testing.T) {
	ctx := context.Background()
	catalogStore := testCatalog()
	svc := NewService(catalogStore, NewMemoryStore())
	defer svc.Close()

	productA := mustProduct(t, catalogStore, "prod-a")
	require.NoError(t, svc.AddItem(ctx, "guest", productA, 1, nil))

	// Logging in switches to the authenticated partition's own snapshot;
	// guest lines do not merge into it.
	lines, err := svc.Lines(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	guestLines, err := svc.Lines(ctx, "guest")
	require.NoError(t, err)
	assert.Len(t, guestLines, 1)
}

func TestClearEmptiesPartitionAndSnapshot(t *testing.T) {
	ctx := context.Background()
	catalogStore := testCatalog()
	store := NewMemoryStore()
	svc := NewService(catalogStore, store)

	productA := mustProduct(t, catalogStore, "prod-a")
	require.NoError(t, svc.AddItem(ctx, "user-1", productA, 1, nil))
	require.NoError(t, svc.Clear(ctx, "user-1"))
	svc.Close()

	lines, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, lines)
}
