package negotiation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bargainmart/backend/internal/config"
	"github.com/bargainmart/backend/internal/model/catalog"
	"github.com/bargainmart/backend/internal/model/chat"
)

// fakeCompleter returns canned replies or a canned error.
type fakeCompleter struct {
	reply string
	err   error

	lastSystem  string
	lastHistory []chat.Message
	lastQuery   string
}

func (f *fakeCompleter) Generate(_ context.Context, system string, history []chat.Message, query string) (string, error) {
	f.lastSystem = system
	f.lastHistory = history
	f.lastQuery = query
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testService(completer *fakeCompleter) *Service {
	store := catalog.NewMemoryStore([]catalog.Product{{
		ID:          "prod-cam",
		Name:        "Camera",
		Description: "Mirrorless camera",
		Price:       200,
		Stock:       5,
		CreatedAt:   time.Now().UTC(),
	}})
	cfg := config.NegotiationConfig{
		FloorRatio:   0.8,
		HistoryLimit: 20,
		CouponCodes:  []string{"SAVE10", "WELCOME20"},
	}
	return NewService(completer, store, cfg)
}

func TestOpenQuotesListPrice(t *testing.T) {
	svc := testService(&fakeCompleter{})
	ctx := context.Background()

	session, opening, err := svc.Open(ctx, "prod-cam", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "prod-cam", session.ProductID)
	assert.Equal(t, chat.RoleAssistant, opening.Role)
	assert.Contains(t, opening.Content, "$200.00")
}

func TestOpenUnknownProduct(t *testing.T) {
	svc := testService(&fakeCompleter{})

	_, _, err := svc.Open(context.Background(), "missing", "")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestSendAcceptsPriceWithinBounds(t *testing.T) {
	completer := &fakeCompleter{reply: "Alright, I can do $170 for you."}
	svc := testService(completer)
	ctx := context.Background()

	session, _, err := svc.Open(ctx, "prod-cam", "user-1")
	require.NoError(t, err)

	reply, err := svc.Send(ctx, session.ID, "Can you go lower?")
	require.NoError(t, err)
	require.NotNil(t, reply.AcceptedPrice)
	assert.Equal(t, 170.0, *reply.AcceptedPrice)

	transcript, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, StateAccepted, transcript.State)
}

func TestSendRejectsPriceAboveList(t *testing.T) {
	completer := &fakeCompleter{reply: "Best I can offer is $500."}
	svc := testService(completer)
	ctx := context.Background()

	session, _, err := svc.Open(ctx, "prod-cam", "user-1")
	require.NoError(t, err)

	reply, err := svc.Send(ctx, session.ID, "What about a discount?")
	require.NoError(t, err)
	assert.Nil(t, reply.AcceptedPrice, "a price above list must never be accepted")

	transcript, err := svc.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingReply, transcript.State)
}

func TestSendRejectsPriceBelowFloor(t *testing.T) {
	// Floor is 80% of $200 = $160. The model is not trusted to hold it.
	completer := &fakeCompleter{reply: "Fine, $150 it is."}
	svc := testService(completer)
	ctx := context.Background()

	session, _, err := svc.Open(ctx, "prod-cam", "user-1")
	require.NoError(t, err)

	reply, err := svc.Send(ctx, session.ID, "I want it for 150")
	require.NoError(t, err)
	assert.Nil(t, reply.AcceptedPrice)
}

func TestSendAcceptsAdvertisedMinimum(t *testing.T) {
	// 80% of $129.99 is 103.992; the prompt advertises "$103.99" and a reply
	// agreeing to exactly that amount must be accepted.
	completer := &fakeCompleter{reply: "You drive a hard bargain. $103.99 it is."}
	store := catalog.NewMemoryStore([]catalog.Product{{
		ID:        "prod-tracker",
		Name:      "Fitness Tracker",
		Price:     129.99,
		Stock:     10,
		CreatedAt: time.Now().UTC(),
	}})
	cfg := config.NegotiationConfig{FloorRatio: 0.8, HistoryLimit: 20}
	svc := NewService(completer, store, cfg)
	ctx := context.Background()

	session, _, err := svc.Open(ctx, "prod-tracker", "user-1")
	require.NoError(t, err)

	reply, err := svc.Send(ctx, session.ID, "Can you do 103.99?")
	require.NoError(t, err)
	assert.Contains(t, completer.lastSystem, "$103.99")
	require.NotNil(t, reply.AcceptedPrice)
	assert.Equal(t, 103.99, *reply.AcceptedPrice)
}

func TestSendUnavailableKeepsSessionUsable(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("upstream 503")}
	svc := testService(completer)
	ctx := context.Background()

	session, _, err := svc.Open(ctx, "prod-cam", "user-1")
	require.NoError(t, err)

	reply, err := svc.Send(ctx, session.ID, "Hello?")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, reply.Unavailable)
	assert.Contains(t, reply.Message.Content, "try again")

	// Retry succeeds once the service is back.
	completer.err = nil
	completer.reply = "Sure, $180 works."
	retry, err := svc.Send(ctx, session.ID, "Still there?")
	require.NoError(t, err)
	require.NotNil(t, retry.AcceptedPrice)
	assert.Equal(t, 180.0, *retry.AcceptedPrice)
}

func TestSendUnknownSession(t *testing.T) {
	svc := testService(&fakeCompleter{})

	_, err := svc.Send(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSendForwardsProductContext(t *testing.T) {
	completer := &fakeCompleter{reply: "Let me think."}
	svc := testService(completer)
	ctx := context.Background()

	session, _, err := svc.Open(ctx, "prod-cam", "user-1")
	require.NoError(t, err)

	_, err = svc.Send(ctx, session.ID, "How about $170?")
	require.NoError(t, err)

	assert.Contains(t, completer.lastSystem, "Camera")
	assert.Contains(t, completer.lastSystem, "$200.00")
	assert.Contains(t, completer.lastSystem, "$160.00") // advisory floor
	assert.Contains(t, completer.lastSystem, "SAVE10")
	assert.Equal(t, "How about $170?", completer.lastQuery)
	// History carries the opening message but not the query turn itself.
	require.Len(t, completer.lastHistory, 1)
	assert.Equal(t, chat.RoleAssistant, completer.lastHistory[0].Role)
}
