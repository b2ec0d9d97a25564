package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, ttl, nil), mr
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	d := NewDraft(VariantFull)
	d.SelectedServiceIDs = []string{"svc-1", "svc-2"}
	require.NoError(t, store.Save(ctx, d))

	loaded, err := store.Load(ctx, d.SessionID)
	require.NoError(t, err)
	assert.Equal(t, d.SessionID, loaded.SessionID)
	assert.Equal(t, []string{"svc-1", "svc-2"}, loaded.SelectedServiceIDs)
	assert.Equal(t, StepService, loaded.Step)
}

func TestSessionStoreMissingSession(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	d := NewDraft(VariantQuick)
	require.NoError(t, store.Save(ctx, d))

	// The TTL is the draft lifecycle: past it the session is simply gone.
	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx, d.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStoreDelete(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	d := NewDraft(VariantFull)
	require.NoError(t, store.Save(ctx, d))
	require.NoError(t, store.Delete(ctx, d.SessionID))

	_, err := store.Load(ctx, d.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
