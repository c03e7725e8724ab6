package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
	"github.com/kartikshukla17/mashoor-landing-project/internal/favorites"
)

type fakeClient struct {
	mu       sync.Mutex
	records  []*kgo.Record
	err      error
	flushed  bool
	closed   bool
	flushErr error
}

func (f *fakeClient) Produce(_ context.Context, r *kgo.Record, promise func(*kgo.Record, error)) {
	f.mu.Lock()
	f.records = append(f.records, r)
	f.mu.Unlock()
	promise(r, f.err)
}

func (f *fakeClient) Flush(context.Context) error {
	f.flushed = true
	return f.flushErr
}

func (f *fakeClient) Close() { f.closed = true }

func TestKafkaEmitter_EmitsAvroRecord(t *testing.T) {
	cl := &fakeClient{}
	e := NewKafkaEmitter(cl, zap.NewNop())
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return at }

	e.Emit("sid-1", favorites.Change{
		Kind:    favorites.KindAdd,
		ID:      "1",
		Product: catalog.ProductView{ID: "1", Slug: "classic-leather-belt"},
	})

	require.Len(t, cl.records, 1)
	rec := cl.records[0]
	assert.Equal(t, []byte("sid-1"), rec.Key)

	ev, err := DecodeFavoriteEvent(rec.Value)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", ev.SessionID)
	assert.Equal(t, "add", ev.Kind)
	assert.Equal(t, "1", ev.ProductID)
	assert.Equal(t, "classic-leather-belt", ev.Slug)
	assert.True(t, at.Equal(ev.At))
}

func TestKafkaEmitter_DeliveryErrorIsSwallowed(t *testing.T) {
	cl := &fakeClient{err: errors.New("broker down")}
	e := NewKafkaEmitter(cl, zap.NewNop())

	assert.NotPanics(t, func() {
		e.Emit("sid", favorites.Change{Kind: favorites.KindClear})
	})
	assert.Len(t, cl.records, 1)
}

func TestKafkaEmitter_CloseFlushes(t *testing.T) {
	cl := &fakeClient{flushErr: context.DeadlineExceeded}
	err := NewKafkaEmitter(cl, nil).Close(context.Background())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, cl.flushed)
	assert.True(t, cl.closed)
}

func TestKafkaEmitter_SubscribedToRegistry(t *testing.T) {
	cl := &fakeClient{}
	e := NewKafkaEmitter(cl, zap.NewNop())

	reg := favorites.NewRegistry(favorites.RegistryOptions{})
	reg.Subscribe(e.Emit)

	s := reg.Get(context.Background(), "sid")
	s.Toggle(catalog.ProductView{ID: "1", Slug: "a"})
	s.Toggle(catalog.ProductView{ID: "1", Slug: "a"})

	require.Len(t, cl.records, 2)
	second, err := DecodeFavoriteEvent(cl.records[1].Value)
	require.NoError(t, err)
	assert.Equal(t, "remove", second.Kind)
}

func TestKafkaEmitter_ClearEvent(t *testing.T) {
	cl := &fakeClient{}
	e := NewKafkaEmitter(cl, zap.NewNop())

	reg := favorites.NewRegistry(favorites.RegistryOptions{})
	reg.Subscribe(e.Emit)

	s := reg.Get(context.Background(), "sid")
	s.Add(catalog.ProductView{ID: "1", Slug: "a"})
	s.Add(catalog.ProductView{ID: "2", Slug: "b"})
	s.Clear()
	s.Clear()

	require.Len(t, cl.records, 3, "clearing an empty store emits nothing")
	last, err := DecodeFavoriteEvent(cl.records[2].Value)
	require.NoError(t, err)
	assert.Equal(t, "sid", last.SessionID)
	assert.Equal(t, "clear", last.Kind)
	assert.Empty(t, last.ProductID)
	assert.Empty(t, last.Slug)
}

func TestNop(t *testing.T) {
	var e Emitter = Nop{}
	e.Emit("sid", favorites.Change{Kind: favorites.KindAdd})
	assert.NoError(t, e.Close(context.Background()))
}
