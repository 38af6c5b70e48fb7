package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskline/ticket-desk/internal/events"
)

type recorder struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, e.ID)
	return r.err
}

func TestEventWorker_DeliversInOrder(t *testing.T) {
	rec := &recorder{}
	w := NewEventWorker(rec.handle, 8, nil)
	w.Start(context.Background())

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, w.Enqueue(context.Background(), events.Event{ID: id}))
	}
	w.Stop()

	assert.Equal(t, []string{"a", "b", "c"}, rec.ids)
	assert.Zero(t, w.Dropped())
}

func TestEventWorker_DropsWhenFull(t *testing.T) {
	rec := &recorder{}
	w := NewEventWorker(rec.handle, 1, nil)

	require.NoError(t, w.Enqueue(context.Background(), events.Event{ID: "kept"}))
	require.NoError(t, w.Enqueue(context.Background(), events.Event{ID: "lost"}))
	assert.Equal(t, int64(1), w.Dropped())

	w.Start(context.Background())
	w.Stop()
	assert.Equal(t, []string{"kept"}, rec.ids)
}

func TestEventWorker_AfterStop(t *testing.T) {
	rec := &recorder{err: errors.New("downstream unavailable")}
	w := NewEventWorker(rec.handle, 4, nil)
	w.Start(context.Background())

	require.NoError(t, w.Enqueue(context.Background(), events.Event{ID: "first"}))
	w.Stop()
	w.Stop()

	require.NoError(t, w.Enqueue(context.Background(), events.Event{ID: "late"}))
	assert.Equal(t, []string{"first"}, rec.ids)
	assert.Equal(t, int64(1), w.Dropped())
}
