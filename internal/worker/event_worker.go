package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/deskline/ticket-desk/internal/events"
	"github.com/deskline/ticket-desk/internal/service"
)

const handleTimeout = 5 * time.Second

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// EventWorker moves event delivery off the request path. Events are queued
// by Enqueue and handed to the handler by a single goroutine in the order
// they arrived. When the queue is full new events are dropped.
type EventWorker struct {
	handle  events.EventHandler
	logger  *zap.Logger
	queue   chan events.Event
	mu      sync.RWMutex
	closed  bool
	done    chan struct{}
	dropped atomic.Int64
}

// NewEventWorker builds a worker with room for buffer pending events.
func NewEventWorker(handle events.EventHandler, buffer int, logger *zap.Logger) *EventWorker {
	if buffer <= 0 {
		buffer = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventWorker{
		handle: handle,
		logger: logger,
		queue:  make(chan events.Event, buffer),
		done:   make(chan struct{}),
	}
}

// Enqueue satisfies events.EventHandler and never blocks.
func (w *EventWorker) Enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		w.drop(event, "worker stopped")
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.drop(event, "queue full")
	}
	return nil
}

func (w *EventWorker) drop(event events.Event, reason string) {
	w.dropped.Add(1)
	w.logger.Warn("dropping event",
		zap.String("reason", reason),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
}

// Dropped reports how many events were discarded.
func (w *EventWorker) Dropped() int64 {
	return w.dropped.Load()
}

// Start launches the delivery goroutine. ctx bounds every handler call.
func (w *EventWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		for event := range w.queue {
			w.deliver(ctx, event)
		}
	}()
}

func (w *EventWorker) deliver(ctx context.Context, event events.Event) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), handleTimeout)
	defer cancel()

	if err := w.handle(callCtx, event); err != nil {
		w.logger.Error("event delivery failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}

// Stop refuses further events, drains the queue and waits for the
// goroutine started by Start to exit.
func (w *EventWorker) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	<-w.done
}
