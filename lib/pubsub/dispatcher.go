package pubsub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/dododb/dodo/lib/db/util"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("pubsub")

var (
	deliveredTotal = metrics.NewCounter(`dodo_webhook_deliveries_total{result="ok"}`)
	failedTotal    = metrics.NewCounter(`dodo_webhook_deliveries_total{result="error"}`)
	deliveryTime   = metrics.NewSummary("dodo_webhook_delivery_duration_seconds")
)

// EventUpdate is the only event type sent by the dispatcher.
const EventUpdate = "update"

// Event is the JSON body posted to a subscriber's callback.
// OldValue is null if the key had no (decodable) value before the write.
type Event struct {
	Key       string          `json:"key"`
	Event     string          `json:"event"`
	OldValue  json.RawMessage `json:"old_value"`
	NewValue  json.RawMessage `json:"new_value"`
	Timestamp string          `json:"timestamp"`
}

// IWebhookTransport delivers a single event to a callback URL.
type IWebhookTransport interface {
	Deliver(ctx context.Context, callback string, event Event) error
}

// Dispatcher fans out change notifications to the matching subscribers.
// It implements store.INotifier.
//
// Delivery is best effort: every subscriber gets its own goroutine, failures are
// logged and never retried, and there is no ordering between deliveries.
type Dispatcher struct {
	registry  *Registry
	transport IWebhookTransport
	timeout   time.Duration
	clock     util.Clock

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// NewDispatcher creates a dispatcher sending the events of registry's subscribers
// through transport. Each delivery is cancelled after timeout (0 disables the limit).
// clock may be nil, in that case the wall clock is used.
func NewDispatcher(registry *Registry, transport IWebhookTransport, timeout time.Duration, clock util.Clock) *Dispatcher {
	if clock == nil {
		clock = util.NewRealClock()
	}
	return &Dispatcher{
		registry:  registry,
		transport: transport,
		timeout:   timeout,
		clock:     clock,
	}
}

// Notify sends an update event for key to every subscriber of the key.
// It returns as soon as the deliveries are started.
func (d *Dispatcher) Notify(key string, oldValue, newValue json.RawMessage) {
	subs := d.registry.Match(key)
	if len(subs) == 0 {
		return
	}

	event := Event{
		Key:       key,
		Event:     EventUpdate,
		OldValue:  oldValue,
		NewValue:  newValue,
		Timestamp: d.clock.Now().Format(time.RFC3339),
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		Logger.Debugf("dispatcher closed, dropping update of key %s for %d subscribers", key, len(subs))
		return
	}
	d.inflight.Add(len(subs))
	d.mu.Unlock()

	for _, sub := range subs {
		go func(sub Subscription) {
			defer d.inflight.Done()
			d.deliver(sub, event)
		}(sub)
	}
}

// Wait blocks until all deliveries started so far have finished.
// Notify must not be called concurrently, use Close while writers may still be running.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

// Close stops accepting new notifications and waits for the deliveries in flight.
// Notify calls after Close are dropped.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.inflight.Wait()
}

func (d *Dispatcher) deliver(sub Subscription, event Event) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	err := d.transport.Deliver(ctx, sub.Callback, event)
	deliveryTime.UpdateDuration(start)

	if err != nil {
		failedTotal.Inc()
		Logger.Warningf("webhook delivery of key %s to %s (subscription %d) failed: %v", event.Key, sub.Callback, sub.ID, err)
		return
	}
	deliveredTotal.Inc()
	Logger.Debugf("webhook for key %s delivered to %s (subscription %d)", event.Key, sub.Callback, sub.ID)
}
