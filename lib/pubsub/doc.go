// Package pubsub implements key subscriptions and the asynchronous delivery of
// change notifications to webhook callbacks.
//
// Key Components:
//
//   - Registry: Maps subscription ids to (key, callback) pairs. Ids come from an
//     atomic counter starting at 1 and are never reused. The registry is a plain
//     value owned by the server, there is no process wide state.
//
//   - Dispatcher: Implements store.INotifier. For every write it looks up the
//     subscribers of the key and starts one goroutine per subscriber that posts an
//     Event through an IWebhookTransport. Matching is the only work done on the
//     writer's goroutine.
//
//   - IWebhookTransport: The delivery mechanism. NewHTTPWebhookTransport posts the
//     event as JSON and tags each request with a unique X-Dodo-Delivery id.
//
// Delivery Guarantees:
//
//	None. A failed or timed out delivery is logged and counted
//	(dodo_webhook_deliveries_total{result="error"}) and then forgotten. Two updates of
//	the same key may reach a subscriber in any order. The number of concurrent
//	deliveries is not bounded.
//
// Usage Example:
//
//	registry := pubsub.NewRegistry()
//	dispatcher := pubsub.NewDispatcher(registry, pubsub.NewHTTPWebhookTransport(5*time.Second), 5*time.Second, nil)
//
//	id := registry.Subscribe("config", "http://localhost:9000/hook")
//	dispatcher.Notify("config", nil, json.RawMessage(`{"v":1}`))
//	dispatcher.Wait()
//	registry.Unsubscribe(id)
package pubsub
