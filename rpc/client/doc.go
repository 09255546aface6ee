// Package client implements HTTP clients for a dodo server.
// It provides an implementation of the store.IStore interface and a pub/sub client
// that talk to a remote server through an transport.IRPCClientTransport.
//
// Key Components:
//
//   - NewRPCStore: Factory function that creates a client implementing the store.IStore
//     interface. Errors returned by the server are converted back into *store.Error, so
//     store.IsNotFound and store.CodeOf work the same for local and remote stores.
//
//   - NewRPCPubSub: Factory function that creates a client for the /pubsub routes
//     (subscribe, unsubscribe, list) and the server version.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  Endpoints:     []string{"localhost:8080"},
//	  TimeoutSecond: 5,
//	  RetryCount:    3,
//	}
//
//	kv, _ := client.NewRPCStore(config, http.NewHttpClientTransport())
//	_ = kv.Set("mykey", json.RawMessage(`{"a":1}`))
//	value, err := kv.Get("mykey")
//	if store.IsNotFound(err) {
//	  ...
//	}
//
//	ps, _ := client.NewRPCPubSub(config, http.NewHttpClientTransport())
//	id, _ := ps.Subscribe("mykey", "http://localhost:9000/hook")
//
// Thread Safety:
//
//	All client implementations are thread-safe and can be used concurrently from
//	multiple goroutines without additional synchronization.
package client
