// Package server implements the dodo HTTP server. It wires the store, the
// persistence manager, the subscription registry and the webhook dispatcher
// together and exposes them through a chi router.
//
// The package focuses on:
//   - Adapters that translate HTTP requests into calls of one service each
//   - The server lifecycle: snapshot load, background loops, graceful shutdown, final save
//   - Operational endpoints (liveness, version, request statistics, Prometheus metrics)
//
// Key Components:
//
//   - IRPCServerAdapter: Interface for all adapters. Each adapter mounts its own
//     route group on the router.
//
//   - NewIStoreServerAdapter: Serves /kv. Values travel as raw JSON, errors as
//     common.ErrorResponse with the status given by common.StatusFromCode
//     (404 NotFound, 422 DecodeError, 400 InvalidValue).
//
//   - NewPubSubServerAdapter: Serves /pubsub (subscribe, unsubscribe, subscriptions).
//
//   - NewSystemServerAdapter: Serves /system/alive, /system/version, /system/stats
//     (go-metrics request timers per route and database info) and /metrics.
//
//   - RPCServer: Owns all components. Serve runs the HTTP listener, the autosave loop
//     and (if retention and cleanup interval are configured) the cleanup loop in one
//     errgroup. When the context is cancelled the listener is shut down, in-flight
//     webhooks are awaited and one final snapshot is written. Shutdown errors and a
//     failed final save are combined with go-multierror.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Endpoint:                "0.0.0.0:8080",
//	  SnapshotPath:            "data/snapshot.json",
//	  SnapshotIntervalSeconds: 30,
//	  RetentionSeconds:        -1,
//	  WebhookTimeoutSecond:    5,
//	  ShutdownTimeoutSecond:   10,
//	  LogLevel:                "info",
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	s := server.NewRPCServer(config, http.NewHttpServerTransport(), nil, nil)
//	if err := s.Serve(ctx); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent requests.
//	Writes to the store are serialized by the store lock, webhook deliveries run on
//	their own goroutines.
package server
