package server

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/dododb/dodo/lib/db"
	"github.com/dododb/dodo/lib/db/engines/rwmap"
	"github.com/dododb/dodo/lib/db/util"
	"github.com/dododb/dodo/lib/persistence"
	"github.com/dododb/dodo/lib/pubsub"
	"github.com/dododb/dodo/lib/store"
	"github.com/dododb/dodo/lib/store/lstore"
	"github.com/dododb/dodo/rpc/common"
	"github.com/dododb/dodo/rpc/transport"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-multierror"
	"github.com/lni/dragonboat/v4/logger"
	gometrics "github.com/rcrowley/go-metrics"
	"golang.org/x/sync/errgroup"
)

var Logger = logger.GetLogger("rpc")

// RPCServer wires the store, the persistence manager and the pub/sub
// components together and exposes them over HTTP.
type RPCServer struct {
	config    common.ServerConfig
	transport transport.IRPCServerTransport
	clock     util.Clock

	db          db.KVDB
	store       store.IStore
	registry    *pubsub.Registry
	dispatcher  *pubsub.Dispatcher
	persistence *persistence.Manager

	router http.Handler
}

// NewRPCServer creates a new server. Nothing is loaded or started before Serve is called.
// webhooks may be nil, in that case webhooks are posted over HTTP with the configured timeout.
// clock may be nil, in that case the wall clock is used.
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		http.NewHttpServerTransport(),
//		nil,
//		nil,
//	)
//
//	if err := s.Serve(ctx); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	webhooks pubsub.IWebhookTransport,
	clock util.Clock,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	if clock == nil {
		clock = util.NewRealClock()
	}
	webhookTimeout := time.Duration(config.WebhookTimeoutSecond) * time.Second
	if webhooks == nil {
		webhooks = pubsub.NewHTTPWebhookTransport(webhookTimeout)
	}

	database := rwmap.NewRWMapDB()
	registry := pubsub.NewRegistry()
	dispatcher := pubsub.NewDispatcher(registry, webhooks, webhookTimeout, clock)

	s := &RPCServer{
		config:      config,
		transport:   transport,
		clock:       clock,
		db:          database,
		store:       lstore.NewLocalStore(database, dispatcher, clock),
		registry:    registry,
		dispatcher:  dispatcher,
		persistence: persistence.NewManager(database, clock),
	}
	s.router = s.buildRouter()
	return s
}

// Handler returns the HTTP handler serving the API
func (s *RPCServer) Handler() http.Handler {
	return s.router
}

// Store returns the store served by the server
func (s *RPCServer) Store() store.IStore {
	return s.store
}

// Registry returns the subscription registry of the server
func (s *RPCServer) Registry() *pubsub.Registry {
	return s.registry
}

func (s *RPCServer) buildRouter() http.Handler {
	timers := gometrics.NewRegistry()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(timerMiddleware(timers))

	adapters := []IRPCServerAdapter{
		NewIStoreServerAdapter(s.store),
		NewPubSubServerAdapter(s.registry),
		NewSystemServerAdapter(s.config.ServerVersion, s.db, s.registry, timers, s.clock.Now()),
	}
	for _, adapter := range adapters {
		adapter.Mount(r)
	}
	return r
}

// Serve loads the snapshot, starts the background loops and serves the API
// until ctx is cancelled or the transport fails. On return the HTTP server
// has been shut down and a final snapshot has been written.
func (s *RPCServer) Serve(ctx context.Context) error {
	Logger.Infof("Starting dodo server %s", s.config.ServerVersion)
	Logger.Infof("%s", s.config.String())

	snapshotPath := s.config.SnapshotPath
	if _, err := s.persistence.LoadSnapshot(snapshotPath, s.config.Retention()); err != nil {
		// a broken snapshot must not keep the server from starting
		Logger.Warningf("starting with an empty store: %v", err)
	}

	s.transport.RegisterHandler(s.router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.transport.Listen(s.config); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(s.config.ShutdownTimeoutSecond)*time.Second)
		defer cancel()
		if err := s.transport.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.persistence.AutosaveLoop(gctx, snapshotPath, time.Duration(s.config.SnapshotIntervalSeconds)*time.Second)
		return nil
	})

	if s.config.CleanupEnabled() {
		retention := *s.config.Retention()
		g.Go(func() error {
			s.persistence.CleanupLoop(gctx, retention, time.Duration(s.config.CleanupIntervalSeconds)*time.Second)
			return nil
		})
	} else {
		Logger.Infof("cleanup disabled (requires retention-seconds and cleanup-interval)")
	}

	var result *multierror.Error
	if err := g.Wait(); err != nil {
		result = multierror.Append(result, err)
	}

	// deliveries are bounded by the webhook timeout
	if s.config.WebhookTimeoutSecond > 0 {
		s.dispatcher.Close()
	}

	Logger.Infof("writing final snapshot to %s", snapshotPath)
	if err := s.persistence.SaveSnapshot(snapshotPath); err != nil {
		result = multierror.Append(result, fmt.Errorf("final snapshot: %w", err))
	}

	Logger.Infof("dodo server stopped")
	return result.ErrorOrNil()
}
