package server

import (
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/dododb/dodo/lib/db"
	"github.com/dododb/dodo/lib/pubsub"
	"github.com/dododb/dodo/rpc/common"
	"github.com/go-chi/chi/v5"
	gometrics "github.com/rcrowley/go-metrics"
)

// NewSystemServerAdapter creates the adapter serving the /system routes and /metrics
func NewSystemServerAdapter(
	version string,
	database db.KVDB,
	registry *pubsub.Registry,
	timers gometrics.Registry,
	startedAt time.Time,
) IRPCServerAdapter {
	set := metrics.NewSet()
	set.NewGauge("dodo_keys", func() float64 { return float64(database.Len()) })
	set.NewGauge("dodo_subscriptions", func() float64 { return float64(registry.Count()) })

	return &systemServerAdapterImpl{
		version:   version,
		db:        database,
		registry:  registry,
		timers:    timers,
		startedAt: startedAt,
		gauges:    set,
	}
}

type systemServerAdapterImpl struct {
	version   string
	db        db.KVDB
	registry  *pubsub.Registry
	timers    gometrics.Registry
	startedAt time.Time
	gauges    *metrics.Set
}

func (adapter *systemServerAdapterImpl) Mount(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Get("/alive", adapter.alive)
		r.Get("/version", adapter.versionHandler)
		r.Get("/stats", adapter.stats)
	})
	r.Get(common.PathMetrics, adapter.metrics)
}

func (adapter *systemServerAdapterImpl) alive(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

func (adapter *systemServerAdapterImpl) versionHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, common.VersionResponse{Version: adapter.version})
}

func (adapter *systemServerAdapterImpl) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, common.StatsResponse{
		Version:       adapter.version,
		UptimeSeconds: int64(time.Since(adapter.startedAt) / time.Second),
		Subscriptions: adapter.registry.Count(),
		Database:      adapter.db.GetInfo(),
		Requests:      adapter.timers.GetAll(),
	})
}

func (adapter *systemServerAdapterImpl) metrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	metrics.WritePrometheus(w, true)
	adapter.gauges.WritePrometheus(w)
}
