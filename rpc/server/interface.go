package server

import (
	"github.com/go-chi/chi/v5"
)

// IRPCServerAdapter is the interface for all server adapters.
// An adapter translates HTTP requests of one route group into calls of a
// service (the store, the subscription registry, ...) and encodes the results.
type IRPCServerAdapter interface {
	// Mount registers the routes of the adapter on r
	Mount(r chi.Router)
}
