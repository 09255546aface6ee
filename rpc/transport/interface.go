package transport

import (
	"context"
	"net/http"

	"github.com/dododb/dodo/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// IRPCServerTransport is the interface for the server side of the transport layer.
// It owns the listening socket and hands every request to the registered handler.
type IRPCServerTransport interface {
	// RegisterHandler registers the handler that serves all requests.
	// It must be called before Listen.
	RegisterHandler(handler http.Handler)
	// Listen starts the transport layer and blocks until the transport is shut down.
	// It returns nil after a graceful Shutdown.
	Listen(config common.ServerConfig) error
	// Shutdown stops accepting new requests and waits for in-flight requests to
	// finish or ctx to expire.
	Shutdown(ctx context.Context) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the client side of the transport layer
type IRPCClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends a request to one of the servers and returns the status code and body
	// of the response. Only transport failures are reported as error, an error status
	// is left to the caller.
	Send(method, path string, body []byte) (status int, resp []byte, err error)
	// Close closes the transport connection
	Close() error
}
