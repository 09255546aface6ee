// Package transport defines the interfaces between the dodo HTTP API and the network.
// It provides a common contract for the server side (serving an http.Handler with
// graceful shutdown) and the client side (sending requests to a set of endpoints).
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handles connection management, endpoint selection and retries.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     own the listener and forward every request to the registered handler.
//
// The http package (github.com/dododb/dodo/rpc/transport/http) provides the
// implementation of both interfaces.
package transport
