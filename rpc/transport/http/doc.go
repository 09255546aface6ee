// Package http implements the HTTP transport layer of dodo. It provides concrete
// implementations of the transport interfaces defined in the parent package.
//
// Key Components:
//
//   - httpClientTransport: Implements IRPCClientTransport. Requests are spread over
//     all configured endpoints in round-robin order. A request that fails on the
//     transport level (connection refused, timeout) is retried on the next endpoint
//     up to RetryCount times. Responses with an error status are not retried.
//
//   - httpServerTransport: Implements IRPCServerTransport on top of net/http.Server.
//     Every request passes a logging middleware that writes method, path, status and
//     duration at debug level. Shutdown drains in-flight requests.
//
// Thread Safety:
//
//	The client transport is thread-safe and can be used concurrently. It uses
//	atomic operations for the round-robin counter to ensure thread safety when
//	selecting server endpoints.
package http
