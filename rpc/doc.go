// Package rpc provides the HTTP API of dodo. It acts as the communication layer
// between clients and the server, exposing the store, the subscription registry
// and a few system routes over plain HTTP with JSON bodies.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including route paths, request and response bodies, configuration
//     structures, and logging.
//
//   - transport: Network communication abstractions. The http subpackage holds
//     the server (net/http) and the round-robin client with retries.
//
//   - client: RPC client implementations of the store interface and the
//     subscription API, allowing applications to interact with a remote server
//     transparently.
//
//   - server: RPC server components that handle incoming requests, including
//     adapters for store, subscription and system routes, and the server
//     lifecycle (snapshot load, autosave, cleanup, graceful shutdown).
package rpc
