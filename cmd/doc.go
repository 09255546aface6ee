// Package cmd implements the command-line interface of dodo. It provides a
// hierarchical command structure with operations for running the server and
// interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (get, set, del, all, etc.)
//   - pubsub: Commands for webhook subscriptions (subscribe, unsubscribe, list, listen)
//   - serve: Commands for starting and configuring the dodo server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See dodo -help for a list of all commands.
package cmd
