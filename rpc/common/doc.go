// Package common provides the data structures shared by the dodo server, the
// HTTP client and the command line tools.
//
// Key Components:
//
//   - Routes and bodies (proto.go): The paths of the HTTP API and the JSON request
//     and response bodies of the pub/sub and system routes. StatusFromCode and
//     CodeFromStatus translate between store.RetCode and HTTP status codes, so a
//     store.Error survives the round trip through the API.
//
//   - ServerConfig: Configuration of a server node (endpoint, snapshot settings,
//     retention, webhook timeout, logging). Retention and CleanupEnabled encode the
//     "optional" semantics of the retention settings.
//
//   - ClientConfig: Configuration for client components, controlling endpoints,
//     timeouts, and retry behavior.
//
//   - Logger: Custom logging implementation that plugs into dragonboat's logger
//     facade and writes "LEVEL | package | message" lines. SetLogLevel can be used
//     at runtime to change the level of all dodo loggers.
package common
