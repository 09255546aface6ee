package common

import (
	"net/http"

	"github.com/dododb/dodo/lib/store"
)

// --------------------------------------------------------------------------
// Routes
// --------------------------------------------------------------------------

// Paths of the HTTP API. Key routes take the (path escaped) key as last segment.
const (
	PathKV            = "/kv"
	PathKVAll         = "/kv/all"
	PathKVAllPretty   = "/kv/all/pretty"
	PathKVClear       = "/kv/clear"
	PathKVCount       = "/kv/count"
	PathSubscribe     = "/pubsub/subscribe"
	PathUnsubscribe   = "/pubsub/unsubscribe"
	PathSubscriptions = "/pubsub/subscriptions"
	PathAlive         = "/system/alive"
	PathVersion       = "/system/version"
	PathStats         = "/system/stats"
	PathMetrics       = "/metrics"
)

// --------------------------------------------------------------------------
// Request & Response Bodies
// --------------------------------------------------------------------------

// SubscribeRequest is the body of POST /pubsub/subscribe
type SubscribeRequest struct {
	Key      string `json:"key"`
	Callback string `json:"callback"`
}

// SubscribeResponse is the response to POST /pubsub/subscribe
type SubscribeResponse struct {
	SubscriptionID uint64 `json:"subscription_id"`
}

// UnsubscribeRequest is the body of POST /pubsub/unsubscribe.
// SubscriptionID is a pointer so a missing id can be told apart from 0.
type UnsubscribeRequest struct {
	SubscriptionID *uint64 `json:"subscription_id"`
}

// UnsubscribeResponse is the response to POST /pubsub/unsubscribe
type UnsubscribeResponse struct {
	SubscriptionID uint64 `json:"subscription_id"`
	Unsubscribed   bool   `json:"unsubscribed"`
}

// VersionResponse is the response to GET /system/version
type VersionResponse struct {
	Version string `json:"version"`
}

// StatsResponse is the response to GET /system/stats
type StatsResponse struct {
	Version       string                            `json:"version"`
	UptimeSeconds int64                             `json:"uptime_seconds"`
	Subscriptions int                               `json:"subscriptions"`
	Database      interface{}                       `json:"database"`
	Requests      map[string]map[string]interface{} `json:"requests"`
}

// ErrorResponse is the body of every non 2xx response of the KV and pub/sub routes
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --------------------------------------------------------------------------
// Error mapping
// --------------------------------------------------------------------------

// StatusFromCode maps a store return code to the HTTP status used by the API
func StatusFromCode(code store.RetCode) int {
	switch code {
	case store.RetCSuccess:
		return http.StatusOK
	case store.RetCNotFound:
		return http.StatusNotFound
	case store.RetCDecodeError:
		return http.StatusUnprocessableEntity
	case store.RetCInvalidValue:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// CodeFromStatus is the inverse of StatusFromCode, used by the client
func CodeFromStatus(status int) store.RetCode {
	switch status {
	case http.StatusOK, http.StatusNoContent:
		return store.RetCSuccess
	case http.StatusNotFound:
		return store.RetCNotFound
	case http.StatusUnprocessableEntity:
		return store.RetCDecodeError
	case http.StatusBadRequest:
		return store.RetCInvalidValue
	default:
		return store.RetCInternalError
	}
}
