package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dododb/dodo/lib/store"
	"github.com/dododb/dodo/rpc/common"
	"github.com/go-chi/chi/v5"
)

// writeJSON encodes v as the response body with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Logger.Warningf("failed to write response: %v", err)
	}
}

// writeRaw writes an already encoded JSON document
func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		Logger.Warningf("failed to write response: %v", err)
	}
}

// writeError writes an ErrorResponse. The status is derived from the store
// return code carried by err.
func writeError(w http.ResponseWriter, err error) {
	code := store.CodeOf(err)
	writeJSON(w, common.StatusFromCode(code), common.ErrorResponse{
		Error: err.Error(),
		Code:  code.String(),
	})
}

// writeBadRequest writes an ErrorResponse with status 400
func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, common.ErrorResponse{
		Error: msg,
		Code:  store.RetCInvalidValue.String(),
	})
}

// keyParam returns the unescaped key path parameter.
// chi matches on RawPath only when it is set, otherwise the parameter is
// already decoded and must not be unescaped again.
func keyParam(r *http.Request) (string, error) {
	key := chi.URLParam(r, "key")
	if r.URL.RawPath == "" {
		return key, nil
	}
	return url.PathUnescape(key)
}
