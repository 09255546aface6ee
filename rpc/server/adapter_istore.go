package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/dododb/dodo/lib/store"
	"github.com/go-chi/chi/v5"
)

// maxValueSize limits the size of a value accepted by PUT /kv/{key}
const maxValueSize = 16 << 20

// NewIStoreServerAdapter creates the adapter serving the /kv routes
func NewIStoreServerAdapter(s store.IStore) IRPCServerAdapter {
	return &iStoreServerAdapterImpl{store: s}
}

type iStoreServerAdapterImpl struct {
	store store.IStore
}

func (adapter *iStoreServerAdapterImpl) Mount(r chi.Router) {
	r.Route("/kv", func(r chi.Router) {
		r.Get("/", adapter.list)
		r.Get("/all", adapter.getAll)
		r.Get("/all/pretty", adapter.getAllPretty)
		r.Post("/clear", adapter.clear)
		r.Get("/count", adapter.count)

		r.Put("/{key}", adapter.set)
		r.Get("/{key}", adapter.get)
		r.Delete("/{key}", adapter.delete)
		r.Get("/{key}/exists", adapter.exists)
	})
}

// --------------------------------------------------------------------------
// Handlers
// --------------------------------------------------------------------------

func (adapter *iStoreServerAdapterImpl) set(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r)
	if err != nil {
		writeBadRequest(w, "invalid key")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxValueSize))
	if err != nil {
		writeBadRequest(w, "failed to read request body: "+err.Error())
		return
	}

	if err := adapter.store.Set(key, json.RawMessage(body)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (adapter *iStoreServerAdapterImpl) get(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r)
	if err != nil {
		writeBadRequest(w, "invalid key")
		return
	}

	value, err := adapter.store.Get(key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeRaw(w, http.StatusOK, value)
}

func (adapter *iStoreServerAdapterImpl) delete(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r)
	if err != nil {
		writeBadRequest(w, "invalid key")
		return
	}

	if err := adapter.store.Delete(key); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (adapter *iStoreServerAdapterImpl) exists(w http.ResponseWriter, r *http.Request) {
	key, err := keyParam(r)
	if err != nil {
		writeBadRequest(w, "invalid key")
		return
	}

	ok, err := adapter.store.Exists(key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ok)
}

func (adapter *iStoreServerAdapterImpl) list(w http.ResponseWriter, _ *http.Request) {
	keys, err := adapter.store.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, keys)
}

func (adapter *iStoreServerAdapterImpl) getAll(w http.ResponseWriter, _ *http.Request) {
	values, err := adapter.store.GetAll()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

func (adapter *iStoreServerAdapterImpl) getAllPretty(w http.ResponseWriter, _ *http.Request) {
	values, err := adapter.store.GetAll()
	if err != nil {
		writeError(w, err)
		return
	}

	compact, err := json.Marshal(values)
	if err != nil {
		writeError(w, store.NewError(store.RetCInternalError, err.Error()))
		return
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, compact, "", "  "); err != nil {
		writeError(w, store.NewError(store.RetCInternalError, err.Error()))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pretty.Bytes())
}

func (adapter *iStoreServerAdapterImpl) clear(w http.ResponseWriter, _ *http.Request) {
	if err := adapter.store.Clear(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (adapter *iStoreServerAdapterImpl) count(w http.ResponseWriter, _ *http.Request) {
	n, err := adapter.store.Count()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}
