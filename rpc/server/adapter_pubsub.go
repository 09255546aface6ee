package server

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dododb/dodo/lib/pubsub"
	"github.com/dododb/dodo/rpc/common"
	"github.com/go-chi/chi/v5"
)

// NewPubSubServerAdapter creates the adapter serving the /pubsub routes
func NewPubSubServerAdapter(registry *pubsub.Registry) IRPCServerAdapter {
	return &pubSubServerAdapterImpl{registry: registry}
}

type pubSubServerAdapterImpl struct {
	registry *pubsub.Registry
}

func (adapter *pubSubServerAdapterImpl) Mount(r chi.Router) {
	r.Route("/pubsub", func(r chi.Router) {
		r.Post("/subscribe", adapter.subscribe)
		r.Post("/unsubscribe", adapter.unsubscribe)
		r.Get("/subscriptions", adapter.subscriptions)
	})
}

func (adapter *pubSubServerAdapterImpl) subscribe(w http.ResponseWriter, r *http.Request) {
	var req common.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid subscribe request: "+err.Error())
		return
	}
	if req.Key == "" {
		writeBadRequest(w, "key must not be empty")
		return
	}
	if u, err := url.Parse(req.Callback); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		writeBadRequest(w, "callback must be an absolute http(s) url")
		return
	}

	id := adapter.registry.Subscribe(req.Key, req.Callback)
	writeJSON(w, http.StatusOK, common.SubscribeResponse{SubscriptionID: id})
}

func (adapter *pubSubServerAdapterImpl) unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req common.UnsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid unsubscribe request: "+err.Error())
		return
	}
	if req.SubscriptionID == nil {
		writeBadRequest(w, "subscription_id is required")
		return
	}

	id := *req.SubscriptionID
	writeJSON(w, http.StatusOK, common.UnsubscribeResponse{
		SubscriptionID: id,
		Unsubscribed:   adapter.registry.Unsubscribe(id),
	})
}

func (adapter *pubSubServerAdapterImpl) subscriptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, adapter.registry.List())
}
