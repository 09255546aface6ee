package client

import (
	"net/http"

	"github.com/dododb/dodo/lib/pubsub"
	"github.com/dododb/dodo/rpc/common"
	"github.com/dododb/dodo/rpc/transport"
)

// RPCPubSub manages subscriptions and queries the system routes of a dodo server
type RPCPubSub interface {
	// Subscribe registers callback for key and returns the subscription id
	Subscribe(key, callback string) (id uint64, err error)
	// Unsubscribe removes a subscription and reports whether it existed
	Unsubscribe(id uint64) (unsubscribed bool, err error)
	// Subscriptions returns all active subscriptions
	Subscriptions() (subs []pubsub.Subscription, err error)
	// Version returns the version reported by the server
	Version() (version string, err error)
}

// NewRPCPubSub creates a new pub/sub client
func NewRPCPubSub(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
) (RPCPubSub, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcPubSub{
		rpcClientAdapter{
			config:    config,
			transport: transport,
		},
	}, nil
}

type rpcPubSub struct {
	rpcClientAdapter
}

func (c *rpcPubSub) Subscribe(key, callback string) (uint64, error) {
	var resp common.SubscribeResponse
	err := invokeJSON(c.transport, http.MethodPost, common.PathSubscribe, common.SubscribeRequest{
		Key:      key,
		Callback: callback,
	}, &resp)
	return resp.SubscriptionID, err
}

func (c *rpcPubSub) Unsubscribe(id uint64) (bool, error) {
	var resp common.UnsubscribeResponse
	err := invokeJSON(c.transport, http.MethodPost, common.PathUnsubscribe, common.UnsubscribeRequest{
		SubscriptionID: &id,
	}, &resp)
	return resp.Unsubscribed, err
}

func (c *rpcPubSub) Subscriptions() (subs []pubsub.Subscription, err error) {
	err = invokeJSON(c.transport, http.MethodGet, common.PathSubscriptions, nil, &subs)
	return subs, err
}

func (c *rpcPubSub) Version() (string, error) {
	var resp common.VersionResponse
	err := invokeJSON(c.transport, http.MethodGet, common.PathVersion, nil, &resp)
	return resp.Version, err
}
