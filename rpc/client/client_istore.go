package client

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dododb/dodo/lib/store"
	"github.com/dododb/dodo/rpc/common"
	"github.com/dododb/dodo/rpc/transport"
)

// NewRPCStore creates a new RPC store
// The function takes a client config and a transport as parameters
// It returns a store.IStore and an error
func NewRPCStore(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
) (store.IStore, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	return &rpcStore{
		rpcClientAdapter{
			config:    config,
			transport: transport,
		},
	}, nil
}

type rpcStore struct {
	rpcClientAdapter
}

func keyPath(key string) string {
	return common.PathKV + "/" + url.PathEscape(key)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Set(key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return store.NewError(store.RetCInvalidValue, "value is not valid json")
	}
	_, err := invokeRPCRequest(i.transport, http.MethodPut, keyPath(key), value)
	return err
}

func (i *rpcStore) Get(key string) (json.RawMessage, error) {
	resp, err := invokeRPCRequest(i.transport, http.MethodGet, keyPath(key), nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp), nil
}

func (i *rpcStore) Delete(key string) error {
	_, err := invokeRPCRequest(i.transport, http.MethodDelete, keyPath(key), nil)
	return err
}

func (i *rpcStore) List() (keys []string, err error) {
	err = invokeJSON(i.transport, http.MethodGet, common.PathKV, nil, &keys)
	return keys, err
}

func (i *rpcStore) GetAll() (values map[string]json.RawMessage, err error) {
	err = invokeJSON(i.transport, http.MethodGet, common.PathKVAll, nil, &values)
	return values, err
}

func (i *rpcStore) Exists(key string) (ok bool, err error) {
	err = invokeJSON(i.transport, http.MethodGet, keyPath(key)+"/exists", nil, &ok)
	return ok, err
}

func (i *rpcStore) Clear() error {
	_, err := invokeRPCRequest(i.transport, http.MethodPost, common.PathKVClear, nil)
	return err
}

func (i *rpcStore) Count() (n int, err error) {
	err = invokeJSON(i.transport, http.MethodGet, common.PathKVCount, nil, &n)
	return n, err
}
