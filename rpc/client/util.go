package client

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dododb/dodo/lib/store"
	"github.com/dododb/dodo/rpc/common"
	"github.com/dododb/dodo/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter is a struct that stores all data needed for an implementation of an RPC client
// Used by the RPCStore and RPCPubSub with composition pattern
type rpcClientAdapter struct {
	config    common.ClientConfig
	transport transport.IRPCClientTransport
}

// invokeRPCRequest sends a request and returns the response body of a 2xx response.
// A non 2xx response is converted into a *store.Error whose code is derived from the status.
func invokeRPCRequest(t transport.IRPCClientTransport, method, path string, body []byte) ([]byte, error) {
	status, resp, err := t.Send(method, path, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return resp, nil
	}

	// Decode the error message if the server sent one
	msg := http.StatusText(status)
	var errResp common.ErrorResponse
	if json.Unmarshal(resp, &errResp) == nil && errResp.Error != "" {
		msg = errResp.Error
	}
	return nil, store.NewError(common.CodeFromStatus(status), msg)
}

// invokeJSON sends req encoded as JSON (nil sends no body) and decodes the response into out
func invokeJSON(t transport.IRPCClientTransport, method, path string, req, out interface{}) error {
	var body []byte
	if req != nil {
		var err error
		if body, err = json.Marshal(req); err != nil {
			return err
		}
	}

	resp, err := invokeRPCRequest(t, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return fmt.Errorf("%s %s: invalid response: %w", method, path, err)
	}
	return nil
}
