package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dododb/dodo/rpc/common"
	"github.com/dododb/dodo/rpc/transport"
)

func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

type httpClientTransport struct {
	serverURLs []*url.URL
	client     *http.Client
	counter    uint32
	retryCount int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (transport *httpClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints configured")
	}

	// Parse each server URL
	parsedURLs := make([]*url.URL, len(config.Endpoints))
	for i, server := range config.Endpoints {
		if !strings.Contains(server, "://") {
			server = "http://" + server
		}
		parsedURL, err := url.Parse(server)
		if err != nil {
			return err
		}
		parsedURLs[i] = parsedURL
	}

	// Create client with default transport
	client := &http.Client{
		Timeout: time.Duration(config.TimeoutSecond) * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	// Set the client and server URLs
	transport.client = client
	transport.serverURLs = parsedURLs
	transport.counter = 0
	transport.retryCount = max(1, config.RetryCount)

	return nil
}

func (transport *httpClientTransport) Send(method, path string, body []byte) (int, []byte, error) {
	// Check if the transport is initialized
	if transport.client == nil {
		return 0, nil, fmt.Errorf("http transport not initialized")
	}

	var lastErr error
	for i := 0; i < transport.retryCount; i++ {
		// Select the next server via round-robin, a retry moves on to the next endpoint
		idx := atomic.AddUint32(&transport.counter, 1) % uint32(len(transport.serverURLs))
		requestURL := strings.TrimSuffix(transport.serverURLs[idx].String(), "/") + path

		status, resp, err := transport.do(method, requestURL, body)
		if err == nil {
			return status, resp, nil
		}
		lastErr = err
		Logger.Debugf("request %s %s failed (attempt %d/%d): %v", method, requestURL, i+1, transport.retryCount, err)
	}
	return 0, nil, lastErr
}

func (transport *httpClientTransport) Close() error {
	// Close the client
	if transport.client != nil {
		transport.client.CloseIdleConnections()
	}

	// Reset the client and server URLs
	transport.client = nil
	transport.serverURLs = nil

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (transport *httpClientTransport) do(method, requestURL string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpRequest, err := http.NewRequest(method, requestURL, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		httpRequest.Header.Set("Content-Type", "application/json")
	}

	httpResponse, err := transport.client.Do(httpRequest)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	resp, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return 0, nil, err
	}
	return httpResponse.StatusCode, resp, nil
}
