package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dododb/dodo/rpc/common"
)

func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(r.Method + " " + r.URL.Path + " " + string(body)))
	})
}

func TestClientSend(t *testing.T) {
	ts := httptest.NewServer(echoHandler())
	defer ts.Close()

	client := NewHttpClientTransport()
	if _, _, err := client.Send(http.MethodGet, "/x", nil); err == nil {
		t.Errorf("Expected an error before Connect")
	}
	if err := client.Connect(common.ClientConfig{}); err == nil {
		t.Errorf("Expected an error without endpoints")
	}

	// the scheme is optional
	err := client.Connect(common.ClientConfig{
		Endpoints:     []string{strings.TrimPrefix(ts.URL, "http://")},
		TimeoutSecond: 5,
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	status, resp, err := client.Send(http.MethodPut, "/kv/a", []byte(`1`))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if status != http.StatusAccepted || string(resp) != "PUT /kv/a 1" {
		t.Errorf("Unexpected response %d %q", status, resp)
	}
}

func TestClientRetriesNextEndpoint(t *testing.T) {
	ts := httptest.NewServer(echoHandler())
	defer ts.Close()

	// nothing listens on a closed test server
	dead := httptest.NewServer(echoHandler())
	dead.Close()

	client := NewHttpClientTransport()
	err := client.Connect(common.ClientConfig{
		Endpoints:     []string{dead.URL, ts.URL},
		TimeoutSecond: 5,
		RetryCount:    2,
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	for i := 0; i < 4; i++ {
		if _, _, err := client.Send(http.MethodGet, "/system/alive", nil); err != nil {
			t.Errorf("Request %d failed although one endpoint is alive: %v", i, err)
		}
	}

	client.Close()
	err = client.Connect(common.ClientConfig{
		Endpoints:     []string{dead.URL},
		TimeoutSecond: 5,
		RetryCount:    2,
	})
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if _, _, err := client.Send(http.MethodGet, "/system/alive", nil); err == nil {
		t.Errorf("Expected an error when every endpoint is down")
	}
}

func TestServerShutdown(t *testing.T) {
	config := common.ServerConfig{Endpoint: "127.0.0.1:0"}

	server := NewHttpServerTransport()
	if err := server.Listen(config); err == nil {
		t.Errorf("Expected an error without a handler")
	}
	server.RegisterHandler(echoHandler())

	done := make(chan error, 1)
	go func() { done <- server.Listen(config) }()

	time.Sleep(50 * time.Millisecond)
	if err := server.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Listen returned %v after shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Listen did not return after shutdown")
	}

	// a shut down transport does not start again
	if err := server.Listen(config); err != nil {
		t.Errorf("Listen after shutdown returned %v", err)
	}
}

func TestLoggerMiddlewareStatus(t *testing.T) {
	handler := loggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("Expected status to pass through, got %d", rec.Code)
	}
}
