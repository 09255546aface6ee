package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dododb/dodo/lib/pubsub"
	"github.com/dododb/dodo/rpc/client"
	"github.com/dododb/dodo/rpc/common"
	"github.com/dododb/dodo/rpc/server"
	transporthttp "github.com/dododb/dodo/rpc/transport/http"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEventHandler(t *testing.T) {
	var out bytes.Buffer
	handler := eventHandler(&out)

	body := `{"key":"k","event":"update","old_value":null,"new_value":{"a":1},"timestamp":"2025-01-01T00:00:00Z"}`
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}

	var event pubsub.Event
	if err := json.Unmarshal(out.Bytes(), &event); err != nil {
		t.Fatalf("Printed line is not an event: %v (%q)", err, out.String())
	}
	if event.Key != "k" || string(event.NewValue) != `{"a":1}` {
		t.Errorf("Unexpected event %+v", event)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("nope")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a malformed body, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET, got %d", rec.Code)
	}
}

func TestWriteSubscriptions(t *testing.T) {
	var out bytes.Buffer
	writeSubscriptions(&out, nil)
	if out.String() != "no subscriptions\n" {
		t.Errorf("Unexpected output %q", out.String())
	}

	out.Reset()
	writeSubscriptions(&out, []pubsub.Subscription{{ID: 3, Key: "k", Callback: "http://example.com/hook"}})
	if out.String() != "3\tk\thttp://example.com/hook\n" {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestListenForEvents(t *testing.T) {
	s := server.NewRPCServer(common.ServerConfig{
		Endpoint:                "127.0.0.1:0",
		ServerVersion:           "test",
		SnapshotPath:            filepath.Join(t.TempDir(), "snapshot.json"),
		SnapshotIntervalSeconds: 3600,
		RetentionSeconds:        -1,
		WebhookTimeoutSecond:    5,
		ShutdownTimeoutSecond:   1,
		LogLevel:                "info",
	}, transporthttp.NewHttpServerTransport(), nil, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	var err error
	rpcPubSub, err = client.NewRPCPubSub(common.ClientConfig{
		Endpoints:     []string{ts.URL},
		TimeoutSecond: 5,
		RetryCount:    1,
	}, transporthttp.NewHttpClientTransport())
	if err != nil {
		t.Fatalf("NewRPCPubSub failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- listenForEvents(ctx, "watched", "127.0.0.1:0", "", out) }()

	waitFor(t, "subscription", func() bool { return s.Registry().Count() == 1 })

	if err := s.Store().Set("watched", json.RawMessage(`42`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	waitFor(t, "event", func() bool { return strings.Contains(out.String(), `"key":"watched"`) })
	if !strings.Contains(out.String(), `"new_value":42`) {
		t.Errorf("Unexpected event output %q", out.String())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("listenForEvents returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("listenForEvents did not return")
	}
	if n := s.Registry().Count(); n != 0 {
		t.Errorf("Expected the subscription to be removed, %d left", n)
	}
}
