package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	HeaderDelivery = "X-Dodo-Delivery"
	HeaderEvent    = "X-Dodo-Event"
)

type httpWebhookTransport struct {
	client *http.Client
}

// NewHTTPWebhookTransport returns a transport posting events as JSON.
// A response status >= 400 counts as a failed delivery.
func NewHTTPWebhookTransport(timeout time.Duration) IWebhookTransport {
	return &httpWebhookTransport{
		client: &http.Client{Timeout: timeout},
	}
}

func (t *httpWebhookTransport) Deliver(ctx context.Context, callback string, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callback, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderDelivery, uuid.NewString())
	req.Header.Set(HeaderEvent, event.Event)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("receiver responded with status %d", resp.StatusCode)
	}
	return nil
}
