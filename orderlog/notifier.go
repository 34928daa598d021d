package orderlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dispatch-mcp/swag-store-backend/api"
	"github.com/dispatch-mcp/swag-store-backend/metrics"
)

// notifyTimeout bounds a single webhook delivery.
const notifyTimeout = 10 * time.Second

// Notifier forwards accepted orders to an external sink.
type Notifier interface {
	// Notify delivers one order. Failures are the caller's to log and
	// swallow; delivery is best-effort by contract.
	Notify(ctx context.Context, payload *WebhookPayload) error
}

// WebhookPayload is the order as posted to the webhook sink, with
// flattened summary fields for spreadsheet compatibility.
type WebhookPayload struct {
	api.Order

	ItemsSummary string `json:"itemsSummary"`
	FullAddress  string `json:"fullAddress"`
}

// NewWebhookPayload flattens an order for the sink.
func NewWebhookPayload(order api.Order) *WebhookPayload {
	items := make([]string, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, fmt.Sprintf("%s (%s)", it.Name, it.Size))
	}

	a := order.ShippingAddress
	fullAddress := fmt.Sprintf("%s %s, %s, %s, %s %s, %s",
		a.FirstName, a.LastName, a.Address, a.City, a.State, a.ZipCode, a.Country)

	return &WebhookPayload{
		Order:        order,
		ItemsSummary: strings.Join(items, ", "),
		FullAddress:  fullAddress,
	}
}

// WebhookNotifier posts order JSON to a configured webhook URL.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
}

// NewWebhookNotifier creates a notifier posting to url.
func NewWebhookNotifier(url string, log *slog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		httpClient: &http.Client{
			Timeout: notifyTimeout,
		},
		log: log,
	}
}

// Notify posts the payload to the webhook URL. Any non-2xx status is
// an error.
func (n *WebhookNotifier) Notify(ctx context.Context, payload *WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// notify delivers the order to the sink in the background. The
// originating request never waits for it.
func (l *Log) notify(order api.Order) {
	if l.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := l.notifier.Notify(ctx, NewWebhookPayload(order)); err != nil {
			metrics.WebhookFailures.Inc()
			l.log.Error("Order notification failed", "err", err, "orderID", order.OrderID)
		}
	}()
}
