// Package notify posts a generic JSON webhook on every period boundary
// and the end-of-game final: a plain JSON body POSTed with a bounded
// timeout, no embed schema, so any dashboard or alerting endpoint can
// consume it.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/debs2013/possession/internal/events"
	"github.com/debs2013/possession/internal/telemetry"
)

// Notifier posts possession notifications to a webhook URL.
type Notifier struct {
	url        string
	httpClient *http.Client
}

// NewNotifier builds a Notifier. An empty url disables sending; Enabled()
// reports this so callers can skip work rather than firing into the void.
func NewNotifier(url string) *Notifier {
	return &Notifier{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a webhook URL was configured.
func (n *Notifier) Enabled() bool { return n.url != "" }

// payload is the JSON body posted to the webhook.
type payload struct {
	Type         string             `json:"type"`
	RunID        string             `json:"run_id"`
	Distribution map[string]float64 `json:"distribution"`
	IsFinal      bool               `json:"is_final"`
	FinalTs      int64              `json:"final_ts"`
}

// Subscribe registers the notifier on bus for every period partial and
// the end-of-game final; each POST runs synchronously on the publisher's
// goroutine with a bounded timeout via Send's context.
func (n *Notifier) Subscribe(bus *events.Bus, runID string) {
	handler := func(evt events.Event) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return n.Send(ctx, runID, evt)
	}
	bus.Subscribe(events.EventPeriodPartial, handler)
	bus.Subscribe(events.EventGameFinal, handler)
}

// Send posts one notification. A no-op (nil error) if Enabled() is false.
func (n *Notifier) Send(ctx context.Context, runID string, evt events.Event) error {
	if !n.Enabled() {
		return nil
	}

	body := payload{
		Type:         string(evt.Type),
		RunID:        runID,
		Distribution: evt.Partial.Distribution,
		IsFinal:      evt.Partial.IsFinal,
		FinalTs:      evt.Partial.FinalTs,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("notify: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("notify: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		telemetry.Warnf("notify: rate limited by webhook endpoint")
		return fmt.Errorf("notify: rate limited")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook status=%d", resp.StatusCode)
	}
	return nil
}
