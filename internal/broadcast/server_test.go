package broadcast

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/debs2013/possession/internal/events"
)

func TestServerForwardsPartialToConnectedClient(t *testing.T) {
	bus := events.NewBus()
	s := NewServer(bus)

	ts := httptest.NewServer(http.HandlerFunc(s.HandleWS))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give the server a moment to register the client before publishing.
	time.Sleep(20 * time.Millisecond)

	bus.Publish(events.Event{
		Type:  events.EventPeriodPartial,
		RunID: "run-1",
		Partial: events.PeriodPartial{
			Distribution: map[string]float64{"A": 1.0},
			FinalTs:      100,
		},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	env, err := UnmarshalEnvelope(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Type != string(events.EventPeriodPartial) {
		t.Fatalf("Type = %q, want %q", env.Type, events.EventPeriodPartial)
	}
	if env.RunID != "run-1" {
		t.Fatalf("RunID = %q, want run-1", env.RunID)
	}
	if env.Data.Distribution["A"] != 1.0 {
		t.Fatalf("Distribution = %v, want A=1.0", env.Data.Distribution)
	}
}
