// Package events is the in-process pub/sub bus that carries possession
// partials and the end-of-game final from internal/pipeline to whichever
// downstream sinks are wired up (internal/render, internal/broadcast,
// internal/notify): a synchronous, registration-ordered dispatcher that
// never applies back-pressure to the publisher.
package events

// EventType tags which notification an Event carries.
type EventType string

const (
	// EventPeriodPartial fires once per period boundary: Event.Partial
	// holds the normalised per-player distribution for the period that
	// just closed.
	EventPeriodPartial EventType = "period_partial"

	// EventGameFinal fires once, when the fetcher reaches end-of-stream
	// without a parse error: Event.Partial holds the whole-game normalised
	// distribution.
	EventGameFinal EventType = "game_final"
)

// Event is the envelope every bus subscriber receives.
type Event struct {
	Type    EventType
	RunID   string // pipeline.Run's uuid, for correlating concurrent/sequential runs
	Partial PeriodPartial
}
