package events

// PeriodPartial is the JSON-serialisable payload carried by both
// EventPeriodPartial and EventGameFinal: a per-player possession
// distribution plus the metadata a downstream sink needs to render or
// relay it without reaching back into internal/stats.
type PeriodPartial struct {
	// Distribution maps player name -> fraction of possession, summing to
	// 1.0 (or 0.0 if no ball sample occurred in the period).
	Distribution map[string]float64 `json:"distribution"`
	// IsFinal is true only for the single whole-game summary emitted at
	// end-of-stream.
	IsFinal bool `json:"is_final"`
	// FinalTs is the timestamp (picoseconds) of the last event folded
	// into this partial.
	FinalTs int64 `json:"final_ts"`
}
