// Package fetcher implements the streaming batch driver: a stateful,
// single-pass, lazy sequence of Batch values built from a LineSource and
// mutating a shared Context as it goes.
//
// NextBatch is a method on *EventFetcher rather than a separate iterator
// type — the fetcher owns its own cursor — and end-of-stream is an
// explicit (Batch, bool) return rather than an error or panic.
package fetcher

import (
	"time"

	"github.com/debs2013/possession/internal/context"
	"github.com/debs2013/possession/internal/coords"
	"github.com/debs2013/possession/internal/gameevent"
	"github.com/debs2013/possession/internal/linesource"
	"github.com/debs2013/possession/internal/parser"
	"github.com/debs2013/possession/internal/telemetry"
	"github.com/debs2013/possession/internal/timeline"
)

// Batch is the unit of work handed to the statistics engine.
type Batch struct {
	Data         []gameevent.Event
	IsPeriodLast bool
	Snapshot     context.Snapshot
	InitialTs    int64
	FinalTs      int64
}

// EventFetcher drives the stream: parse lines, filter by game phase,
// respect interruption/resume semantics, and assemble Batches.
type EventFetcher struct {
	source linesource.LineSource
	parser parser.Parser
	ctx    *context.Context

	batchSize  int
	periodUnit int64 // time_units converted to picoseconds

	periodStart  int64
	batch        []gameevent.Event
	carry        []gameevent.Event
	snapshot     context.Snapshot
	gamePaused   bool
	gameOver     bool
	lastInGameTs int64
	parseErr     error
}

// New constructs a fetcher. timeUnits is the period length as a Duration
// (1s..60s); a non-period-ending batch is emitted when it holds exactly
// batchSize events. A batch opened by carried events is only checked
// after each append, so if the carried events alone already exceed
// batchSize the batch keeps growing until the next flush.
func New(source linesource.LineSource, ctx *context.Context, timeUnits time.Duration, batchSize int) *EventFetcher {
	return &EventFetcher{
		source:       source,
		parser:       parser.Default,
		ctx:          ctx,
		batchSize:    batchSize,
		periodUnit:   timeUnits.Nanoseconds() * 1000, // ns -> ps
		periodStart:  timeline.GameStart,
		snapshot:     ctx.Snapshot(),
		lastInGameTs: timeline.GameStart,
	}
}

// NextBatch returns the next Batch. ok is false only once the fetcher has
// already emitted its terminal Batch on an earlier call (check GameOver
// after a call returns ok == true with IsPeriodLast set on the final
// period to know whether more batches can follow). It is not safe to call
// concurrently and must not be called again after ok == false.
func (f *EventFetcher) NextBatch() (Batch, bool) {
	if f.gameOver {
		return Batch{}, false
	}

	for {
		line, ok, err := f.source.Next()
		if err != nil {
			telemetry.Warnf("fetcher: line source error: %v", err)
			f.parseErr = err
			return f.finalize(), true
		}
		if !ok {
			return f.finalize(), true
		}
		telemetry.Metrics.LinesRead.Inc()

		evt, err := f.parser.Parse(line)
		if err != nil {
			// A malformed line stops the stream rather than being
			// silently skipped. The caller inspects ParseErr() to
			// distinguish this from a clean end-of-stream after the
			// final batch is consumed.
			f.parseErr = err
			return f.finalize(), true
		}

		if batch, emitted := f.handle(evt); emitted {
			return batch, true
		}
	}
}

// handle processes one parsed event, mutating fetcher/context state and
// optionally producing a Batch.
func (f *EventFetcher) handle(evt gameevent.Event) (Batch, bool) {
	switch evt.Kind {
	case gameevent.Interruption:
		f.gamePaused = true
		return Batch{}, false
	case gameevent.Resume:
		f.gamePaused = false
		return Batch{}, false
	}

	// PositionEvent.
	if !f.ctx.IsPlayer(evt.Sid) && !f.ctx.IsBall(evt.Sid) {
		// ReferentialFailure: dropped, counted for the run summary.
		telemetry.Metrics.ReferentialDrops.Inc()
		return Batch{}, false
	}

	phase := timeline.Classify(evt.Ts)
	if phase == timeline.InGame {
		f.lastInGameTs = evt.Ts
	}

	switch {
	case phase == timeline.InGame && evt.Ts-f.periodStart >= f.periodUnit:
		return f.handlePeriodBoundary(evt), true

	case f.gamePaused && len(f.batch) > 0 && phase == timeline.InGame:
		f.applyToContext(evt)
		b := f.emit(false, f.snapshot)
		return b, true

	case phase == timeline.Break && len(f.batch) > 0:
		f.applyToContext(evt)
		b := f.emit(true, f.snapshot)
		return b, true

	case phase == timeline.InGame && !f.gamePaused:
		f.handleInGame(evt)
		if len(f.batch) == f.batchSize {
			b := f.emit(false, f.snapshot)
			return b, true
		}
		return Batch{}, false

	default:
		f.applyToContext(evt)
		return Batch{}, false
	}
}

// handlePeriodBoundary closes out the current period: it advances
// periodStart and, unless play is paused, snapshots the context before evt
// is applied and stashes evt itself in the carry bucket so it opens the
// next period's batch.
func (f *EventFetcher) handlePeriodBoundary(evt gameevent.Event) Batch {
	f.periodStart += f.periodUnit
	prev := f.snapshot

	if !f.gamePaused {
		f.snapshot = f.ctx.Snapshot() // taken before evt is applied below
		f.carry = append(f.carry, evt)
	}
	f.applyToContext(evt)

	return f.emit(true, prev)
}

// handleInGame appends an in-game, non-paused event to the current batch,
// draining any pending carry bucket first so it opens the new batch.
func (f *EventFetcher) handleInGame(evt gameevent.Event) {
	if len(f.batch) == 0 {
		if len(f.carry) > 0 {
			f.batch = append(f.batch, f.carry...)
			f.carry = nil
		} else {
			f.snapshot = f.ctx.Snapshot()
		}
	}
	f.batch = append(f.batch, evt)
	f.applyToContext(evt)
}

// applyToContext mutates the shared Context with evt's sensor reading,
// regardless of game phase.
func (f *EventFetcher) applyToContext(evt gameevent.Event) {
	raw := rawOf(evt)
	if f.ctx.IsBall(evt.Sid) {
		f.ctx.UpdateBallSensor(evt.Sid, raw)
		return
	}
	if err := f.ctx.UpdatePlayerSensor(evt.Sid, raw); err != nil {
		telemetry.Debugf("fetcher: %v", err)
	}
}

// emit packages the current batch buffer into a Batch and clears it.
func (f *EventFetcher) emit(isPeriodLast bool, snap context.Snapshot) Batch {
	data := f.batch
	f.batch = nil

	initial, final := f.lastInGameTs, f.lastInGameTs
	if len(data) > 0 {
		initial, final = data[0].Ts, data[len(data)-1].Ts
	}

	return Batch{
		Data:         data,
		IsPeriodLast: isPeriodLast,
		Snapshot:     snap,
		InitialTs:    initial,
		FinalTs:      final,
	}
}

// finalize drains the carry bucket (if any) into the batch and emits the
// terminal end-of-stream Batch.
func (f *EventFetcher) finalize() Batch {
	f.gameOver = true
	if len(f.carry) > 0 && len(f.batch) == 0 {
		f.batch = f.carry
		f.carry = nil
	}
	return f.emit(true, f.snapshot)
}

// ParseErr returns the error that terminated the stream early, if any.
// Check after NextBatch returns ok == false.
func (f *EventFetcher) ParseErr() error { return f.parseErr }

// GameOver reports whether the fetcher has reached end-of-stream.
func (f *EventFetcher) GameOver() bool { return f.gameOver }

func rawOf(evt gameevent.Event) coords.Raw {
	return coords.Raw{X: evt.X, Y: evt.Y, Z: evt.Z}
}
