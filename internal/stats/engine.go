// Package stats implements the fork-join statistics engine: per-batch
// parallel distance sampling across players, a deterministic sequential
// reduction to a per-instant possession owner, and per-period /
// whole-game accumulators. One errgroup worker per player is joined
// before the possession reduction runs.
package stats

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	gamecontext "github.com/debs2013/possession/internal/context"
	"github.com/debs2013/possession/internal/coords"
	"github.com/debs2013/possession/internal/fetcher"
	"github.com/debs2013/possession/internal/gameevent"
	"github.com/debs2013/possession/internal/position"
)

// noOwner is the sentinel possession-owner name when no player is within
// range of the in-play ball at a given instant.
const noOwner = "None"

// Partial is the per-player possession distribution for one period.
type Partial struct {
	Distribution map[string]float64
	FinalTs      int64
}

// Engine holds the running possession accumulators. It reads the Context
// only for the player registry (names, sids, team membership); it never
// reads live Position state outside of the Snapshot each Batch carries.
type Engine struct {
	reg          *gamecontext.Context
	maxDistance  float64
	workers      int
	accumulator  map[string]uint32
	gameAcc      map[string]uint32
	partials     []Partial
	lastPartial  *Partial
}

// New builds a statistics engine. maxDistance is in metres; workers
// bounds the fan-out degree (0 means "one goroutine per player, let the
// Go scheduler multiplex onto GOMAXPROCS").
func New(reg *gamecontext.Context, maxDistance float64, workers int) *Engine {
	return &Engine{
		reg:         reg,
		maxDistance: maxDistance,
		workers:     workers,
		accumulator: make(map[string]uint32),
		gameAcc:     make(map[string]uint32),
	}
}

// Fold processes one Batch, folding its ball-possession samples into the
// running accumulator. If the batch closes a period, the normalised
// partial is returned (and recorded); otherwise the second return is nil.
func (e *Engine) Fold(ctx context.Context, batch fetcher.Batch) (*Partial, error) {
	order := e.reg.PlayerOrder()
	samples, err := e.sample(ctx, batch, order)
	if err != nil {
		return nil, err
	}
	e.reduce(samples, order)

	if !batch.IsPeriodLast {
		return nil, nil
	}

	partial := Partial{
		Distribution: normalize(e.accumulator, order),
		FinalTs:      batch.FinalTs,
	}
	for name, v := range e.accumulator {
		e.gameAcc[name] += v
	}
	e.accumulator = make(map[string]uint32)
	e.partials = append(e.partials, partial)
	e.lastPartial = &partial
	return &partial, nil
}

// sample runs the per-player distance sampling in parallel (fork),
// returning each player's distance series.
func (e *Engine) sample(ctx context.Context, batch fetcher.Batch, order []string) (map[string][]float64, error) {
	results := make([][]float64, len(order))

	g, gctx := errgroup.WithContext(ctx)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}

	for i, name := range order {
		i, name := i, name
		playerPos, ok := batch.Snapshot.Players[name]
		if !ok {
			continue
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = sampleOne(e.reg, playerPos.Clone(), batch.Snapshot.Ball.Clone(), batch.Data, e.maxDistance)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("stats: sampling: %w", err)
	}

	out := make(map[string][]float64, len(order))
	for i, name := range order {
		out[name] = results[i]
	}
	return out, nil
}

// sampleOne runs one player's worker loop: a task-local copy of the
// player's and ball's position, walking the batch's events in order.
func sampleOne(reg *gamecontext.Context, playerPos *position.PlayerPosition, ballPos *position.BallPosition, data []gameevent.Event, maxDistance float64) []float64 {
	var d []float64
	for _, evt := range data {
		if evt.Kind != gameevent.Position {
			continue
		}
		if reg.IsBall(evt.Sid) {
			ballPos.UpdateSensor(evt.Sid, rawOf(evt))
			dist := coords.Euclidean(ballPos.Vector(), playerPos.Vector())
			if dist/1000 <= maxDistance {
				d = append(d, dist)
			} else {
				d = append(d, math.Inf(1))
			}
			continue
		}
		if owns(playerPos, evt.Sid) {
			playerPos.UpdateSensor(evt.Sid, rawOf(evt))
		}
		// A sid belonging to a different player contributes no sample.
	}
	return d
}

// owns reports whether sid is one of playerPos's own sensor ids.
func owns(playerPos *position.PlayerPosition, sid int) bool {
	for _, s := range playerPos.Sids() {
		if s == sid {
			return true
		}
	}
	return false
}

func rawOf(evt gameevent.Event) coords.Raw {
	return coords.Raw{X: evt.X, Y: evt.Y, Z: evt.Z}
}

// reduce runs the sequential join: for each ball-event index, the player
// with the strict-minimum distance wins; ties are broken by order, the
// metadata player-registration order.
func (e *Engine) reduce(samples map[string][]float64, order []string) {
	n := 0
	for _, name := range order {
		if len(samples[name]) > n {
			n = len(samples[name])
		}
	}
	for k := 0; k < n; k++ {
		minD := math.Inf(1)
		owner := noOwner
		for _, name := range order {
			d := samples[name]
			if k >= len(d) {
				continue
			}
			if d[k] < minD {
				minD = d[k]
				owner = name
			}
		}
		if owner != noOwner {
			e.accumulator[owner]++
		}
	}
}

// AccumulatedStats returns the normalised distribution of the current,
// possibly non-empty, in-progress period accumulator.
func (e *Engine) AccumulatedStats() map[string]float64 {
	return normalize(e.accumulator, e.reg.PlayerOrder())
}

// LastPartial returns the most recently emitted period partial, if any.
func (e *Engine) LastPartial() (Partial, bool) {
	if e.lastPartial == nil {
		return Partial{}, false
	}
	return *e.lastPartial, true
}

// GameStats returns the whole-game accumulator normalised to a
// distribution.
func (e *Engine) GameStats() map[string]float64 {
	return normalize(e.gameAcc, e.reg.PlayerOrder())
}

// Partials returns every period partial emitted so far, in order.
func (e *Engine) Partials() []Partial {
	return append([]Partial(nil), e.partials...)
}

func normalize(acc map[string]uint32, order []string) map[string]float64 {
	var total uint32
	for _, v := range acc {
		total += v
	}
	out := make(map[string]float64, len(order))
	for _, name := range order {
		if total == 0 {
			out[name] = 0
			continue
		}
		out[name] = float64(acc[name]) / float64(total)
	}
	return out
}
