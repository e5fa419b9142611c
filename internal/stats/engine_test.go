package stats

import (
	"context"
	"testing"

	gamecontext "github.com/debs2013/possession/internal/context"
	"github.com/debs2013/possession/internal/coords"
	"github.com/debs2013/possession/internal/fetcher"
	"github.com/debs2013/possession/internal/gameevent"
)

func newTwoPlayerContext() *gamecontext.Context {
	return gamecontext.New([]gamecontext.Player{
		{Name: "A", Team: gamecontext.TeamA, Sids: []int{1}},
		{Name: "B", Team: gamecontext.TeamB, Sids: []int{2}},
	}, []int{9})
}

// S4: ball at origin, A at (1,0,0), B at (3,0,0), both within range ->
// A is in possession for the whole batch.
func TestPossessionWithTwoPlayers(t *testing.T) {
	reg := newTwoPlayerContext()
	reg.UpdatePlayerSensor(1, rawAt(1, 0, 0))
	reg.UpdatePlayerSensor(2, rawAt(3, 0, 0))
	reg.UpdateBallSensor(9, rawAt(0, 0, 0))

	snap := reg.Snapshot()
	batch := fetcher.Batch{
		Data: []gameevent.Event{
			gameevent.NewPosition(9, 100, 0, 0, 0),
		},
		IsPeriodLast: true,
		Snapshot:     snap,
		InitialTs:    100,
		FinalTs:      100,
	}

	eng := New(reg, 5.0, 0)
	partial, err := eng.Fold(context.Background(), batch)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if partial == nil {
		t.Fatalf("expected a partial for a period-last batch")
	}
	if partial.Distribution["A"] != 1.0 || partial.Distribution["B"] != 0.0 {
		t.Fatalf("Distribution = %v, want A=1.0 B=0.0", partial.Distribution)
	}
}

// S5: max_distance = 1.0m (1000 units). A at 999 units is eligible; B at
// 1500 units is not, so A wins even though B is never compared as closer.
func TestEligibilityCutoff(t *testing.T) {
	reg := newTwoPlayerContext()
	reg.UpdatePlayerSensor(1, rawAt(999, 0, 0))
	reg.UpdatePlayerSensor(2, rawAt(1500, 0, 0))
	reg.UpdateBallSensor(9, rawAt(0, 0, 0))

	snap := reg.Snapshot()
	batch := fetcher.Batch{
		Data: []gameevent.Event{
			gameevent.NewPosition(9, 100, 0, 0, 0),
		},
		IsPeriodLast: true,
		Snapshot:     snap,
		InitialTs:    100,
		FinalTs:      100,
	}

	eng := New(reg, 1.0, 0)
	partial, err := eng.Fold(context.Background(), batch)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if partial.Distribution["A"] != 1.0 || partial.Distribution["B"] != 0.0 {
		t.Fatalf("Distribution = %v, want A=1.0 B=0.0", partial.Distribution)
	}
}

// Neither player is within range: no one owns the instant, and the
// distribution is all zero rather than dividing by zero.
func TestNoEligiblePlayerYieldsZeroDistribution(t *testing.T) {
	reg := newTwoPlayerContext()
	reg.UpdatePlayerSensor(1, rawAt(10_000, 0, 0))
	reg.UpdatePlayerSensor(2, rawAt(20_000, 0, 0))
	reg.UpdateBallSensor(9, rawAt(0, 0, 0))

	snap := reg.Snapshot()
	batch := fetcher.Batch{
		Data: []gameevent.Event{
			gameevent.NewPosition(9, 100, 0, 0, 0),
		},
		IsPeriodLast: true,
		Snapshot:     snap,
	}

	eng := New(reg, 1.0, 0)
	partial, err := eng.Fold(context.Background(), batch)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if partial.Distribution["A"] != 0 || partial.Distribution["B"] != 0 {
		t.Fatalf("Distribution = %v, want all zero", partial.Distribution)
	}
}

// A non-final batch contributes to the running accumulator but does not
// emit a partial or touch the game-wide accumulator yet.
func TestNonFinalBatchDoesNotEmitPartial(t *testing.T) {
	reg := newTwoPlayerContext()
	reg.UpdatePlayerSensor(1, rawAt(1, 0, 0))
	reg.UpdatePlayerSensor(2, rawAt(3, 0, 0))
	reg.UpdateBallSensor(9, rawAt(0, 0, 0))

	batch := fetcher.Batch{
		Data: []gameevent.Event{
			gameevent.NewPosition(9, 100, 0, 0, 0),
		},
		IsPeriodLast: false,
		Snapshot:     reg.Snapshot(),
	}

	eng := New(reg, 5.0, 0)
	partial, err := eng.Fold(context.Background(), batch)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if partial != nil {
		t.Fatalf("expected no partial for a non-period-last batch")
	}
	if eng.AccumulatedStats()["A"] != 1.0 {
		t.Fatalf("AccumulatedStats()[A] = %v, want 1.0", eng.AccumulatedStats()["A"])
	}
	if len(eng.GameStats()) == 0 {
		t.Fatalf("GameStats() should still enumerate every player at zero")
	}
	if eng.GameStats()["A"] != 0 {
		t.Fatalf("GameStats()[A] = %v, want 0 until a period closes", eng.GameStats()["A"])
	}
}

func rawAt(x, y, z int64) coords.Raw {
	return coords.Raw{X: x, Y: y, Z: z}
}
