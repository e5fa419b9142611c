package context

import (
	"errors"
	"testing"

	"github.com/debs2013/possession/internal/coords"
)

func newTestContext() *Context {
	players := []Player{
		{Name: "Alice", Team: TeamA, Sids: []int{1, 2}},
		{Name: "Bob", Team: TeamB, Sids: []int{3}},
	}
	return New(players, []int{100, 101})
}

func TestUpdatePlayerSensorUnknownSidIsReferentialError(t *testing.T) {
	c := newTestContext()
	err := c.UpdatePlayerSensor(9999, coords.Raw{X: 1, Y: 1, Z: 1})
	var re *ReferentialError
	if !errors.As(err, &re) {
		t.Fatalf("UpdatePlayerSensor: err = %v, want *ReferentialError", err)
	}
}

func TestSnapshotIsIndependentOfLaterMutation(t *testing.T) {
	c := newTestContext()
	c.UpdatePlayerSensor(1, coords.Raw{X: 10, Y: 10, Z: 10})

	snap := c.Snapshot()
	before := snap.Players["Alice"].Vector()

	// Mutate the live context after taking the snapshot.
	c.UpdatePlayerSensor(1, coords.Raw{X: 999, Y: 999, Z: 999})

	after := snap.Players["Alice"].Vector()
	if before != after {
		t.Fatalf("snapshot mutated after context update: before=%+v after=%+v", before, after)
	}
	live := c.PlayerPosition("Alice").Vector()
	if live == before {
		t.Fatalf("live context did not reflect the update")
	}
}

func TestPlayerOrderPreservesRegistrationOrder(t *testing.T) {
	c := newTestContext()
	got := c.PlayerOrder()
	want := []string{"Alice", "Bob"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("PlayerOrder() = %v, want %v", got, want)
	}
}

func TestBallInPlayInvariant(t *testing.T) {
	c := newTestContext()
	// Sensor outside the field never becomes in-play.
	c.UpdateBallSensor(100, coords.Raw{X: -1, Y: 0, Z: 0})
	if v := c.BallPosition().Vector(); v != coords.Infinite {
		t.Fatalf("ball Vector() = %+v, want Infinite (sensor outside field)", v)
	}
	// Sensor inside the field becomes in-play.
	c.UpdateBallSensor(101, coords.Raw{X: 100, Y: 100, Z: 0})
	if v := c.BallPosition().Vector(); v == coords.Infinite {
		t.Fatalf("ball Vector() = Infinite, want in-play sensor's position")
	}
}
