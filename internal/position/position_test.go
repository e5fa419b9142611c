package position

import (
	"math"
	"testing"

	"github.com/debs2013/possession/internal/coords"
)

func TestPlayerPositionVectorIsMean(t *testing.T) {
	p := NewPlayerPosition([]int{1, 2})
	p.UpdateSensor(1, coords.Raw{X: 0, Y: 0, Z: 0})
	p.UpdateSensor(2, coords.Raw{X: 10, Y: 20, Z: 30})

	got := p.Vector()
	want := coords.Vector{X: 5, Y: 10, Z: 15}
	if got != want {
		t.Fatalf("Vector() = %+v, want %+v", got, want)
	}
}

func TestPlayerPositionUnknownSensorPanics(t *testing.T) {
	p := NewPlayerPosition([]int{1})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unregistered sensor update")
		}
	}()
	p.UpdateSensor(99, coords.Raw{})
}

func TestBallPositionEntersAndLeavesField(t *testing.T) {
	b := NewBallPosition([]int{10, 11})

	// sensor 10 enters the field: becomes in-play.
	b.UpdateSensor(10, coords.Raw{X: 100, Y: 100, Z: 5})
	if got := b.Vector(); got != (coords.Vector{X: 100, Y: 100, Z: 5}) {
		t.Fatalf("Vector() after entry = %+v", got)
	}

	// sensor 11 updates outside the field: does not disturb in-play sensor 10.
	b.UpdateSensor(11, coords.Raw{X: -1, Y: 0, Z: 0})
	if got := b.Vector(); got != (coords.Vector{X: 100, Y: 100, Z: 5}) {
		t.Fatalf("Vector() after other sensor update = %+v", got)
	}

	// sensor 10 leaves the field: in-play clears, Vector becomes Infinite.
	b.UpdateSensor(10, coords.Raw{X: -5, Y: 0, Z: 0})
	got := b.Vector()
	if !math.IsInf(got.X, 1) || !math.IsInf(got.Y, 1) || !math.IsInf(got.Z, 1) {
		t.Fatalf("Vector() after ball leaves field = %+v, want Infinite", got)
	}
}

func TestBallPositionNeverEntered(t *testing.T) {
	b := NewBallPosition([]int{1})
	got := b.Vector()
	if got != coords.Infinite {
		t.Fatalf("Vector() with no updates = %+v, want Infinite", got)
	}
}

func TestEuclideanWithInfiniteSentinel(t *testing.T) {
	d := coords.Euclidean(coords.Infinite, coords.Vector{X: 1, Y: 1, Z: 1})
	if !math.IsInf(d, 1) {
		t.Fatalf("Euclidean with Infinite = %v, want +Inf", d)
	}
}
