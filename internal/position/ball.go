package position

import "github.com/debs2013/possession/internal/coords"

// BallPosition tracks every ball sensor's raw reading and, at any moment,
// at most one "in-play" sensor: the most recently updated sensor whose
// (x, y) fell inside the field rectangle.
//
// The in-play index is either none or refers to a sensor whose last
// observed (x, y) was inside the field. This package uses clearing
// semantics: a ball sensor leaving the field clears in-play if it was the
// in-play sensor, so Vector() returning coords.Infinite is a meaningful
// "no eligible ball" signal rather than stale data.
type BallPosition struct {
	sids   []int
	raw    []coords.Raw
	inPlay int // index into sids/raw, or -1 for none
}

// NewBallPosition creates a BallPosition for the given (ordered) ball
// sensor ids, with no sensor initially in-play.
func NewBallPosition(sids []int) *BallPosition {
	return &BallPosition{
		sids:   append([]int(nil), sids...),
		raw:    make([]coords.Raw, len(sids)),
		inPlay: -1,
	}
}

func (b *BallPosition) UpdateSensor(sid int, r coords.Raw) {
	i := indexOf(b.sids, sid)
	if i < 0 {
		panic(&InvalidSensorUpdateError{Sid: sid})
	}
	b.raw[i] = r

	if coords.InField(r.X, r.Y) {
		b.inPlay = i
	} else if b.inPlay == i {
		b.inPlay = -1
	}
}

func (b *BallPosition) Vector() coords.Vector {
	if b.inPlay < 0 {
		return coords.Infinite
	}
	return coords.FromRaw(b.raw[b.inPlay])
}

func (b *BallPosition) Sids() []int {
	return b.sids
}

// Clone returns a deep, independent copy — used when taking a Context
// Snapshot.
func (b *BallPosition) Clone() *BallPosition {
	return &BallPosition{
		sids:   append([]int(nil), b.sids...),
		raw:    append([]coords.Raw(nil), b.raw...),
		inPlay: b.inPlay,
	}
}
