package position

import "github.com/debs2013/possession/internal/coords"

// PlayerPosition tracks the current raw reading of every sensor worn by one
// player. Its reported Vector is the component-wise mean over all sensors.
type PlayerPosition struct {
	sids []int
	raw  []coords.Raw
}

// NewPlayerPosition creates a PlayerPosition for the given (ordered) sensor
// ids, all starting at the origin.
func NewPlayerPosition(sids []int) *PlayerPosition {
	p := &PlayerPosition{
		sids: append([]int(nil), sids...),
		raw:  make([]coords.Raw, len(sids)),
	}
	return p
}

func (p *PlayerPosition) UpdateSensor(sid int, r coords.Raw) {
	i := indexOf(p.sids, sid)
	if i < 0 {
		panic(&InvalidSensorUpdateError{Sid: sid})
	}
	p.raw[i] = r
}

func (p *PlayerPosition) Vector() coords.Vector {
	return coords.Mean(p.raw)
}

func (p *PlayerPosition) Sids() []int {
	return p.sids
}

// Clone returns a deep, independent copy — used when taking a Context
// Snapshot.
func (p *PlayerPosition) Clone() *PlayerPosition {
	return &PlayerPosition{
		sids: append([]int(nil), p.sids...),
		raw:  append([]coords.Raw(nil), p.raw...),
	}
}
