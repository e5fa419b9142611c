// Package position implements per-entity sensor tracking: a
// PlayerPosition is the mean of its sensors, a BallPosition tracks
// whichever of its sensors is currently in-play.
//
// BallPosition and PlayerPosition both satisfy the Position interface
// below. The package defines no tagged sum and no type switch over the
// two; callers hold the concrete types.
package position

import (
	"fmt"

	"github.com/debs2013/possession/internal/coords"
)

// InvalidSensorUpdateError reports update_sensor called with a sid this
// Position was never registered for. This is a logic error in the
// registry, not malformed input, so it aborts rather than being swallowed.
type InvalidSensorUpdateError struct {
	Sid int
}

func (e *InvalidSensorUpdateError) Error() string {
	return fmt.Sprintf("position: sensor %d is not registered on this entity", e.Sid)
}

// Position is the capability shared by PlayerPosition and BallPosition:
// receive a sensor update, report the entity's current Vector.
type Position interface {
	// UpdateSensor overwrites sid's raw coordinates. Panics with
	// InvalidSensorUpdateError if sid is not one of this entity's sensors.
	UpdateSensor(sid int, r coords.Raw)
	// Vector reports the entity's current reported position.
	Vector() coords.Vector
	// Sids returns the entity's sensor ids, in registration order.
	Sids() []int
}

// indexOf returns the index of sid in sids, or -1.
func indexOf(sids []int, sid int) int {
	for i, s := range sids {
		if s == sid {
			return i
		}
	}
	return -1
}
