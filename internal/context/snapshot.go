package context

import "github.com/debs2013/possession/internal/position"

// BallKey is the name of the ball entry. Snapshot keeps the ball in its
// own Ball field, not under this key in Players.
const BallKey = "Ball"

// Snapshot is a deep-copied view of every player and ball Position, valid
// at one instant in the context-mutation timeline. It is independent of
// subsequent Context mutations: workers consuming a Snapshot never
// observe a data race with the driver goroutine.
type Snapshot struct {
	Players map[string]*position.PlayerPosition
	Ball    *position.BallPosition
}

// Snapshot deep-copies the current player and ball positions.
func (c *Context) Snapshot() Snapshot {
	players := make(map[string]*position.PlayerPosition, len(c.playerOrder))
	for name, p := range c.positions {
		players[name] = p.Clone()
	}
	return Snapshot{
		Players: players,
		Ball:    c.ball.Clone(),
	}
}
