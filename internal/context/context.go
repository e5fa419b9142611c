// Package context holds the mutable field state: the player/team/ball
// registry and every entity's current Position, plus the value-typed
// Snapshot handed to the statistics engine.
//
// Context is read by parallel workers during sampling but mutated by a
// single driver goroutine; the answer to that tension is the Snapshot —
// workers receive by-value copies, so Context itself is exclusively owned
// by the fetcher's driver goroutine and needs no locking.
package context

import (
	"fmt"

	"github.com/debs2013/possession/internal/coords"
	"github.com/debs2013/possession/internal/position"
)

// Team is one of the two sides.
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// ReferentialError reports a PositionEvent naming a sid that belongs to
// neither a player nor a ball. It is constructed for logging but is never
// fatal — the fetcher drops the event.
type ReferentialError struct {
	Sid int
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("context: sid %d is not registered to any player or ball", e.Sid)
}

// Player is one registered athlete: a display name, the team they play
// for, and the sensor ids they wear.
type Player struct {
	Name string
	Team Team
	Sids []int
}

// Context is the field/registry model: it knows every player and ball and
// tracks each one's current Position.
type Context struct {
	// playerOrder preserves metadata registration order: ties in the
	// reduction are broken by this order, not by any Go map's
	// (randomized) iteration order.
	playerOrder []string
	players     map[string]*Player  // name -> player
	sidToPlayer map[int]string      // sid -> owning player name
	positions   map[string]*position.PlayerPosition // player name -> Position

	ballSids []int
	ball     *position.BallPosition
	ballSet  map[int]struct{}
}

// New builds a Context from a parsed metadata registry. players must be in
// the order they were registered, since that order breaks reduction ties;
// ballSids is the set of ball sensor ids.
func New(players []Player, ballSids []int) *Context {
	c := &Context{
		playerOrder: make([]string, 0, len(players)),
		players:     make(map[string]*Player, len(players)),
		sidToPlayer: make(map[int]string),
		positions:   make(map[string]*position.PlayerPosition, len(players)),
		ballSids:    append([]int(nil), ballSids...),
		ball:        position.NewBallPosition(ballSids),
		ballSet:     make(map[int]struct{}, len(ballSids)),
	}
	for _, p := range players {
		pp := p
		c.playerOrder = append(c.playerOrder, pp.Name)
		c.players[pp.Name] = &pp
		c.positions[pp.Name] = position.NewPlayerPosition(pp.Sids)
		for _, sid := range pp.Sids {
			c.sidToPlayer[sid] = pp.Name
		}
	}
	for _, sid := range ballSids {
		c.ballSet[sid] = struct{}{}
	}
	return c
}

// PlayerOrder returns player names in metadata registration order.
func (c *Context) PlayerOrder() []string {
	return c.playerOrder
}

// Player looks up a registered player by name.
func (c *Context) Player(name string) (*Player, bool) {
	p, ok := c.players[name]
	return p, ok
}

// IsPlayer reports whether sid belongs to a player.
func (c *Context) IsPlayer(sid int) bool {
	_, ok := c.sidToPlayer[sid]
	return ok
}

// IsBall reports whether sid belongs to the ball.
func (c *Context) IsBall(sid int) bool {
	_, ok := c.ballSet[sid]
	return ok
}

// PlayerOwning returns the player who owns sid, or false if sid isn't a
// player sensor.
func (c *Context) PlayerOwning(sid int) (*Player, bool) {
	name, ok := c.sidToPlayer[sid]
	if !ok {
		return nil, false
	}
	return c.players[name], true
}

// UpdatePlayerSensor applies a sensor reading to the owning player's
// Position. Returns a *ReferentialError if sid is not a player sensor
// (ball sensors included); the caller drops the event in that case.
func (c *Context) UpdatePlayerSensor(sid int, r coords.Raw) error {
	name, ok := c.sidToPlayer[sid]
	if !ok {
		return &ReferentialError{Sid: sid}
	}
	c.positions[name].UpdateSensor(sid, r)
	return nil
}

// UpdateBallSensor applies a sensor reading to the ball Position.
func (c *Context) UpdateBallSensor(sid int, r coords.Raw) {
	c.ball.UpdateSensor(sid, r)
}

// PlayerPosition returns the live (mutable, owned-by-the-driver)
// PlayerPosition for name.
func (c *Context) PlayerPosition(name string) *position.PlayerPosition {
	return c.positions[name]
}

// BallPosition returns the live ball Position.
func (c *Context) BallPosition() *position.BallPosition {
	return c.ball
}
