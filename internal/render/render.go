// Package render turns a possession distribution into a text table: a
// two-team header, a team-percentage row, and one row per player ordered
// team A first (alphabetical within team) then team B (alphabetical
// within team).
//
// A divider-bracketed fmt.Fprintf table is written straight to an output
// stream, with a terminal-vs-piped distinction: an isatty-driven choice
// between a unicode and an ASCII divider.
package render

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/ncruces/go-strftime"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/debs2013/possession/internal/context"
	"github.com/debs2013/possession/internal/events"
	"github.com/debs2013/possession/internal/timeline"
)

const (
	dividerHeavy = "════════════════════════════════════════════════"
	dividerLight = "----------------------------------------------------"
)

// Renderer writes possession tables to an output stream.
type Renderer struct {
	w       io.Writer
	heavy   bool // true when w is a terminal: use the unicode divider
	reg     *context.Context
	collate *collate.Collator
}

// New builds a Renderer. If w is an *os.File attached to a terminal, the
// heavier unicode divider is used; otherwise (piped to a file, per
// --output PATH) the plain ASCII divider is used.
func New(w io.Writer, reg *context.Context) *Renderer {
	heavy := false
	if f, ok := w.(fileWithFd); ok {
		heavy = isatty.IsTerminal(f.Fd())
	}
	return &Renderer{
		w:       w,
		heavy:   heavy,
		reg:     reg,
		collate: collate.New(language.English),
	}
}

// fileWithFd is the subset of *os.File render needs to probe for a tty.
type fileWithFd interface {
	Fd() uintptr
}

func (r *Renderer) divider() string {
	if r.heavy {
		return dividerHeavy
	}
	return dividerLight
}

// Period renders one period's partial distribution: header with the
// elapsed game clock, team percentage row, and per-player rows.
func (r *Renderer) Period(distribution map[string]float64, finalTs int64) {
	r.table(distribution, clockFor(finalTs))
}

// Subscribe registers the renderer on bus so every emitted partial and the
// end-of-game final are rendered as they arrive. Rendering happens
// synchronously on the publisher's goroutine.
func (r *Renderer) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventPeriodPartial, func(evt events.Event) error {
		r.Period(evt.Partial.Distribution, evt.Partial.FinalTs)
		return nil
	})
	bus.Subscribe(events.EventGameFinal, func(evt events.Event) error {
		r.Final(evt.Partial.Distribution)
		return nil
	})
}

// Final renders the single end-of-game summary.
func (r *Renderer) Final(distribution map[string]float64) {
	fmt.Fprintln(r.w, r.divider())
	fmt.Fprintln(r.w, "FINAL")
	r.table(distribution, "")
	fmt.Fprintln(r.w, r.divider())
}

func (r *Renderer) table(distribution map[string]float64, clock string) {
	teamA, teamB := r.orderedRoster()

	teamAPct := sumTeam(distribution, teamA)
	teamBPct := sumTeam(distribution, teamB)

	fmt.Fprintln(r.w, r.divider())
	if clock != "" {
		fmt.Fprintf(r.w, "%-20s%10s%20s\n", "Team A", clock, "Team B")
	} else {
		fmt.Fprintf(r.w, "%-20s%10s%20s\n", "Team A", "", "Team B")
	}
	fmt.Fprintf(r.w, "%-20s%10s%20s\n", pct(teamAPct), "", pct(teamBPct))
	fmt.Fprintln(r.w, r.divider())

	for _, name := range teamA {
		r.row(name, context.TeamA, distribution[name])
	}
	for _, name := range teamB {
		r.row(name, context.TeamB, distribution[name])
	}
}

func (r *Renderer) row(name string, team context.Team, fraction float64) {
	fmt.Fprintf(r.w, "%-30s | %s | %s\n", name, team, pct(fraction))
}

// orderedRoster splits the registered players by team and sorts each
// group alphabetically with a locale-aware collator rather than raw byte
// comparison, so names carrying spaces or diacritics sort the way a
// reader expects.
func (r *Renderer) orderedRoster() (teamA, teamB []string) {
	for _, name := range r.reg.PlayerOrder() {
		p, ok := r.reg.Player(name)
		if !ok {
			continue
		}
		if p.Team == context.TeamA {
			teamA = append(teamA, name)
		} else {
			teamB = append(teamB, name)
		}
	}
	sort.Slice(teamA, func(i, j int) bool { return r.collate.CompareString(teamA[i], teamA[j]) < 0 })
	sort.Slice(teamB, func(i, j int) bool { return r.collate.CompareString(teamB[i], teamB[j]) < 0 })
	return teamA, teamB
}

func sumTeam(distribution map[string]float64, names []string) float64 {
	var total float64
	for _, name := range names {
		total += distribution[name]
	}
	return total
}

// pct renders a fraction as a percentage with two decimals, e.g. "33.33%"
// or "0.00%" (the integer part is not zero-padded).
func pct(fraction float64) string {
	return fmt.Sprintf("%02.2f%%", fraction*100)
}

// clockFor formats finalTs's elapsed game time as mm:ss using a strftime
// pattern rather than hand-rolled divmod-and-Sprintf arithmetic.
func clockFor(finalTs int64) string {
	elapsedPs := finalTs - timeline.GameStart
	if elapsedPs < 0 {
		elapsedPs = 0
	}
	elapsed := time.Duration(elapsedPs/1000) * time.Nanosecond // ps -> ns
	t := time.Unix(0, 0).UTC().Add(elapsed)
	return strftime.Format("%M:%S", t)
}
