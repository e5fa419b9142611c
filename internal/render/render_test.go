package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/debs2013/possession/internal/context"
)

func newTestRoster() *context.Context {
	return context.New([]context.Player{
		{Name: "Zed", Team: context.TeamA, Sids: []int{1}},
		{Name: "Amy", Team: context.TeamA, Sids: []int{2}},
		{Name: "Beth", Team: context.TeamB, Sids: []int{3}},
	}, []int{9})
}

func TestOrderedRosterIsAlphabeticalWithinTeam(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, newTestRoster())

	teamA, teamB := r.orderedRoster()
	if len(teamA) != 2 || teamA[0] != "Amy" || teamA[1] != "Zed" {
		t.Fatalf("teamA = %v, want [Amy Zed]", teamA)
	}
	if len(teamB) != 1 || teamB[0] != "Beth" {
		t.Fatalf("teamB = %v, want [Beth]", teamB)
	}
}

func TestPeriodRendersAllPlayersAndTeamTotals(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, newTestRoster())

	dist := map[string]float64{"Zed": 0.5, "Amy": 0.25, "Beth": 0.25}
	r.Period(dist, 0)

	out := buf.String()
	for _, want := range []string{"Zed", "Amy", "Beth", "50.00%", "25.00%", "75.00%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPctFormatsTwoDecimalPlaces(t *testing.T) {
	if got := pct(0.3333); got != "33.33%" {
		t.Fatalf("pct(0.3333) = %q, want 33.33%%", got)
	}
	if got := pct(0); got != "0.00%" {
		t.Fatalf("pct(0) = %q, want 0.00%%", got)
	}
}
