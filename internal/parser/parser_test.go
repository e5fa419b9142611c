package parser

import (
	"errors"
	"testing"

	"github.com/debs2013/possession/internal/gameevent"
)

func TestSplitParsesPositionEvent(t *testing.T) {
	line := "SE,69,10632029737813340,27679,-221,1011,553570,..."
	got, err := Split{}.Parse(line)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := gameevent.NewPosition(69, 10632029737813340, 27679, -221, 1011)
	if got != want {
		t.Fatalf("Parse(%q) = %+v, want %+v", line, got, want)
	}
}

func TestParsersAgreeOnInterruptionAndResume(t *testing.T) {
	cases := []struct {
		line string
		kind gameevent.Kind
	}{
		{"GI,2010,foo,bar,10753300000000000,baz", gameevent.Interruption},
		{"GI,6014,foo,bar,10753300000000001,baz", gameevent.Interruption},
		{"GI,2011,foo,bar,10753300000000002,baz", gameevent.Resume},
		{"GI,6015,foo,bar,10753300000000003,baz", gameevent.Resume},
	}
	for _, c := range cases {
		for _, p := range []Parser{Split{}, Regex{}} {
			evt, err := p.Parse(c.line)
			if err != nil {
				t.Fatalf("%T.Parse(%q): %v", p, c.line, err)
			}
			if evt.Kind != c.kind {
				t.Fatalf("%T.Parse(%q).Kind = %v, want %v", p, c.line, evt.Kind, c.kind)
			}
		}
	}
}

func TestUnknownInterruptionID(t *testing.T) {
	for _, p := range []Parser{Split{}, Regex{}} {
		_, err := p.Parse("GI,9999,foo,bar,10753300000000000,baz")
		var pe *gameevent.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%T.Parse: err = %v, want *gameevent.ParseError", p, err)
		}
	}
}

func TestUnknownLine(t *testing.T) {
	for _, p := range []Parser{Split{}, Regex{}} {
		_, err := p.Parse("XX,garbage,line")
		if err == nil {
			t.Fatalf("%T.Parse: expected error on unknown line shape", p)
		}
	}
}

// Differential oracle: both parsers must produce identical results across
// a representative corpus of lines.
func TestSplitAndRegexAgree(t *testing.T) {
	lines := []string{
		"SE,1,10753295594424116,100,200,300,extra,fields,here",
		"SE,2,12398000000000000,-100,-200,-300",
		"SE,3,13086639146403495,0,0,0",
		"GI,2010,x,y,10800000000000000,z",
		"GI,2011,x,y,10800000000001000,z",
		"GI,6014,x,y,12398000000000001,z",
		"GI,6015,x,y,13086639146403496,z",
		"not,a,known,line",
		"GI,4242,x,y,10800000000000000,z",
	}
	for _, line := range lines {
		splitEvt, splitErr := Split{}.Parse(line)
		regexEvt, regexErr := Regex{}.Parse(line)

		if (splitErr == nil) != (regexErr == nil) {
			t.Fatalf("line %q: split err=%v, regex err=%v", line, splitErr, regexErr)
		}
		if splitErr == nil && splitEvt != regexEvt {
			t.Fatalf("line %q: split=%+v, regex=%+v", line, splitEvt, regexEvt)
		}
	}
}
