package parser

import (
	"regexp"
	"strconv"

	"github.com/debs2013/possession/internal/gameevent"
)

var (
	seRe = regexp.MustCompile(`^SE,(\d+),(\d+),(-?\d+),(-?\d+),(-?\d+)(?:,.*)?$`)
	giRe = regexp.MustCompile(`^GI,(\d+),[^,]*,[^,]*,(\d+)(?:,.*)?$`)
)

// Regex parses lines with two regular expressions matching the SE and GI
// line shapes. It is kept as a conformance oracle: Split and Regex must
// agree on every line.
type Regex struct{}

// Parse implements Parser.
func (Regex) Parse(line string) (gameevent.Event, error) {
	if m := seRe.FindStringSubmatch(line); m != nil {
		sid, err1 := strconv.Atoi(m[1])
		ts, err2 := strconv.ParseInt(m[2], 10, 64)
		x, err3 := strconv.ParseInt(m[3], 10, 64)
		y, err4 := strconv.ParseInt(m[4], 10, 64)
		z, err5 := strconv.ParseInt(m[5], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			return gameevent.Event{}, gameevent.UnknownLine(line)
		}
		return gameevent.NewPosition(sid, ts, x, y, z), nil
	}

	if m := giRe.FindStringSubmatch(line); m != nil {
		eventID, err1 := strconv.Atoi(m[1])
		ts, err2 := strconv.ParseInt(m[2], 10, 64)
		if err1 != nil || err2 != nil {
			return gameevent.Event{}, gameevent.UnknownLine(line)
		}
		switch eventID {
		case firstHalfInterruptionID, secondHalfInterruptionID:
			return gameevent.NewInterruption(ts), nil
		case firstHalfResumeID, secondHalfResumeID:
			return gameevent.NewResume(ts), nil
		default:
			return gameevent.Event{}, gameevent.UnknownInterruptionID(eventID)
		}
	}

	return gameevent.Event{}, gameevent.UnknownLine(line)
}
