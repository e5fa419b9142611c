// Package parser turns raw dataset lines into gameevent.Event values.
// Split provides the default, comma-split implementation; Regex provides
// a second, independent implementation kept as a conformance oracle in
// tests. Comma-splitting is materially faster than regex matching on this
// line shape, so Split is the default and Regex exists only to cross-check it.
package parser

import (
	"strconv"
	"strings"

	"github.com/debs2013/possession/internal/gameevent"
)

// first-half/second-half interruption and resume GI event ids.
const (
	firstHalfInterruptionID  = 2010
	secondHalfInterruptionID = 6014
	firstHalfResumeID        = 2011
	secondHalfResumeID       = 6015
)

// Split parses a line by splitting on commas. It is the default parser:
// materially faster than Regex on the dataset's line volume.
type Split struct{}

// Parse implements Parser.
func (Split) Parse(line string) (gameevent.Event, error) {
	comma := strings.IndexByte(line, ',')
	if comma < 0 {
		return gameevent.Event{}, gameevent.UnknownLine(line)
	}
	tag, rest := line[:comma], line[comma+1:]

	switch tag {
	case "SE":
		return parseSE(line, rest)
	case "GI":
		return parseGI(line, rest)
	default:
		return gameevent.Event{}, gameevent.UnknownLine(line)
	}
}

// parseSE parses "SE,<sid>,<ts>,<x>,<y>,<z>,..." — trailing fields ignored.
func parseSE(line, rest string) (gameevent.Event, error) {
	fields := splitN(rest, 5)
	if len(fields) < 5 {
		return gameevent.Event{}, gameevent.UnknownLine(line)
	}
	sid, err1 := strconv.Atoi(fields[0])
	ts, err2 := strconv.ParseInt(fields[1], 10, 64)
	x, err3 := strconv.ParseInt(fields[2], 10, 64)
	y, err4 := strconv.ParseInt(fields[3], 10, 64)
	z, err5 := strconv.ParseInt(fields[4], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return gameevent.Event{}, gameevent.UnknownLine(line)
	}
	return gameevent.NewPosition(sid, ts, x, y, z), nil
}

// parseGI parses "GI,<event_id>,<...>,<...>,<ts>,..." — trailing fields
// ignored. Only the event id (field 0) and timestamp (field 3) matter.
func parseGI(line, rest string) (gameevent.Event, error) {
	fields := splitN(rest, 4)
	if len(fields) < 4 {
		return gameevent.Event{}, gameevent.UnknownLine(line)
	}
	eventID, err1 := strconv.Atoi(fields[0])
	ts, err2 := strconv.ParseInt(fields[3], 10, 64)
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

// splitN splits s on commas into at most n+1 pieces, returning the first n
// (the rest — trailing fields — is discarded, matching the "trailing
// fields ignored" contract). Returns fewer than n elements if s has fewer
// fields.
func splitN(s string, n int) []string {
	fields := make([]string, 0, n)
	for len(fields) < n {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			fields = append(fields, s)
			break
		}
		fields = append(fields, s[:comma])
		s = s[comma+1:]
	}
	return fields
}
