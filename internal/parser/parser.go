package parser

import "github.com/debs2013/possession/internal/gameevent"

// Parser turns one raw dataset line into an Event.
type Parser interface {
	Parse(line string) (gameevent.Event, error)
}

// Default is the parser the fetcher uses in production: Split.
var Default Parser = Split{}
