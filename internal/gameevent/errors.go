package gameevent

import "fmt"

// ParseError reports a line that could not be turned into an Event:
// either the line matched no known shape, or a GI line named an event id
// outside the known interruption/resume set.
type ParseError struct {
	Line      string
	EventID   int
	unknownID bool
}

func (e *ParseError) Error() string {
	if e.unknownID {
		return fmt.Sprintf("gameevent: unknown interruption id %d", e.EventID)
	}
	return fmt.Sprintf("gameevent: line matches no known event shape: %q", e.Line)
}

// UnknownLine reports a line matching neither the SE nor GI shape.
func UnknownLine(line string) error {
	return &ParseError{Line: line}
}

// UnknownInterruptionID reports a GI line with an event id that is neither
// an interruption nor a resume marker.
func UnknownInterruptionID(eventID int) error {
	return &ParseError{EventID: eventID, unknownID: true}
}
