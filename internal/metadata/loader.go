// Package metadata loads the initial player/team/ball registry from a
// metadata file: one BALL or PLAYER record per line.
package metadata

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/debs2013/possession/internal/context"
	"github.com/debs2013/possession/internal/telemetry"
)

// NotFoundError wraps a missing metadata file; it is fatal at startup.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("metadata: cannot open %q: %v", e.Path, e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// Registry is the parsed result of a metadata file: an ordered player list
// (registration order, used for tie-breaking) and the set of ball sensor
// ids.
type Registry struct {
	Players  []context.Player
	BallSids []int
}

// Load reads the metadata file at path and returns a Registry.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &NotFoundError{Path: path, Err: err}
	}
	defer f.Close()
	return parse(f)
}

// ParseBytes parses metadata file content already in memory — used by
// internal/metacache to rebuild a Registry from a cached copy without
// touching disk a second time.
func ParseBytes(data []byte) (*Registry, error) {
	return parse(bytes.NewReader(data))
}

func parse(r io.Reader) (*Registry, error) {
	reg := &Registry{}
	scanner := bufio.NewScanner(r)
	// Lines in this dataset can be long (trailing stat fields); grow the
	// scanner's buffer accordingly.
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		if err := parseLine(reg, line); err != nil {
			telemetry.Warnf("metadata: line %d: %v — skipped", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("metadata: scan: %w", err)
	}
	return reg, nil
}

func parseLine(reg *Registry, line string) error {
	fields := strings.Split(line, ",")
	if len(fields) == 0 {
		return fmt.Errorf("empty line")
	}

	switch fields[0] {
	case "BALL":
		if len(fields) < 3 {
			return fmt.Errorf("BALL record needs group_id,sid: %q", line)
		}
		sid, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil {
			return fmt.Errorf("BALL sid: %w", err)
		}
		reg.BallSids = append(reg.BallSids, sid)
		return nil

	case "PLAYER":
		return parsePlayer(reg, fields)

	default:
		return fmt.Errorf("unknown record kind %q", fields[0])
	}
}

// parsePlayer parses "PLAYER,<team>,<name>,<sid1>,<sid2>,<sid3>,<sid4>".
// Sensor ids equal to 0 are ignored. The name field may itself contain
// commas introduced by spaces in older dataset exports, but in this
// dataset names never contain literal commas — only spaces — so splitting
// on "," and treating everything between the team field and the last four
// numeric fields as the name handles "names may contain spaces" safely.
func parsePlayer(reg *Registry, fields []string) error {
	if len(fields) < 4 {
		return fmt.Errorf("PLAYER record too short: %v", fields)
	}
	teamField := strings.TrimSpace(fields[1])
	var team context.Team
	switch teamField {
	case "A":
		team = context.TeamA
	case "B":
		team = context.TeamB
	default:
		return fmt.Errorf("PLAYER team must be A or B, got %q", teamField)
	}

	// The trailing fields are the sensor ids (up to four); everything
	// between field[2] and the sensor ids is the (possibly spacey) name.
	sidCount := len(fields) - 3 // fields after team and the first name field
	if sidCount > 4 {
		sidCount = 4
	}
	nameEnd := len(fields) - sidCount
	name := strings.TrimSpace(strings.Join(fields[2:nameEnd], ","))
	if name == "" {
		return fmt.Errorf("PLAYER record missing name")
	}

	var sids []int
	for _, raw := range fields[nameEnd:] {
		sid, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("PLAYER sid: %w", err)
		}
		if sid == 0 {
			continue
		}
		sids = append(sids, sid)
	}
	if len(sids) == 0 {
		return fmt.Errorf("PLAYER record has no non-zero sensors")
	}

	reg.Players = append(reg.Players, context.Player{Name: name, Team: team, Sids: sids})
	return nil
}
