package parser

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/internal/geo"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// Op is the kind of one simulation step.
type Op int

const (
	OpPose Op = iota
	OpState
	OpSession
	OpNoFrame
	OpTouch
	OpWait
)

func (o Op) String() string {
	switch o {
	case OpPose:
		return "pose"
	case OpState:
		return "state"
	case OpSession:
		return "session"
	case OpNoFrame:
		return "noframe"
	case OpTouch:
		return "touch"
	case OpWait:
		return "wait"
	default:
		return "unknown"
	}
}

// Step is one parsed script line. Only the fields matching Op are set.
type Step struct {
	Line   int
	Op     Op
	Pose   core.Pose
	State  core.TrackingState
	Active bool
	Touch  core.TouchEvent
	Wait   time.Duration
}

// Parser reads simulation scripts.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new Parser
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse reads a script, one step per line. Blank lines and lines starting with
// '#' are skipped. The first malformed line aborts the parse.
func (p *Parser) Parse(r io.Reader) ([]Step, error) {
	var steps []Step
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		step, err := p.ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		step.Line = n
		steps = append(steps, step)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("error reading script: %w", err)
	}
	p.logger.Debug("script parsed", "lines", n, "steps", len(steps))
	return steps, nil
}

// ParseLine parses a single non-comment line.
func (p *Parser) ParseLine(line string) (Step, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Step{}, fmt.Errorf("empty step")
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "pose":
		return parsePose(args)

	case "state":
		if len(args) != 1 {
			return Step{}, fmt.Errorf("state: expected 1 argument, got %d", len(args))
		}
		st, ok := core.ParseTrackingState(args[0])
		if !ok {
			return Step{}, fmt.Errorf("state: unknown tracking state %q", args[0])
		}
		return Step{Op: OpState, State: st}, nil

	case "session":
		if len(args) != 1 {
			return Step{}, fmt.Errorf("session: expected on or off")
		}
		switch strings.ToLower(args[0]) {
		case "on", "resume":
			return Step{Op: OpSession, Active: true}, nil
		case "off", "pause":
			return Step{Op: OpSession, Active: false}, nil
		default:
			return Step{}, fmt.Errorf("session: expected on or off, got %q", args[0])
		}

	case "noframe":
		return Step{Op: OpNoFrame}, nil

	case "tap", "down", "move", "up", "cancel":
		action, _ := core.ParseTouchAction(cmd)
		ev := core.TouchEvent{Action: action}
		if len(args) > 0 {
			x, y, err := parseScreen(args[0])
			if err != nil {
				return Step{}, fmt.Errorf("%s: %w", cmd, err)
			}
			ev.X, ev.Y = x, y
		}
		return Step{Op: OpTouch, Touch: ev}, nil

	case "wait":
		if len(args) != 1 {
			return Step{}, fmt.Errorf("wait: expected a duration")
		}
		d, err := time.ParseDuration(args[0])
		if err != nil || d < 0 {
			return Step{}, fmt.Errorf("wait: invalid duration %q", args[0])
		}
		return Step{Op: OpWait, Wait: d}, nil

	default:
		return Step{}, fmt.Errorf("unknown step %q", fields[0])
	}
}

func parsePose(args []string) (Step, error) {
	if len(args) < 1 || len(args) > 2 {
		return Step{}, fmt.Errorf("pose: expected x,y,z [qx,qy,qz,qw]")
	}
	pos, err := geo.VecFromString(args[0])
	if err != nil {
		return Step{}, fmt.Errorf("pose: position %q: %w", args[0], err)
	}
	rot := core.IdentityRotation
	if len(args) == 2 {
		rot, err = geo.QuatFromString(args[1])
		if err != nil {
			return Step{}, fmt.Errorf("pose: rotation %q: %w", args[1], err)
		}
	}
	return Step{Op: OpPose, Pose: core.NewPose(pos, rot)}, nil
}

func parseScreen(s string) (float64, float64, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("screen position %q: expected x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("screen x %q: %w", xs, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("screen y %q: %w", ys, err)
	}
	return x, y, nil
}
