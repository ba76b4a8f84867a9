package decoder

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/track.go/pkg/cli/sh"
	"github.com/robotalks/track.go/pkg/l1/msgs"
	"github.com/robotalks/track.go/pkg/track"
)

func parseUint(name, s string, max uint64) (uint32, error) {
	val, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("Invalid %s: %v", name, err)
	}
	if val > max {
		return 0, fmt.Errorf("Invalid %s: larger than %d", name, max)
	}
	return uint32(val), nil
}

// parseArgs parses the leading numeric arguments and an optional trailing
// format name.
func parseArgs(args []string, names ...string) ([]uint32, track.Format, error) {
	if len(args) < len(names) {
		return nil, track.FormatUnknown, fmt.Errorf("%s required", names[len(args)])
	}
	vals := make([]uint32, len(names))
	for n, name := range names {
		max := uint64(0xffffffff)
		if name == "VALUE" {
			max = 0xff
		}
		val, err := parseUint(name, args[n], max)
		if err != nil {
			return nil, track.FormatUnknown, err
		}
		vals[n] = val
	}
	if len(args) > len(names) {
		format, err := track.ParseFormat(args[len(names)])
		return vals, format, err
	}
	return vals, track.FormatUnknown, nil
}

var (
	// POMReadCmd exposes PomRead command.
	POMReadCmd = ishell.Cmd{
		Name:    "pom.read",
		Aliases: []string{"pr"},
		Help:    "ADDR CV [FORMAT]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			vals, format, err := parseArgs(c.Args, "ADDR", "CV")
			if err != nil {
				c.Err(err)
				return
			}
			var msg msgs.PomRead
			msg.Addr, msg.Cv, msg.Format = vals[0], vals[1], uint32(format)
			sh.DoCommand(c, &msg)
		}),
	}

	// POMWriteCmd exposes PomWrite command.
	POMWriteCmd = ishell.Cmd{
		Name:    "pom.write",
		Aliases: []string{"pw"},
		Help:    "ADDR CV VALUE [FORMAT]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			vals, format, err := parseArgs(c.Args, "ADDR", "CV", "VALUE")
			if err != nil {
				c.Err(err)
				return
			}
			var msg msgs.PomWrite
			msg.Addr, msg.Cv, msg.Value, msg.Format = vals[0], vals[1], vals[2], uint32(format)
			sh.DoCommand(c, &msg)
		}),
	}

	// ProgReadCmd exposes ProgRead command.
	ProgReadCmd = ishell.Cmd{
		Name:    "prog.read",
		Aliases: []string{"gr"},
		Help:    "CV",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			vals, _, err := parseArgs(c.Args, "CV")
			if err != nil {
				c.Err(err)
				return
			}
			var msg msgs.ProgRead
			msg.Cv = vals[0]
			sh.DoCommand(c, &msg)
		}),
	}

	// ProgWriteCmd exposes ProgWrite command.
	ProgWriteCmd = ishell.Cmd{
		Name:    "prog.write",
		Aliases: []string{"gw"},
		Help:    "CV VALUE",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			vals, _, err := parseArgs(c.Args, "CV", "VALUE")
			if err != nil {
				c.Err(err)
				return
			}
			var msg msgs.ProgWrite
			msg.Cv, msg.Value = vals[0], vals[1]
			sh.DoCommand(c, &msg)
		}),
	}
)

func init() {
	sh.AddCmds(
		&POMReadCmd,
		&POMWriteCmd,
		&ProgReadCmd,
		&ProgWriteCmd,
	)
}
