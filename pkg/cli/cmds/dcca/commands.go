package dcca

import (
	"github.com/abiosoft/ishell"

	"github.com/robotalks/track.go/pkg/cli/sh"
	"github.com/robotalks/track.go/pkg/l1/msgs"
)

var (
	// StatusCmd exposes DccaStatusQuery command.
	StatusCmd = ishell.Cmd{
		Name:    "dcca.status",
		Aliases: []string{"ds"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.DccaStatusQuery{})
		}),
	}
)

func init() {
	sh.AddCmds(&StatusCmd)
}
