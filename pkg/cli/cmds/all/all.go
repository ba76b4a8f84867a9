// Package all registers every shell command.
package all

import (
	// commands
	_ "github.com/robotalks/track.go/pkg/cli/cmds/dcca"
	_ "github.com/robotalks/track.go/pkg/cli/cmds/decoder"
)
