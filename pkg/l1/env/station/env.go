// Package station sets up the bus side of a command station.
package station

import (
	"fmt"

	"github.com/robotalks/track.go/pkg/config"
	"github.com/robotalks/track.go/pkg/l1"
	"github.com/robotalks/track.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/track.go/pkg/l1/env"
)

// Env is the env of a station on the bus.
type Env struct {
	Config *config.Config
	Info   l1.StationInfo
	Server *mqtt.Server
}

// Description is published in the station meta.
const Description = "track decoder command station"

// Info builds the station info from the config. Without a configured ID
// the machine ID is used.
func Info(c *config.Config) l1.StationInfo {
	info := l1.StationInfo{
		Ref:  l1.StationRef{ID: c.Bus.StationID},
		Meta: l1.StationMeta{Description: Description},
	}
	if !info.Ref.IsValid() {
		info.Ref.ID = env.MachineID()
	}
	info.Meta.CID = env.CIDFrom(info.Ref.ID)
	return info
}

// NewEnv creates Env from config.
func NewEnv(c *config.Config) (*Env, error) {
	if c.Bus.MQTTBrokerURL == "" {
		return nil, fmt.Errorf("MQTT broker URL must be specified")
	}
	e := &Env{Config: c, Info: Info(c)}
	srv, err := mqtt.NewServer(c.Bus.MQTTBrokerURL, e.Info)
	if err != nil {
		return nil, fmt.Errorf("create MQTT server error: %w", err)
	}
	e.Server = srv
	return e, nil
}
