package station

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/track.go/pkg/config"
	"github.com/robotalks/track.go/pkg/l1/env"
)

func TestInfo(t *testing.T) {
	conf := config.NewConfig()
	conf.Bus.StationID = "0a0b0c"
	info := Info(conf)
	require.Equal(t, "station/0a0b0c", info.Ref.Name())
	require.Equal(t, uint16(0x0a0b), info.Meta.CID)
	require.Equal(t, env.CIDFrom("0a0b0c"), info.Meta.CID)
}

func TestNewEnv(t *testing.T) {
	conf := config.NewConfig()
	conf.Bus.StationID = "s1"
	conf.Bus.MQTTBrokerURL = ""
	_, err := NewEnv(conf)
	require.Error(t, err)

	conf.Bus.MQTTBrokerURL = "mqtt://localhost:1883/track/"
	e, err := NewEnv(conf)
	require.NoError(t, err)
	require.Equal(t, "mqtt:station/s1", e.Server.Name())
	require.Equal(t, "track/", e.Server.Queue.TopicPrefix)
}
