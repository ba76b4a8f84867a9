// Package connector sets up the client side of the station bus.
package connector

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/robotalks/track.go/pkg/l1"
	"github.com/robotalks/track.go/pkg/l1/comm/mqtt"
)

// Config provides common options to setup Connectors.
type Config struct {
	Ref l1.StationRef

	// BrokerURL specifies the bus.
	// e.g. mqtt://host:port/topic-prefix
	BrokerURL string
}

var defaultConfig = Config{
	BrokerURL: "mqtt://localhost:1883/track/",
}

func init() {
	if val := os.Getenv("TRACK_STATION"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("TRACK_MQTT_URL"); val != "" {
		defaultConfig.BrokerURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.ID, "station", defaultConfig.Ref.ID, "Station ID to connect.")
	flag.StringVar(&defaultConfig.BrokerURL, "mqtt", defaultConfig.BrokerURL, "MQTT broker URL.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector using current config.
func (c *Config) NewConnector() (l1.Connector, error) {
	parsedURL, err := url.Parse(c.BrokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid broker URL: %w", err)
	}
	switch parsedURL.Scheme {
	case "mqtt", "mqtts":
		return mqtt.NewConnector(c.BrokerURL)
	default:
		return nil, fmt.Errorf("unknown broker URL scheme: %q", parsedURL.Scheme)
	}
}

// Connect directly connects to the configured station.
func (c *Config) Connect(ctx context.Context) (l1.StationConn, error) {
	if !c.Ref.IsValid() {
		return nil, fmt.Errorf("station id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(ctx, c.Ref)
}
