// Package config holds the station settings.
//
// Values are taken from the built-in defaults, the TRACK_MQTT_URL
// environment variable, an optional TOML file and the command line, in
// that order.
package config

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/robotalks/track.go/pkg/track"
	"github.com/robotalks/track.go/pkg/track/dcca"
	"github.com/robotalks/track.go/pkg/track/railcom"
)

// MaxRepeat is the highest repeat count a packet can carry.
const MaxRepeat = 255

// Repeat holds the per-format repeat counts.
type Repeat struct {
	MM        int `toml:"mm"`
	DCC       int `toml:"dcc"`
	M3        int `toml:"m3"`
	Accessory int `toml:"accessory"`
	POM       int `toml:"pom"`
}

// RailCom configures the reply windows.
type RailCom struct {
	Enabled bool `toml:"enabled"`
	// SelfTimed lets the station time the windows when the generator
	// sends no phase markers.
	SelfTimed bool          `toml:"self_timed"`
	Delay     time.Duration `toml:"delay"`
	Window1   time.Duration `toml:"window1"`
	Window2   time.Duration `toml:"window2"`
}

// DCCA configures automatic decoder registration.
type DCCA struct {
	Enabled          bool          `toml:"enabled"`
	ReplyTimeout     time.Duration `toml:"reply_timeout"`
	LogonInterval    time.Duration `toml:"logon_interval"`
	IsolationRetries int           `toml:"isolation_retries"`
	ShortInfoRetries int           `toml:"shortinfo_retries"`
	AssignRetries    int           `toml:"assign_retries"`
	ClearRetries     int           `toml:"clear_retries"`
	BlockRetries     int           `toml:"block_retries"`
	CandidateLimit   int           `toml:"candidate_limit"`
}

// Link configures the serial port of the signal generator.
type Link struct {
	Port string `toml:"port"`
	Baud int    `toml:"baud"`
}

// Bus configures the station bus.
type Bus struct {
	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `toml:"mqtt"`
	StationID     string `toml:"station"`
}

// Store configures persisted state.
type Store struct {
	SessionFile string `toml:"session_file"`
}

// Config is the station configuration.
type Config struct {
	Repeat  Repeat  `toml:"repeat"`
	RailCom RailCom `toml:"railcom"`
	DCCA    DCCA    `toml:"dcca"`
	Link    Link    `toml:"link"`
	Bus     Bus     `toml:"bus"`
	Store   Store   `toml:"store"`
}

var defaultConfig = Config{
	Repeat: Repeat{
		MM:        track.DefaultSettings.MMRepeat,
		DCC:       track.DefaultSettings.DCCRepeat,
		M3:        track.DefaultSettings.M3Repeat,
		Accessory: track.DefaultSettings.AccRepeat,
		POM:       track.DefaultSettings.POMRep,
	},
	RailCom: RailCom{
		Enabled: true,
		Delay:   railcom.DefaultTiming.Delay,
		Window1: railcom.DefaultTiming.Window1,
		Window2: railcom.DefaultTiming.Window2,
	},
	DCCA: DCCA{
		Enabled:          true,
		ReplyTimeout:     dcca.DefaultConfig.ReplyTimeout,
		LogonInterval:    dcca.DefaultConfig.LogonInterval,
		IsolationRetries: dcca.DefaultConfig.IsolationRetries,
		ShortInfoRetries: dcca.DefaultConfig.ShortInfoRetries,
		AssignRetries:    dcca.DefaultConfig.AssignRetries,
		ClearRetries:     dcca.DefaultConfig.ClearRetries,
		BlockRetries:     dcca.DefaultConfig.BlockRetries,
		CandidateLimit:   dcca.DefaultConfig.CandidateLimit,
	},
	Link: Link{
		Port: "/dev/ttyUSB0",
		Baud: 115200,
	},
	Bus: Bus{
		MQTTBrokerURL: "mqtt://localhost:1883/track/",
	},
	Store: Store{
		SessionFile: "session.toml",
	},
}

var configFile string

func init() {
	if val := os.Getenv("TRACK_MQTT_URL"); val != "" {
		defaultConfig.Bus.MQTTBrokerURL = val
	}
}

func (c *Config) bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Link.Port, "port", c.Link.Port, "Serial port of the signal generator")
	fs.IntVar(&c.Link.Baud, "baud", c.Link.Baud, "Baud rate of the signal generator")
	fs.StringVar(&c.Bus.MQTTBrokerURL, "mqtt", c.Bus.MQTTBrokerURL, "MQTT broker URL")
	fs.StringVar(&c.Bus.StationID, "id", c.Bus.StationID, "Station ID, defaults to the machine ID")
	fs.StringVar(&c.Store.SessionFile, "session-file", c.Store.SessionFile, "File keeping the DCC-A session counter")
	fs.BoolVar(&c.RailCom.Enabled, "railcom", c.RailCom.Enabled, "Generate the RailCom cutout")
	fs.BoolVar(&c.DCCA.Enabled, "dcca", c.DCCA.Enabled, "Register DCC-A decoders")
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "TOML config file")
	defaultConfig.bind(flag.CommandLine)
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Load creates a Config from the defaults and the file given with
// -config. Flags set on the command line take precedence over the file.
func Load() (*Config, error) {
	conf := NewConfig()
	if configFile == "" {
		return conf, conf.Validate()
	}
	if err := conf.LoadFile(configFile); err != nil {
		return nil, err
	}
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	conf.bind(fs)
	var err error
	flag.Visit(func(f *flag.Flag) {
		if bound := fs.Lookup(f.Name); bound != nil && err == nil {
			err = bound.Value.Set(f.Value.String())
		}
	})
	if err != nil {
		return nil, err
	}
	return conf, conf.Validate()
}

// LoadFile merges the TOML file into c. Unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for n, k := range undecoded {
			keys[n] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("config load failed (%s): unknown keys %s", path, strings.Join(keys, ", "))
	}
	return c.Validate()
}

// Validate checks the ranges of the settings.
func (c *Config) Validate() error {
	repeats := []struct {
		name string
		val  int
	}{
		{"repeat.mm", c.Repeat.MM},
		{"repeat.dcc", c.Repeat.DCC},
		{"repeat.m3", c.Repeat.M3},
		{"repeat.accessory", c.Repeat.Accessory},
		{"repeat.pom", c.Repeat.POM},
	}
	for _, r := range repeats {
		if r.val < 1 || r.val > MaxRepeat {
			return &ValueError{Key: r.name, Reason: fmt.Sprintf("must be within 1..%d", MaxRepeat)}
		}
	}
	if c.DCCA.Enabled && !c.RailCom.Enabled {
		return &ValueError{Key: "dcca.enabled", Reason: "requires railcom"}
	}
	if c.DCCA.ReplyTimeout <= 0 {
		return &ValueError{Key: "dcca.reply_timeout", Reason: "must be positive"}
	}
	if c.Link.Baud < 0 {
		return &ValueError{Key: "link.baud", Reason: "must not be negative"}
	}
	return nil
}

// RepeatCount implements track.Settings.
func (c *Config) RepeatCount(f track.Format, accessory bool) int {
	switch {
	case accessory:
		return c.Repeat.Accessory
	case f.IsMM():
		return c.Repeat.MM
	case f.IsM3():
		return c.Repeat.M3
	}
	return c.Repeat.DCC
}

// POMRepeat implements track.Settings.
func (c *Config) POMRepeat() int {
	return c.Repeat.POM
}

// RailComEnabled implements track.Settings.
func (c *Config) RailComEnabled() bool {
	return c.RailCom.Enabled
}

// DCCAEnabled tells whether decoders are registered automatically.
func (c *Config) DCCAEnabled() bool {
	return c.DCCA.Enabled && c.RailCom.Enabled
}

// RailComTiming returns the window timing for a self-timed receiver, the
// zero Timing when the generator sends phase markers.
func (c *Config) RailComTiming() railcom.Timing {
	if !c.RailCom.SelfTimed {
		return railcom.Timing{}
	}
	return railcom.Timing{
		Delay:   c.RailCom.Delay,
		Window1: c.RailCom.Window1,
		Window2: c.RailCom.Window2,
	}
}

// RegistrarConfig returns the DCC-A registrar settings.
func (c *Config) RegistrarConfig() dcca.Config {
	conf := dcca.DefaultConfig
	conf.ReplyTimeout = c.DCCA.ReplyTimeout
	conf.LogonInterval = c.DCCA.LogonInterval
	conf.IsolationRetries = c.DCCA.IsolationRetries
	conf.ShortInfoRetries = c.DCCA.ShortInfoRetries
	conf.AssignRetries = c.DCCA.AssignRetries
	conf.ClearRetries = c.DCCA.ClearRetries
	conf.BlockRetries = c.DCCA.BlockRetries
	conf.CandidateLimit = c.DCCA.CandidateLimit
	return conf
}
