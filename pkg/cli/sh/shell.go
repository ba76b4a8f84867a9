package sh

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/abiosoft/ishell"

	fx "github.com/robotalks/track.go/pkg/framework"
	"github.com/robotalks/track.go/pkg/l1"
	env "github.com/robotalks/track.go/pkg/l1/env/connector"
	"github.com/robotalks/track.go/pkg/l1/msgs"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	Timeout     time.Duration

	Shell  *ishell.Shell
	Config *env.Config
	Conn   *Session

	watchLock sync.Mutex
	watch     bool
}

// Session is an open connection to a station.
type Session struct {
	Ctx    context.Context
	Cancel func()
	Ref    l1.StationRef
	Conn   l1.StationConn
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	cmdTimeout = 5 * time.Second

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&WatchCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.DurationVar(&cmdTimeout, "timeout", cmdTimeout, "Command timeout.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     cmdTimeout,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// FormatInfo prints StationInfo into friendly string for display.
func FormatInfo(info l1.StationInfo) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s", info.Ref.Name())
	if info.Meta.CID != 0 {
		fmt.Fprintf(&w, " [%04x]", info.Meta.CID)
	}
	if info.Meta.Description != "" {
		fmt.Fprintf(&w, ": %s", info.Meta.Description)
	}
	return w.String()
}

// FormatMsg prints a bus message.
func FormatMsg(msg fx.Message) string {
	s, ok := msg.(msgs.SerializableMessage)
	if !ok {
		return fmt.Sprintf("%v", msg)
	}
	return fmt.Sprintf("%s %s",
		reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
		s.Serializable().String())
}

type printer interface {
	Println(val ...interface{})
}

func (s *Shell) print(c printer, msg fx.Message) error {
	if s.OutputJSON {
		out, err := json.Marshal(msg.(msgs.SerializableMessage).Serializable())
		if err != nil {
			return err
		}
		c.Println(string(out))
		return nil
	}
	c.Println(FormatMsg(msg))
	return nil
}

// DoCommand runs a command and waits for result.
func DoCommand(c *ishell.Context, msg fx.Message) (err error) {
	s := ShellFrom(c)
	if s.Conn == nil {
		err = fmt.Errorf("not connected")
		c.Err(err)
		return
	}
	ctx, cancel := context.WithTimeout(s.Conn.Ctx, s.Timeout)
	defer cancel()
	res, err := l1.Wait(ctx, s.Conn.Conn.DoCommand(msg))
	if err == nil {
		if e, ok := res.(*msgs.CommandErr); ok {
			err = e
		}
	}
	if err != nil {
		c.Err(err)
		return err
	}
	if _, ok := res.(*msgs.CommandOK); ok && !s.OutputJSON {
		c.Println("OK")
		return nil
	}
	if err = s.print(c, res); err != nil {
		c.Err(err)
	}
	return err
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// DiscoverStations discovers stations.
func (s *Shell) DiscoverStations(filter func(l1.StationInfo) bool) (l1.Connector, []l1.StationInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, nil, err
	}
	infoList, err := connector.Discover(context.TODO())
	if err != nil {
		return connector, nil, err
	}
	if filter != nil {
		items := make([]l1.StationInfo, 0, len(infoList))
		for _, info := range infoList {
			if filter(info) {
				items = append(items, info)
			}
		}
		infoList = items
	}
	return connector, infoList, nil
}

// SelectStation discovers stations and asks for a choice.
func (s *Shell) SelectStation(filter func(l1.StationInfo) bool) (*l1.StationInfo, error) {
	_, infoList, err := s.DiscoverStations(filter)
	if err != nil {
		return nil, err
	}
	if len(infoList) == 0 {
		return nil, nil
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, fmt.Errorf("more than 1 stations discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatInfo(info)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
	}
	return &infoList[index], nil
}

// Connect connects station with ref.
func (s *Shell) Connect(ref l1.StationRef) error {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return err
	}
	sess := &Session{Ref: ref}
	sess.Ctx, sess.Cancel = context.WithCancel(context.Background())
	if sess.Conn, err = connector.Connect(sess.Ctx, ref); err != nil {
		sess.Cancel()
		return err
	}
	s.Disconnect()
	s.Conn = sess
	go s.printEvents(sess)
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", ref.Name()))
	return nil
}

func (s *Shell) printEvents(sess *Session) {
	for msg := range sess.Conn.Events() {
		s.watchLock.Lock()
		watch := s.watch
		s.watchLock.Unlock()
		if !watch {
			continue
		}
		if err := s.print(s.Shell, msg); err != nil {
			log.Printf("event %T: %v", msg, err)
		}
	}
}

// SetWatch turns printing of events on or off.
func (s *Shell) SetWatch(on bool) {
	s.watchLock.Lock()
	s.watch = on
	s.watchLock.Unlock()
}

// Disconnect disconnects current station.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Cancel()
		if closer, ok := s.Conn.Conn.(io.Closer); ok {
			closer.Close()
		}
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoConnect && s.Config.Ref.IsValid() {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Ref.Name())
		}
		if err := s.Connect(s.Config.Ref); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Ref.Name(), err)
		}
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// DiscoverCmd discovers stations.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			_, infoList, err := s.DiscoverStations(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(infoList) == 0 {
					// in case infoList is nil, make it empty slice.
					infoList = []l1.StationInfo{}
				}
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No stations found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a station.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[ID]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var ref l1.StationRef
			if len(c.Args) >= 1 {
				ref.ID = c.Args[0]
			} else {
				info, err := s.SelectStation(nil)
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no station discovered"))
					return
				}
				ref = info.Ref
			}
			if err := s.Connect(ref); err != nil {
				c.Err(err)
				return
			}
		},
	}

	// DisconnectCmd disconnects current station.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// WatchCmd toggles printing of station events.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "on|off",
		Func: func(c *ishell.Context) {
			on := true
			if len(c.Args) > 0 {
				switch c.Args[0] {
				case "on":
				case "off":
					on = false
				default:
					c.Err(fmt.Errorf("expect on or off"))
					return
				}
			}
			ShellFrom(c).SetWatch(on)
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
