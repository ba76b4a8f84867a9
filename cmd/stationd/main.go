package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/track.go/pkg/config"
	fx "github.com/robotalks/track.go/pkg/framework"
	"github.com/robotalks/track.go/pkg/l0/comm"
	env "github.com/robotalks/track.go/pkg/l1/env/station"
	"github.com/robotalks/track.go/pkg/locodb"
	"github.com/robotalks/track.go/pkg/nvstore"
	"github.com/robotalks/track.go/pkg/service"
	"github.com/robotalks/track.go/pkg/track"
	"github.com/robotalks/track.go/pkg/track/dcca"
	"github.com/robotalks/track.go/pkg/track/progtrack"
	"github.com/robotalks/track.go/pkg/track/queue"
	"github.com/robotalks/track.go/pkg/track/railcom"
)

func init() {
	config.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := config.Load()
	if err != nil {
		glog.Exitf("config: %v", err)
	}
	e, err := env.NewEnv(conf)
	if err != nil {
		glog.Exit(err)
	}

	link, port, err := comm.OpenSerial(conf.Link.Port, conf.Link.Baud)
	if err != nil {
		glog.Exit(err)
	}
	defer port.Close()

	factory := track.NewFactory(conf)
	db := locodb.NewMemory()
	q := queue.New(factory, db)
	rx := railcom.NewReceiver()
	rx.Timing = conf.RailComTiming()
	gen := comm.NewGenerator(link, q, rx, conf)
	prog := progtrack.New(factory, q, gen)

	runnables := []fx.Runnable{
		fx.NamedRun("generator", gen),
		fx.NamedRun("railcom", rx),
		e.Server,
	}

	var status service.StatusSource
	var reg *dcca.Registrar
	if conf.DCCAEnabled() {
		session, err := nvstore.NewFile(conf.Store.SessionFile).Next()
		if err != nil {
			glog.Exitf("session: %v", err)
		}
		reg = dcca.NewRegistrar(factory, q, db, e.Info.Meta.CID, session)
		reg.Config = conf.RegistrarConfig()
		reg.Gate = dcca.PoweredGate(gen, conf.DCCAEnabled)
		status = reg
		runnables = append(runnables, fx.NamedRun("dcca", reg))
	}

	svc := service.New(prog, status, e.Server)
	svc.Register(e.Server)
	if reg != nil {
		reg.OnRegistered = svc.OnRegistered
	}

	if err := gen.SetPower(track.PowerMain); err != nil {
		glog.Exitf("power on: %v", err)
	}
	glog.Infof("station %s (cid %04x) on %s", e.Info.Ref.Name(), e.Info.Meta.CID, conf.Link.Port)
	if err := fx.NewRunner().HandleSignals().Go(runnables...).Wait(); err != nil {
		glog.Error(err)
	}
	if err := gen.SetPower(track.PowerOff); err != nil {
		glog.Warningf("power off: %v", err)
	}
}
