// Package dcca implements automatic decoder discovery and registration.
package dcca

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/track.go/pkg/locodb"
	"github.com/robotalks/track.go/pkg/track"
)

// State is a registration step.
type State int

// Registration states.
const (
	StateStartup State = iota
	StateLogonIdle
	StateIsolation
	StateShortInfo
	StateAssign
	StateDataSpace
	StateClearFlags
)

var stateNames = [...]string{
	StateStartup:    "STARTUP",
	StateLogonIdle:  "LOGONIDLE",
	StateIsolation:  "ISOLATION",
	StateShortInfo:  "SHORTINFO",
	StateAssign:     "ASSIGN",
	StateDataSpace:  "DATASPACE",
	StateClearFlags: "CLEAR_CHGFLAGS",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Submitter queues packets for transmission.
type Submitter interface {
	Enqueue(p *track.Packet) error
}

// Gate tells whether registration may run, i.e. the track is powered and
// DCC-A is enabled.
type Gate interface {
	Enabled() bool
}

// GateFunc is func type of Gate.
type GateFunc func() bool

// Enabled implements Gate.
func (f GateFunc) Enabled() bool { return f() }

// PowerSource reports the track output mode.
type PowerSource interface {
	Power() track.Power
}

// PoweredGate opens while the main track is powered and enabled reports
// true. A nil enabled only checks power.
func PoweredGate(src PowerSource, enabled func() bool) Gate {
	return GateFunc(func() bool {
		return src.Power() == track.PowerMain && (enabled == nil || enabled())
	})
}

// Config holds the timing and retry budgets.
type Config struct {
	ReplyTimeout     time.Duration
	LogonInterval    time.Duration
	IdlePoll         time.Duration
	IsolationRetries int
	ShortInfoRetries int
	AssignRetries    int
	ClearRetries     int
	BlockRetries     int
	// CandidateLimit is the number of failed attempts after which a
	// decoder is ignored until the next restart.
	CandidateLimit int
}

// DefaultConfig is the default Config.
var DefaultConfig = Config{
	ReplyTimeout:     200 * time.Millisecond,
	LogonInterval:    time.Second,
	IdlePoll:         500 * time.Millisecond,
	IsolationRetries: 16,
	ShortInfoRetries: 3,
	AssignRetries:    3,
	ClearRetries:     3,
	BlockRetries:     5,
	CandidateLimit:   3,
}

// Registration reports a decoder that got its address.
type Registration struct {
	Vendor uint16
	UID    uint32
	Key    locodb.Key
	New    bool
}

// Status is a snapshot of the registrar.
type Status struct {
	State      State
	Session    uint8
	Vendor     uint16
	UID        uint32
	Registered int
	Candidates []Candidate
}

// sessionInfo is the state of the registration attempt in progress. It is
// reset by every UNIQUE reply.
type sessionInfo struct {
	Vendor      uint16
	UID         uint32
	Requested   uint16
	MaxFunc     byte
	Caps        byte
	ChangeFlags byte
	ChangeCount uint16

	addr        Address
	coded       uint16
	key         locodb.Key
	isNew       bool
	park        bool
	retries     int
	blockFailed bool
}

type stepFunc func(ctx context.Context) (State, error)

// Registrar runs the DCC-A registration.
type Registrar struct {
	Factory *track.Factory
	Queue   Submitter
	DB      locodb.DB
	Gate    Gate
	CID     uint16
	Session uint8
	Config  Config

	OnRegistered func(Registration)
	OnState      func(State)

	state      State
	info       sessionInfo
	xfer       transfer
	cands      candidates
	steps      map[State]stepFunc
	statusCh   chan chan Status
	lastLogon  time.Time
	registered int
}

// NewRegistrar creates a Registrar.
func NewRegistrar(factory *track.Factory, queue Submitter, db locodb.DB, cid uint16, session uint8) *Registrar {
	r := &Registrar{
		Factory:  factory,
		Queue:    queue,
		DB:       db,
		CID:      cid,
		Session:  session,
		Config:   DefaultConfig,
		statusCh: make(chan chan Status),
	}
	r.steps = map[State]stepFunc{
		StateStartup:    r.startup,
		StateLogonIdle:  r.logonIdle,
		StateIsolation:  r.isolation,
		StateShortInfo:  r.shortInfo,
		StateAssign:     r.assign,
		StateDataSpace:  r.dataSpace,
		StateClearFlags: r.clearFlags,
	}
	return r
}

// Run executes the registration until ctx is done.
func (r *Registrar) Run(ctx context.Context) error {
	r.setState(StateStartup)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.Gate != nil && !r.Gate.Enabled() {
			if r.state != StateStartup {
				glog.Info("dcca: disabled")
				r.setState(StateStartup)
			}
			if err := r.sleep(ctx, r.Config.IdlePoll); err != nil {
				return err
			}
			continue
		}
		next, err := r.steps[r.state](ctx)
		if err != nil {
			return err
		}
		r.setState(next)
	}
}

func (r *Registrar) setState(s State) {
	if s != r.state && glog.V(2) {
		glog.Infof("dcca: %s -> %s", r.state, s)
	}
	r.state = s
	if r.OnState != nil {
		r.OnState(s)
	}
}

// Snapshot retrieves the status from the running registrar.
func (r *Registrar) Snapshot(ctx context.Context) (Status, error) {
	ch := make(chan Status, 1)
	select {
	case r.statusCh <- ch:
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
	select {
	case s := <-ch:
		return s, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

func (r *Registrar) status() Status {
	return Status{
		State:      r.state,
		Session:    r.Session,
		Vendor:     r.info.Vendor,
		UID:        r.info.UID,
		Registered: r.registered,
		Candidates: r.cands.clone(),
	}
}

// sleep waits for d, answering status requests meanwhile.
func (r *Registrar) sleep(ctx context.Context, d time.Duration) error {
	_, err := r.await(ctx, nil, d)
	return err
}

func (r *Registrar) await(ctx context.Context, fut *track.Future, d time.Duration) (track.DecoderReply, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	var resultCh <-chan track.DecoderReply
	if fut != nil {
		resultCh = fut.ResultChan()
	}
	for {
		select {
		case reply := <-resultCh:
			return reply, nil
		case ch := <-r.statusCh:
			ch <- r.status()
		case <-timer.C:
			return track.DecoderReply{Msg: track.MsgTimeout}, nil
		case <-ctx.Done():
			return track.DecoderReply{Msg: track.MsgTimeout}, ctx.Err()
		}
	}
}

// transact sends one packet and waits for its reply.
func (r *Registrar) transact(ctx context.Context, p *track.Packet) (track.DecoderReply, error) {
	fut := track.NewFuture()
	p.WithReply(fut.Callback(), nil)
	if err := r.Queue.Enqueue(p); err != nil {
		glog.Warningf("dcca: %s: %v", p.Cmd, err)
		return track.DecoderReply{Msg: track.MsgTimeout}, ctx.Err()
	}
	reply, err := r.await(ctx, fut, r.Config.ReplyTimeout)
	if glog.V(4) {
		glog.Infof("dcca: %s -> %s", p.Cmd, reply)
	}
	return reply, err
}

// retry spends one retry of the current step, giving up on the decoder
// when the budget is exhausted.
func (r *Registrar) retry(s State, reply track.DecoderReply) State {
	r.info.retries--
	if r.info.retries > 0 {
		return s
	}
	n := r.cands.failed(r.info.Vendor, r.info.UID)
	glog.Warningf("dcca: %03x/%08x %s failed with %s (%d failures)", r.info.Vendor, r.info.UID, s, reply.Msg, n)
	return StateLogonIdle
}

func (r *Registrar) startup(ctx context.Context) (State, error) {
	r.cands.load(r.DB)
	r.info = sessionInfo{}
	glog.Infof("dcca: started with %d candidates, session %d", len(r.cands), r.Session)
	return StateLogonIdle, nil
}

func (r *Registrar) logonIdle(ctx context.Context) (State, error) {
	if !r.lastLogon.IsZero() {
		if wait := r.Config.LogonInterval - time.Since(r.lastLogon); wait > 0 {
			if err := r.sleep(ctx, wait); err != nil {
				return StateLogonIdle, err
			}
		}
	}
	r.lastLogon = time.Now()
	reply, err := r.transact(ctx, r.Factory.DCCALogonEnable(track.LogonNow, r.CID, r.Session))
	if err != nil {
		return StateLogonIdle, err
	}
	switch reply.Msg {
	case track.MsgDCCAUnique:
		return r.unique(reply), nil
	case track.MsgCollision:
		r.info.retries = r.Config.IsolationRetries
		return StateIsolation, nil
	}
	return StateLogonIdle, nil
}

func (r *Registrar) unique(reply track.DecoderReply) State {
	d := reply.Data
	vendor := uint16(d[0]&0x0f)<<8 | uint16(d[1])
	uid := uint32(d[2])<<24 | uint32(d[3])<<16 | uint32(d[4])<<8 | uint32(d[5])
	if r.cands.blocked(vendor, uid, r.Config.CandidateLimit) {
		glog.Warningf("dcca: ignoring %03x/%08x after repeated failures", vendor, uid)
		return StateLogonIdle
	}
	r.info = sessionInfo{Vendor: vendor, UID: uid, retries: r.Config.ShortInfoRetries}
	glog.V(2).Infof("dcca: found %03x/%08x", vendor, uid)
	return StateShortInfo
}

func (r *Registrar) isolation(ctx context.Context) (State, error) {
	reply, err := r.transact(ctx, r.Factory.DCCALogonEnable(track.LogonAll, r.CID, r.Session))
	if err != nil {
		return StateIsolation, err
	}
	if reply.Msg == track.MsgDCCAUnique {
		return r.unique(reply), nil
	}
	if r.info.retries--; r.info.retries <= 0 {
		glog.V(2).Info("dcca: isolation budget exhausted")
		return StateLogonIdle, nil
	}
	return StateIsolation, nil
}

func (r *Registrar) shortInfo(ctx context.Context) (State, error) {
	reply, err := r.transact(ctx, r.Factory.DCCASelectShortInfo(r.info.Vendor, r.info.UID))
	if err != nil {
		return StateShortInfo, err
	}
	d := reply.Data
	if reply.Msg != track.MsgDCCAShortInfo || reply.Len < 6 || CRC8(0, d[:6]...) != 0 {
		return r.retry(StateShortInfo, reply), nil
	}
	r.info.Requested = uint16(d[0]&0x3f)<<8 | uint16(d[1])
	r.info.MaxFunc, r.info.Caps = d[2], d[3]
	r.resolve()
	r.info.retries = r.Config.AssignRetries
	return StateAssign, nil
}

// resolve finds or allocates the DB record for the requested address.
func (r *Registrar) resolve() {
	info := &r.info
	info.park, info.isNew = false, false
	if rec, ok := r.DB.FindByUID(info.Vendor, info.UID); ok {
		info.addr = Address{Kind: rec.Kind, Addr: rec.Addr, Short: rec.Addr <= track.MaxShortAddress}
		info.key, info.coded = rec.Key(), info.addr.Coded()
		return
	}
	addr, err := DecodeAddress(info.Requested)
	if err != nil {
		glog.Warningf("dcca: %03x/%08x requests %04x: %v, parking", info.Vendor, info.UID, info.Requested, err)
		info.park, info.coded = true, ParkAddress
		return
	}
	if _, taken := r.DB.Get(locodb.Key{Kind: addr.Kind, Addr: addr.Addr}); taken {
		free, err := r.DB.FreeAddress(addr.Kind, addr.Addr)
		if err != nil {
			glog.Warningf("dcca: no address for %03x/%08x: %v, parking", info.Vendor, info.UID, err)
			info.park, info.coded = true, ParkAddress
			return
		}
		addr.Addr = free
	}
	info.addr, info.isNew = addr, true
	info.key = locodb.Key{Kind: addr.Kind, Addr: addr.Addr}
	info.coded = addr.Coded()
}

func (r *Registrar) assign(ctx context.Context) (State, error) {
	info := &r.info
	reply, err := r.transact(ctx, r.Factory.DCCALogonAssign(info.Vendor, info.UID, info.coded))
	if err != nil {
		return StateAssign, err
	}
	if reply.Msg != track.MsgDCCAState || reply.Len < 4 {
		return r.retry(StateAssign, reply), nil
	}
	if info.park {
		glog.Infof("dcca: %03x/%08x parked", info.Vendor, info.UID)
		return StateLogonIdle, nil
	}
	info.ChangeFlags = reply.Data[1]
	info.ChangeCount = uint16(reply.Data[2]&0x0f)<<8 | uint16(reply.Data[3])
	if err := r.save(); err != nil {
		glog.Errorf("dcca: save %s: %v", info.key, err)
		return r.retry(StateAssign, reply), nil
	}
	r.registered++
	glog.Infof("dcca: %03x/%08x assigned %s (flags %02x)", info.Vendor, info.UID, info.key, info.ChangeFlags)
	if r.OnRegistered != nil {
		r.OnRegistered(Registration{Vendor: info.Vendor, UID: info.UID, Key: info.key, New: info.isNew})
	}
	switch {
	case info.isNew || info.ChangeFlags&spaceMask != 0:
		return StateDataSpace, nil
	case info.ChangeFlags != 0:
		info.retries = r.Config.ClearRetries
		return StateClearFlags, nil
	}
	r.cands.succeeded(info.Vendor, info.UID)
	return StateLogonIdle, nil
}

func (r *Registrar) save() error {
	info := &r.info
	if !info.isNew {
		return r.DB.Update(info.key, func(rec *locodb.Record) {
			rec.Config, rec.MaxFunc = locodb.ConfigDCCA, int(info.MaxFunc)
		})
	}
	rec := locodb.Record{
		Kind:     info.key.Kind,
		Addr:     info.key.Addr,
		Format:   track.FormatDCC126,
		Config:   locodb.ConfigDCCA,
		Name:     fmt.Sprintf("DCC-A %08x", info.UID),
		VendorID: info.Vendor,
		UID:      info.UID,
		MaxFunc:  int(info.MaxFunc),
	}
	if err := r.DB.Put(rec); err != nil {
		return err
	}
	r.cands.get(info.Vendor, info.UID)
	return nil
}

func (r *Registrar) dataSpace(ctx context.Context) (State, error) {
	info := &r.info
	changed := info.ChangeFlags
	if info.isNew {
		changed |= spaceMask
	}
	info.blockFailed = false
	for _, bit := range spaceWalk {
		if changed&bit == 0 {
			continue
		}
		space := spaceOf(bit)
		data, err := r.readSpace(ctx, space)
		if err != nil {
			if ctx.Err() != nil {
				return StateDataSpace, ctx.Err()
			}
			info.blockFailed = true
			continue
		}
		parse := interpreters[space]
		if err := r.DB.Update(info.key, func(rec *locodb.Record) { parse(rec, data) }); err != nil {
			glog.Errorf("dcca: update %s space %d: %v", info.key, space, err)
		}
	}
	if info.blockFailed {
		r.cands.failed(info.Vendor, info.UID)
		return StateLogonIdle, nil
	}
	if info.ChangeFlags != 0 {
		info.retries = r.Config.ClearRetries
		return StateClearFlags, nil
	}
	r.cands.succeeded(info.Vendor, info.UID)
	return StateLogonIdle, nil
}

func (r *Registrar) clearFlags(ctx context.Context) (State, error) {
	reply, err := r.transact(ctx, r.Factory.DCCASetDecoderState(r.info.Vendor, r.info.UID, track.DecoderStateClearFlags))
	if err != nil {
		return StateClearFlags, err
	}
	if reply.Msg != track.MsgAck {
		return r.retry(StateClearFlags, reply), nil
	}
	r.info.ChangeFlags = 0
	r.cands.succeeded(r.info.Vendor, r.info.UID)
	return StateLogonIdle, nil
}
