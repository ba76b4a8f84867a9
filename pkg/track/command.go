package track

import "fmt"

// Command is the kind of a queued packet.
type Command int

// Generic loco commands, valid for every mobile format.
const (
	CmdIdle Command = iota
	CmdReset
	CmdEmergencyStop
	CmdSpeed
	CmdFuncF0F4
	CmdFuncF5F8
	CmdFuncF9F12
	CmdFuncF13F20
	CmdFuncF21F28
	CmdFuncF29F36
	CmdFuncF37F44
	CmdFuncF45F52
	CmdFuncF53F60
	CmdFuncF61F68

	// DCC only loco commands.
	CmdBinStateShort
	CmdBinStateLong
	CmdSDF

	// MM only.
	CmdMMFunc1
	CmdMMFunc2
	CmdMMFunc3
	CmdMMFunc4
	CmdMMMagnet
	CmdMMSpeedCorrection // second half of an MM2-27A split speed step

	// Accessory decoders.
	CmdAccBasic
	CmdAccExtended
	CmdAccNOP
	CmdAccExtNOP
	CmdAccPOMRead
	CmdAccPOMWrite
	CmdAccPOMWriteBit

	// DCC programming on the main.
	CmdPOMReadByte
	CmdPOMWriteByte
	CmdPOMWriteBit
	CmdXPOMRead
	CmdXPOMWriteByte
	CmdXPOMWriteBit

	// DCC direct mode on the programming track.
	CmdDirectVerifyByte
	CmdDirectWriteByte
	CmdDirectVerifyBit
	CmdDirectWriteBit

	// DCC-A primitives.
	CmdDCCALogonEnable
	CmdDCCASelectShortInfo
	CmdDCCASelectBlock
	CmdDCCAGetDataStart
	CmdDCCAGetDataCont
	CmdDCCALogonAssign
	CmdDCCASetDecoderState

	// m3 only.
	CmdM3Beacon
	CmdM3Search
	CmdM3NewAddr
	CmdM3Ping
	CmdM3ReadCV
	CmdM3WriteCV
	CmdM3SingleFunc

	// Raw bytes for decoder tests.
	CmdTestBytes

	numCommands
)

type family int

const (
	famGeneric family = iota
	famDCC
	famMM
	famAccessory
	famProgMain
	famProgTrack
	famDCCA
	famM3
	famRaw
)

type commandInfo struct {
	name     string
	family   family
	readBack ReadBack
}

var commands = [numCommands]commandInfo{
	CmdIdle:                {"idle", famGeneric, ReadBackNone},
	CmdReset:               {"reset", famGeneric, ReadBackNone},
	CmdEmergencyStop:       {"estop", famGeneric, ReadBackStandard},
	CmdSpeed:               {"speed", famGeneric, ReadBackStandard},
	CmdFuncF0F4:            {"f0-f4", famGeneric, ReadBackStandard},
	CmdFuncF5F8:            {"f5-f8", famGeneric, ReadBackStandard},
	CmdFuncF9F12:           {"f9-f12", famGeneric, ReadBackStandard},
	CmdFuncF13F20:          {"f13-f20", famGeneric, ReadBackStandard},
	CmdFuncF21F28:          {"f21-f28", famGeneric, ReadBackStandard},
	CmdFuncF29F36:          {"f29-f36", famGeneric, ReadBackStandard},
	CmdFuncF37F44:          {"f37-f44", famGeneric, ReadBackStandard},
	CmdFuncF45F52:          {"f45-f52", famGeneric, ReadBackStandard},
	CmdFuncF53F60:          {"f53-f60", famGeneric, ReadBackStandard},
	CmdFuncF61F68:          {"f61-f68", famGeneric, ReadBackStandard},
	CmdBinStateShort:       {"binstate-short", famDCC, ReadBackStandard},
	CmdBinStateLong:        {"binstate-long", famDCC, ReadBackStandard},
	CmdSDF:                 {"sdf", famDCC, ReadBackStandard},
	CmdMMFunc1:             {"mm-f1", famMM, ReadBackNone},
	CmdMMFunc2:             {"mm-f2", famMM, ReadBackNone},
	CmdMMFunc3:             {"mm-f3", famMM, ReadBackNone},
	CmdMMFunc4:             {"mm-f4", famMM, ReadBackNone},
	CmdMMMagnet:            {"mm-magnet", famMM, ReadBackNone},
	CmdMMSpeedCorrection:   {"mm-27a-correction", famMM, ReadBackNone},
	CmdAccBasic:            {"acc", famAccessory, ReadBackStandard},
	CmdAccExtended:         {"acc-ext", famAccessory, ReadBackStandard},
	CmdAccNOP:              {"acc-nop", famAccessory, ReadBackStandard},
	CmdAccExtNOP:           {"acc-ext-nop", famAccessory, ReadBackStandard},
	CmdAccPOMRead:          {"acc-pom-read", famAccessory, ReadBackPOM},
	CmdAccPOMWrite:         {"acc-pom-write", famAccessory, ReadBackPOMWrite},
	CmdAccPOMWriteBit:      {"acc-pom-write-bit", famAccessory, ReadBackPOMWrite},
	CmdPOMReadByte:         {"pom-read", famProgMain, ReadBackPOM},
	CmdPOMWriteByte:        {"pom-write", famProgMain, ReadBackPOMWrite},
	CmdPOMWriteBit:         {"pom-write-bit", famProgMain, ReadBackPOMWrite},
	CmdXPOMRead:            {"xpom-read", famProgMain, ReadBackXPOM},
	CmdXPOMWriteByte:       {"xpom-write", famProgMain, ReadBackXPOM},
	CmdXPOMWriteBit:        {"xpom-write-bit", famProgMain, ReadBackXPOM},
	CmdDirectVerifyByte:    {"direct-verify-byte", famProgTrack, ReadBackNone},
	CmdDirectWriteByte:     {"direct-write-byte", famProgTrack, ReadBackNone},
	CmdDirectVerifyBit:     {"direct-verify-bit", famProgTrack, ReadBackNone},
	CmdDirectWriteBit:      {"direct-write-bit", famProgTrack, ReadBackNone},
	CmdDCCALogonEnable:     {"dcca-logon-enable", famDCCA, ReadBackDCCAID},
	CmdDCCASelectShortInfo: {"dcca-select-shortinfo", famDCCA, ReadBackDCCAShortInfo},
	CmdDCCASelectBlock:     {"dcca-select-block", famDCCA, ReadBackDCCAData},
	CmdDCCAGetDataStart:    {"dcca-get-data-start", famDCCA, ReadBackDCCAData},
	CmdDCCAGetDataCont:     {"dcca-get-data-cont", famDCCA, ReadBackDCCAData},
	CmdDCCALogonAssign:     {"dcca-logon-assign", famDCCA, ReadBackDCCAID},
	CmdDCCASetDecoderState: {"dcca-set-decoder-state", famDCCA, ReadBackDCCAAck},
	CmdM3Beacon:            {"m3-beacon", famM3, ReadBackNone},
	CmdM3Search:            {"m3-search", famM3, ReadBackM3Bin},
	CmdM3NewAddr:           {"m3-new-addr", famM3, ReadBackM3Bin},
	CmdM3Ping:              {"m3-ping", famM3, ReadBackM3Bin},
	CmdM3ReadCV:            {"m3-read", famM3, ReadBackM3Data},
	CmdM3WriteCV:           {"m3-write", famM3, ReadBackM3Bin},
	CmdM3SingleFunc:        {"m3-func", famM3, ReadBackNone},
	CmdTestBytes:           {"test-bytes", famRaw, ReadBackNone},
}

func (c Command) info() (commandInfo, bool) {
	if c < 0 || c >= numCommands {
		return commandInfo{}, false
	}
	return commands[c], true
}

func (c Command) String() string {
	if info, ok := c.info(); ok {
		return info.name
	}
	return fmt.Sprintf("cmd(%d)", int(c))
}

// IsValid checks the command is a known kind.
func (c Command) IsValid() bool {
	_, ok := c.info()
	return ok
}

// IsAccessory indicates an accessory decoder command.
func (c Command) IsAccessory() bool {
	info, _ := c.info()
	return info.family == famAccessory || c == CmdMMMagnet
}

// IsFunctionGroup indicates a function group command.
func (c Command) IsFunctionGroup() bool {
	return c >= CmdFuncF0F4 && c <= CmdFuncF61F68
}

// IsSpeed indicates a command carrying the loco speed.
func (c Command) IsSpeed() bool {
	return c == CmdSpeed || c == CmdSDF || c == CmdEmergencyStop
}

// IsDCCA indicates a DCC-A primitive.
func (c Command) IsDCCA() bool {
	info, _ := c.info()
	return info.family == famDCCA
}

// IsProgTrack indicates a direct-mode programming track command.
func (c Command) IsProgTrack() bool {
	info, _ := c.info()
	return info.family == famProgTrack
}

// ReadBack returns the reply kind a command expects in a given format.
// Motorola has no reply channel at all.
func (c Command) ReadBack(f Format) ReadBack {
	info, ok := c.info()
	if !ok {
		return ReadBackNone
	}
	switch info.family {
	case famGeneric:
		if f.IsM3() || f.IsMM() {
			return ReadBackNone
		}
	case famAccessory:
		if c == CmdMMMagnet || f.IsMM() {
			return ReadBackNone
		}
	}
	return info.readBack
}

// AllowedIn checks whether the command can be sent in the format.
func (c Command) AllowedIn(f Format) bool {
	info, ok := c.info()
	if !ok {
		return false
	}
	switch info.family {
	case famGeneric:
		if c == CmdIdle || c == CmdReset {
			return true
		}
		return f.IsMM() || f.IsDCC() || f.IsM3()
	case famDCC, famProgMain, famProgTrack, famDCCA:
		return f.IsDCC()
	case famMM:
		return f.IsMM()
	case famAccessory:
		return f.IsDCC() || (f.IsMM() && (c == CmdAccBasic || c == CmdAccNOP))
	case famM3:
		return f.IsM3()
	case famRaw:
		return f.IsDCC()
	}
	return false
}

// funcGroup describes the function range a function group command covers.
type funcGroup struct {
	cmd   Command
	first int
	last  int
}

var funcGroups = []funcGroup{
	{CmdFuncF0F4, 0, 4},
	{CmdFuncF5F8, 5, 8},
	{CmdFuncF9F12, 9, 12},
	{CmdFuncF13F20, 13, 20},
	{CmdFuncF21F28, 21, 28},
	{CmdFuncF29F36, 29, 36},
	{CmdFuncF37F44, 37, 44},
	{CmdFuncF45F52, 45, 52},
	{CmdFuncF53F60, 53, 60},
	{CmdFuncF61F68, 61, 68},
}

// FunctionRange returns the first and last function of a group command.
func (c Command) FunctionRange() (first, last int, ok bool) {
	for _, g := range funcGroups {
		if g.cmd == c {
			return g.first, g.last, true
		}
	}
	return 0, 0, false
}

// FunctionGroups lists the group commands needed to cover F0..maxFunc.
func FunctionGroups(f Format, maxFunc int) []Command {
	if f.IsMM() {
		// MM carries F0 with the speed and F1..F4 in their own packets.
		if f == FormatMM1 {
			return nil
		}
		return []Command{CmdMMFunc1, CmdMMFunc2, CmdMMFunc3, CmdMMFunc4}
	}
	var cmds []Command
	for _, g := range funcGroups {
		if g.first > maxFunc && g.first > 0 {
			break
		}
		cmds = append(cmds, g.cmd)
	}
	return cmds
}
