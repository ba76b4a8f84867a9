package track

import (
	"fmt"
	"strings"
)

// Format is the electrical/protocol encoding of a decoder.
type Format int

// Signal formats.
const (
	FormatUnknown Format = iota
	FormatMM1            // Motorola I, 14 speed steps
	FormatMM2            // Motorola II, 14 speed steps
	FormatMM2_27A        // Motorola II, 27 steps by split half-steps
	FormatMM2_27B        // Motorola II, 27 steps by alternating addresses
	FormatDCC14
	FormatDCC28
	FormatDCC126
	FormatDCCSDF // 126 steps, speed/direction/functions combined
	FormatM3
)

var formatNames = map[Format]string{
	FormatUnknown: "unknown",
	FormatMM1:     "MM1",
	FormatMM2:     "MM2",
	FormatMM2_27A: "MM2-27A",
	FormatMM2_27B: "MM2-27B",
	FormatDCC14:   "DCC14",
	FormatDCC28:   "DCC28",
	FormatDCC126:  "DCC126",
	FormatDCCSDF:  "DCC-SDF",
	FormatM3:      "m3",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return "invalid"
}

// ParseFormat looks up a format by name, ignoring case.
func ParseFormat(name string) (Format, error) {
	for f, s := range formatNames {
		if f != FormatUnknown && strings.EqualFold(s, name) {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unknown format %q", name)
}

// IsMM indicates a Motorola format.
func (f Format) IsMM() bool {
	return f >= FormatMM1 && f <= FormatMM2_27B
}

// IsDCC indicates a DCC format.
func (f Format) IsDCC() bool {
	return f >= FormatDCC14 && f <= FormatDCCSDF
}

// IsM3 indicates the m3 format.
func (f Format) IsM3() bool {
	return f == FormatM3
}

// SpeedSteps returns the number of speed steps without stop.
func (f Format) SpeedSteps() int {
	switch f {
	case FormatMM1, FormatMM2, FormatDCC14:
		return 14
	case FormatMM2_27A, FormatMM2_27B:
		return 27
	case FormatDCC28:
		return 28
	case FormatDCC126, FormatDCCSDF, FormatM3:
		return 126
	}
	return 0
}

// MaxAddress returns the highest mobile decoder address of the format.
func (f Format) MaxAddress() int {
	switch {
	case f.IsMM():
		return MaxMMAddress
	case f.IsDCC():
		return MaxDCCAddress
	case f.IsM3():
		return MaxM3Address
	}
	return 0
}

// Address limits.
const (
	MaxMMAddress     = 255
	MaxDCCAddress    = 10239
	MaxM3Address     = 16383
	MaxMMAccessory   = 320
	MaxDCCAccessory  = 2048
	MaxShortAddress  = 127
	DCCABroadcast    = 254 // address byte of DCC-A packets
	AccessoryBCAddr  = 2047
	MaxCV            = 1024
	MaxXPOMCV        = 1 << 24
	MaxM3CV          = 1023
	MaxM3Sub         = 63
	MaxBinState      = 32767
	MaxFunction      = 68
	MaxM3Function    = 127
	maxExtAccAspect  = 255
	maxTestBytes     = 16
	maxXPOMWriteData = 4
)

// DecoderType classifies the decoder that answered.
type DecoderType int

// Decoder types.
const (
	DecoderNone DecoderType = iota
	DecoderMM
	DecoderDCC
	DecoderM3
	DecoderAccessory
	DecoderExtAccessory
)

func (d DecoderType) String() string {
	switch d {
	case DecoderMM:
		return "MM"
	case DecoderDCC:
		return "DCC"
	case DecoderM3:
		return "m3"
	case DecoderAccessory:
		return "accessory"
	case DecoderExtAccessory:
		return "ext-accessory"
	}
	return "none"
}
