package dcca

import (
	"bytes"

	"github.com/golang/glog"

	"github.com/robotalks/track.go/pkg/locodb"
	"github.com/robotalks/track.go/pkg/track"
)

// Data spaces and their change flag bits.
const (
	SpaceCapabilities uint8 = 0
	SpaceInfo         uint8 = 1
	SpaceShortGUI     uint8 = 2
	SpaceIcons        uint8 = 4
	SpaceLongName     uint8 = 5
	SpaceProductInfo  uint8 = 6

	shortNameLen = 8
)

// spaceWalk is the order in which changed spaces are read. Bit 0x08 is
// not read.
var spaceWalk = []byte{0x01, 0x02, 0x04, 0x10, 0x20, 0x40}

// spaceMask covers all change flags backed by a readable space.
const spaceMask = 0x77

func spaceOf(bit byte) uint8 {
	var n uint8
	for bit > 1 {
		bit >>= 1
		n++
	}
	return n
}

type interpreter func(rec *locodb.Record, data []byte)

var interpreters = map[uint8]interpreter{
	SpaceCapabilities: parseCapabilities,
	SpaceInfo:         parseSpaceInfo,
	SpaceShortGUI:     parseShortGUI,
	SpaceIcons:        parseIcons,
	SpaceLongName:     parseLongName,
	SpaceProductInfo:  parseProductInfo,
}

func parseCapabilities(rec *locodb.Record, data []byte) {
	rec.Capabilities = append([]byte(nil), data...)
}

func parseSpaceInfo(rec *locodb.Record, data []byte) {
	for i := 0; i+1 < len(data); i += 2 {
		glog.V(2).Infof("dcca: %s space %d length %d", rec.Key(), data[i], data[i+1])
	}
}

func zstring(b []byte) string {
	if n := bytes.IndexByte(b, 0); n >= 0 {
		b = b[:n]
	}
	// ISO-8859-1 maps one to one onto the first 256 code points.
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

func parseShortGUI(rec *locodb.Record, data []byte) {
	n := shortNameLen
	if len(data) < n {
		n = len(data)
	}
	rec.ShortName = zstring(data[:n])
	if rec.Name == "" {
		rec.Name = rec.ShortName
	}
	for fn, icon := range data[n:] {
		if fn > track.MaxFunction {
			break
		}
		rec.Icons[fn].Icon = icon
	}
}

func parseIcons(rec *locodb.Record, data []byte) {
	for i := 0; i+3 <= len(data); i += 3 {
		fn := int(data[i])
		if fn > track.MaxFunction {
			continue
		}
		rec.Icons[fn] = locodb.FuncIcon{Icon: data[i+1], Timing: data[i+2]}
	}
}

func parseLongName(rec *locodb.Record, data []byte) {
	if name := zstring(data); name != "" {
		rec.Name = name
	}
}

func parseProductInfo(rec *locodb.Record, data []byte) {
	rec.ProductInfo = string(data)
}
