package dcca

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/track.go/pkg/track"
)

const (
	blockContinue = 0x80
	blockSizeMask = 0x1f
	chunkLen      = 6
	maxBlocks     = 64
	maxBlockRaw   = 1 + blockSizeMask + 1
)

type blockState int

const (
	blockRequest blockState = iota
	blockStart
	blockCont
	blockOK
	blockError
)

var blockStateNames = [...]string{
	blockRequest: "BLOCK_REQUEST",
	blockStart:   "BLOCK_START",
	blockCont:    "BLOCK_CONT",
	blockOK:      "BLOCK_OK",
	blockError:   "BLOCK_ERROR",
}

func (s blockState) String() string { return blockStateNames[s] }

// transfer is the scratch state of one multi-block data space read.
type transfer struct {
	space   uint8
	blockNo byte
	seed    byte
	header  byte
	crc     byte
	raw     [maxBlockRaw]byte
	cursor  int
	data    []byte
}

func (x *transfer) reset(space uint8) {
	*x = transfer{space: space, seed: space, data: x.data[:0]}
}

// need returns the raw length of the current block, header and CRC
// included.
func (x *transfer) need() int {
	return int(x.header&blockSizeMask) + 2
}

// add appends a received window chunk and reports whether the block is
// complete.
func (x *transfer) add(chunk []byte) bool {
	if x.cursor == 0 {
		x.header = chunk[0]
		x.crc = CRC8(x.seed, x.blockNo)
	}
	for _, b := range chunk {
		if x.cursor >= x.need() {
			break
		}
		x.raw[x.cursor] = b
		x.crc = CRC8(x.crc, b)
		x.cursor++
	}
	return x.cursor >= x.need()
}

// commit validates the completed block and moves its payload into data.
func (x *transfer) commit() error {
	if x.crc != 0 {
		return ErrChecksum
	}
	n := x.need()
	x.data = append(x.data, x.raw[1:n-1]...)
	x.seed = x.raw[n-1]
	x.blockNo++
	x.cursor = 0
	return nil
}

func (x *transfer) more() bool {
	return x.header&blockContinue != 0
}

// readSpace reads a data space, retrying the whole space on any failure.
func (r *Registrar) readSpace(ctx context.Context, space uint8) ([]byte, error) {
	var err error
	for try := 0; try < r.Config.BlockRetries; try++ {
		if err = r.transferSpace(ctx, space); err == nil {
			return append([]byte(nil), r.xfer.data...), nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		glog.Warningf("dcca: %08x space %d attempt %d: %v", r.info.UID, space, try+1, err)
	}
	return nil, err
}

func (r *Registrar) transferSpace(ctx context.Context, space uint8) error {
	x := &r.xfer
	x.reset(space)
	state := blockRequest
	for {
		if glog.V(4) {
			glog.Infof("dcca: space %d block %d %s", space, x.blockNo, state)
		}
		switch state {
		case blockRequest:
			reply, err := r.transact(ctx, r.Factory.DCCASelectBlock(r.info.Vendor, r.info.UID, space))
			if err != nil {
				return err
			}
			if reply.Msg != track.MsgAck {
				return &ReplyError{Step: state.String(), Msg: reply.Msg.String()}
			}
			state = blockStart
		case blockStart, blockCont:
			p := r.Factory.DCCAGetDataStart()
			if state == blockCont {
				p = r.Factory.DCCAGetDataCont()
			}
			reply, err := r.transact(ctx, p)
			if err != nil {
				return err
			}
			if reply.Msg != track.MsgDCCABlock || reply.Len < chunkLen {
				return &ReplyError{Step: state.String(), Msg: reply.Msg.String()}
			}
			if x.add(reply.Data[:chunkLen]) {
				state = blockOK
			} else {
				state = blockCont
			}
		case blockOK:
			if err := x.commit(); err != nil {
				state = blockError
				continue
			}
			if !x.more() {
				return nil
			}
			if int(x.blockNo) >= maxBlocks {
				return ErrBlockFormat
			}
			state = blockStart
		case blockError:
			return ErrChecksum
		}
	}
}
