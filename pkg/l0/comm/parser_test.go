package comm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type parserTestSequence struct {
	in     []byte
	expect ParseResult
	final  ParseResult
}

type parserTestSequenceBuilder struct {
	seq []parserTestSequence
}

func parserTestSequences() *parserTestSequenceBuilder {
	return &parserTestSequenceBuilder{}
}

func (b *parserTestSequenceBuilder) on(receiving bool, in ...byte) *parserTestSequenceBuilder {
	s := parserTestSequence{in: in, expect: ParseResult{Receiving: receiving}}
	s.final = s.expect
	b.seq = append(b.seq, s)
	return b
}

func (b *parserTestSequenceBuilder) onIdle(in ...byte) *parserTestSequenceBuilder {
	return b.on(false, in...)
}

func (b *parserTestSequenceBuilder) onReceiving(in ...byte) *parserTestSequenceBuilder {
	return b.on(true, in...)
}

// onFrame feeds an encoded frame.
func (b *parserTestSequenceBuilder) onFrame(code byte, data ...byte) *parserTestSequenceBuilder {
	f := &Frame{Code: code, Data: data}
	b.onReceiving(f.Bytes()...)
	if len(data) == 0 {
		data = nil
	}
	return b.final(ParseResult{Frame: &Frame{Code: code, Data: data}})
}

func (b *parserTestSequenceBuilder) timeout() *parserTestSequenceBuilder {
	b.seq = append(b.seq, parserTestSequence{})
	return b
}

func (b *parserTestSequenceBuilder) final(pr ParseResult) *parserTestSequenceBuilder {
	b.seq[len(b.seq)-1].final = pr
	return b
}

func (b *parserTestSequenceBuilder) dropped() *parserTestSequenceBuilder {
	return b.final(ParseResult{Dropped: true})
}

func (b *parserTestSequenceBuilder) build() []parserTestSequence {
	return b.seq
}

func TestParser(t *testing.T) {
	testCases := []struct {
		name string
		seq  []parserTestSequence
	}{
		{
			name: "receive frames",
			seq: parserTestSequences().
				onFrame(CodeReady).
				onFrame(CodeReady, 1).
				onFrame(CodeWindow, 2, 0xa5, 0, 0xa6, 1).
				build(),
		},
		{
			name: "skip noise before SOF",
			seq: parserTestSequences().
				onIdle(1, 2, 3, 0x81, 0xff).
				onFrame(CodeBusAck, 1).
				build(),
		},
		{
			name: "bad crc",
			seq: parserTestSequences().
				onReceiving(0x7e, 0x81, 1, 1, 0x73).dropped().
				onFrame(CodeReady, 1).
				build(),
		},
		{
			name: "timeout drops partial frame",
			seq: parserTestSequences().
				onReceiving(0x7e, 0x83, 4, 0).
				timeout().dropped().
				onFrame(CodeCurrent, 0, 20).
				build(),
		},
		{
			name: "timeout when idle",
			seq: parserTestSequences().
				timeout().
				onFrame(CodeReady).
				build(),
		},
		{
			name: "SOF inside data",
			seq: parserTestSequences().
				onFrame(CodeWindow, 2, 0x7e, 0).
				build(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var parser Parser
			for n, s := range tc.seq {
				var pr ParseResult
				if l := len(s.in); l == 0 {
					pr = parser.Timeout()
				} else {
					for i, b := range s.in {
						pr = parser.Parse(b)
						if i+1 < l {
							require.Equalf(t, s.expect, pr, "seq[%d][%d] expect mismatch", n, i)
						}
					}
				}
				require.Equalf(t, s.final, pr, "seq[%d] final mismatch", n)
			}
		})
	}
}

func TestParseResult(t *testing.T) {
	require.Equal(t, TimerRestart, ParseResult{Receiving: true}.WhatAboutTimer())
	require.Equal(t, TimerStop, ParseResult{}.WhatAboutTimer())
	require.Equal(t, TimerStop, ParseResult{Frame: &Frame{}}.WhatAboutTimer())
}
