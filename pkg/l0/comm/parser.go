package comm

// Parser parses bytes received.
type Parser struct {
	state   parseState
	frame   *Frame
	recvLen int
	crc     byte
}

// TimerAction defines what to do with the inter-byte timer.
type TimerAction int

const (
	// TimerNoChange indicates keep the timer as-is.
	TimerNoChange TimerAction = iota
	// TimerRestart to restart the timer.
	TimerRestart
	// TimerStop to stop/cancel the timer.
	TimerStop
)

// ParseResult indicates the result after one parsing step.
type ParseResult struct {
	// Receiving is set while a frame is partially received.
	Receiving bool
	// Dropped is set when a partial frame was discarded.
	Dropped bool
	Frame   *Frame
}

// WhatAboutTimer decides what to do with timer.
func (r ParseResult) WhatAboutTimer() TimerAction {
	if r.Receiving {
		return TimerRestart
	}
	return TimerStop
}

type parseState int

const (
	stateSOF  parseState = iota // hunting for SOF
	stateCode                   // waiting for frame code
	stateLen                    // waiting for data length
	stateData                   // waiting for data
	stateCRC                    // waiting for CRC
)

// Reset resets the internal state of parser.
func (p *Parser) Reset() {
	p.state, p.frame = stateSOF, nil
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	switch p.state {
	case stateSOF:
		if b == frameSOF {
			p.state = stateCode
		}
	case stateCode:
		p.frame = &Frame{Code: b}
		p.crc = CRC8(0, b)
		p.state = stateLen
	case stateLen:
		p.crc = CRC8(p.crc, b)
		p.recvLen = 0
		if b == 0 {
			p.state = stateCRC
			break
		}
		p.frame.Data = make([]byte, b)
		p.state = stateData
	case stateData:
		p.crc = CRC8(p.crc, b)
		p.frame.Data[p.recvLen] = b
		if p.recvLen++; p.recvLen >= len(p.frame.Data) {
			p.state = stateCRC
		}
	case stateCRC:
		if b == p.crc {
			pr.Frame = p.frame
		} else {
			pr.Dropped = true
		}
		p.Reset()
	}
	pr.Receiving = p.state != stateSOF
	return
}

// Timeout notifies the parser the inter-byte timer expired. A partial frame
// is discarded.
func (p *Parser) Timeout() (pr ParseResult) {
	if p.state != stateSOF {
		pr.Dropped = true
		p.Reset()
	}
	return
}
