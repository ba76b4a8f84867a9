package comm

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate is the baud rate of the generator link.
const DefaultBaudRate = 115200

// OpenSerial opens the serial port of the generator as a Link. Reads time
// out after the inter-byte timeout so the link runs without a reader
// goroutine.
func OpenSerial(port string, baud int) (*Link, serial.Port, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", port, err)
	}
	if err := p.SetReadTimeout(DefaultInterByteTimeout); err != nil {
		p.Close()
		return nil, nil, fmt.Errorf("set timeout on %s: %w", port, err)
	}
	l := NewLink(p)
	l.ReadTimeout = true
	return l, p, nil
}
