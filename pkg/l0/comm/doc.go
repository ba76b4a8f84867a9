// Package comm provides the link to the signal generator.
package comm

// The signal generator is a microcontroller producing the track signal.
// It asks the host for the next packet whenever its encoder runs empty,
// reports the RailCom cutout as phase markers with the bytes received in
// each window and streams programming track current samples.
//
// Frames are length delimited and protected by a CRC-8:
//
//	SOF(0x7e) code len data... crc8
//
// The CRC covers code, len and data. A frame failing the check is dropped
// and the parser hunts for the next SOF. Codes with bit 7 set travel from
// the generator to the host.
//
// Producer: signal generator firmware
// Consumer: command station
