// Package track defines the data model shared by the decoder command/reply
// core: packets waiting in the signal queue, the bitbuffer a packet becomes
// while the signal generator transmits it, and the decoder reply a RailCom
// or m3 window resolves into.
//
// A packet is created by a Factory, owned by the queue until the signal
// generator claims it and converts it into a Bitbuffer. A Bitbuffer carries
// at most one reply callback which is invoked at most once.
package track
