// Package checksum computes the internet checksum defined in RFC 1071,
// used by IPv4, ICMPv4 and TCP to detect corrupted headers and payloads.
package checksum

import "encoding/binary"

// Accumulator is a running RFC 1071 checksum. Bytes can be added
// incrementally via Write/AddUint16/AddUint32, which is useful when a
// header and its pseudo-header live in different buffers, as is the case
// for TCP's checksum over the IPv4 pseudo-header plus the TCP segment.
// The zero value is ready to use.
type Accumulator struct {
	sum uint64
}

// Write adds the bytes in buf to the running checksum. If buf has an odd
// length the trailing byte is treated as the high byte of a final 16-bit
// word, per RFC 1071.
func (a *Accumulator) Write(buf []byte) {
	n := len(buf) - len(buf)%2
	for i := 0; i < n; i += 2 {
		a.sum += uint64(binary.BigEndian.Uint16(buf[i:]))
	}
	if len(buf)%2 != 0 {
		a.sum += uint64(buf[len(buf)-1]) << 8
	}
}

// AddUint16 adds a single big-endian 16 bit value to the running checksum.
func (a *Accumulator) AddUint16(v uint16) { a.sum += uint64(v) }

// AddUint32 adds a big-endian 32 bit value to the running checksum as two
// 16 bit words.
func (a *Accumulator) AddUint32(v uint32) {
	a.AddUint16(uint16(v >> 16))
	a.AddUint16(uint16(v))
}

// Sum16 folds the accumulated sum into its ones'-complement 16 bit result.
func (a *Accumulator) Sum16() uint16 {
	sum := a.sum
	for sum > 0xffff {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}

// Reset zeros the accumulator so it can be reused.
func (a *Accumulator) Reset() { a.sum = 0 }

// Checksum computes the RFC 1071 internet checksum of data in one shot.
// It is equivalent to writing data into a fresh Accumulator and calling
// Sum16, provided as a convenience for the common case of checksumming a
// single contiguous buffer (a header, or a header plus payload).
func Checksum(data []byte) uint16 {
	var a Accumulator
	a.Write(data)
	return a.Sum16()
}
