// Package ipv4 implements zero-copy views, construction and fragment
// handling for IPv4 datagrams, as defined in RFC 791.
package ipv4

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"github.com/qixiaoo/radish/checksum"
)

// NewFrame returns a new Frame over buf. An error is returned if buf is
// shorter than the minimum IPv4 header length; callers should still call
// [Frame.ValidateSize] before touching Payload/Options, since buf may be
// long enough for a bare header yet too short for the header+options the
// IHL field claims.
func NewFrame(buf []byte) (Frame, error) {
	if len(buf) < sizeHeader {
		return Frame{}, errShortBuffer
	}
	return Frame{buf: buf}, nil
}

// Frame is a zero-copy view over an IPv4 datagram's bytes. All accessors
// read directly from the underlying buffer; all setters write directly
// into it. See [RFC791].
//
// [RFC791]: https://datatracker.ietf.org/doc/html/rfc791
type Frame struct {
	buf []byte
}

// RawData returns the underlying slice the Frame was created over.
func (ifrm Frame) RawData() []byte { return ifrm.buf }

func (ifrm Frame) ihl() uint8     { return ifrm.buf[0] & 0xf }
func (ifrm Frame) version() uint8 { return ifrm.buf[0] >> 4 }

// HeaderLength returns the IPv4 header length in bytes, options included,
// as calculated from the IHL field.
func (ifrm Frame) HeaderLength() int { return int(ifrm.ihl()) * 4 }

// VersionAndIHL returns the version and IHL fields packed in the first
// header byte. Version is always 4 for a well-formed IPv4 datagram.
func (ifrm Frame) VersionAndIHL() (ver, ihl uint8) {
	v := ifrm.buf[0]
	return v >> 4, v & 0xf
}

// SetVersionAndIHL sets the version and IHL fields packed in the first
// header byte.
func (ifrm Frame) SetVersionAndIHL(ver, ihl uint8) {
	ifrm.buf[0] = ver<<4 | ihl&0xf
}

// ToS returns the Type of Service field.
func (ifrm Frame) ToS() ToS { return ToS(ifrm.buf[1]) }

// SetToS sets the ToS field. See [Frame.ToS].
func (ifrm Frame) SetToS(tos ToS) { ifrm.buf[1] = byte(tos) }

// TotalLength is the entire datagram size in bytes, header and payload.
func (ifrm Frame) TotalLength() uint16 { return binary.BigEndian.Uint16(ifrm.buf[2:4]) }

// SetTotalLength sets TotalLength. See [Frame.TotalLength].
func (ifrm Frame) SetTotalLength(tl uint16) { binary.BigEndian.PutUint16(ifrm.buf[2:4], tl) }

// ID is the identification field, used to group fragments of a datagram.
func (ifrm Frame) ID() uint16 { return binary.BigEndian.Uint16(ifrm.buf[4:6]) }

// SetID sets the identification field. See [Frame.ID].
func (ifrm Frame) SetID(id uint16) { binary.BigEndian.PutUint16(ifrm.buf[4:6], id) }

// Flags returns the packed flags+fragment-offset field.
func (ifrm Frame) Flags() Flags { return Flags(binary.BigEndian.Uint16(ifrm.buf[6:8])) }

// SetFlags overwrites the entire packed flags+fragment-offset field. See
// [Frame.SetDontFragment]/[Frame.SetMoreFragments]/[Frame.SetFragmentOffset]
// to update a single sub-field without disturbing the others.
func (ifrm Frame) SetFlags(flags Flags) { binary.BigEndian.PutUint16(ifrm.buf[6:8], uint16(flags)) }

// SetDontFragment sets the DontFragment bit, leaving MoreFragments and the
// fragment offset untouched.
func (ifrm Frame) SetDontFragment(v bool) { ifrm.SetFlags(ifrm.Flags().withDontFragment(v)) }

// SetMoreFragments sets the MoreFragments bit, leaving DontFragment and the
// fragment offset untouched.
func (ifrm Frame) SetMoreFragments(v bool) { ifrm.SetFlags(ifrm.Flags().withMoreFragments(v)) }

// SetFragmentOffset sets the fragment offset (in 8-octet units), leaving
// DontFragment and MoreFragments untouched.
func (ifrm Frame) SetFragmentOffset(off uint16) {
	ifrm.SetFlags(ifrm.Flags().withFragmentOffset(off))
}

// TTL is the time-to-live field: a hop count decremented by every router
// that forwards the datagram, which discards it on reaching zero.
func (ifrm Frame) TTL() uint8 { return ifrm.buf[8] }

// SetTTL sets the TTL field. See [Frame.TTL].
func (ifrm Frame) SetTTL(ttl uint8) { ifrm.buf[8] = ttl }

// Protocol identifies the payload's protocol, e.g. TCP or ICMP.
func (ifrm Frame) Protocol() Protocol { return Protocol(ifrm.buf[9]) }

// SetProtocol sets the protocol field. See [Frame.Protocol].
func (ifrm Frame) SetProtocol(proto Protocol) { ifrm.buf[9] = uint8(proto) }

// CRC returns the header checksum field.
func (ifrm Frame) CRC() uint16 { return binary.BigEndian.Uint16(ifrm.buf[10:12]) }

// SetCRC sets the header checksum field. See [Frame.CRC] and
// [Frame.CalculateHeaderCRC].
func (ifrm Frame) SetCRC(crc uint16) { binary.BigEndian.PutUint16(ifrm.buf[10:12], crc) }

// CalculateHeaderCRC computes the RFC 1071 checksum over the header bytes,
// treating the checksum field itself as zero.
func (ifrm Frame) CalculateHeaderCRC() uint16 {
	hl := ifrm.HeaderLength()
	var a checksum.Accumulator
	a.Write(ifrm.buf[0:10])
	a.Write(ifrm.buf[12:hl])
	return a.Sum16()
}

// SourceAddr returns a pointer to the source address bytes in the header.
func (ifrm Frame) SourceAddr() *[4]byte { return (*[4]byte)(ifrm.buf[12:16]) }

// DestinationAddr returns a pointer to the destination address bytes in
// the header.
func (ifrm Frame) DestinationAddr() *[4]byte { return (*[4]byte)(ifrm.buf[16:20]) }

// Payload returns the datagram's payload, bounded by TotalLength. Call
// [Frame.ValidateSize] first to avoid a panic on malformed input.
func (ifrm Frame) Payload() []byte {
	off := ifrm.HeaderLength()
	return ifrm.buf[off:ifrm.TotalLength()]
}

// Options returns the raw options bytes between the fixed header and the
// payload; it may be zero length. Call [Frame.ValidateSize] first to avoid
// a panic on malformed input. Use [Frame.OptionIterator] to decode them.
func (ifrm Frame) Options() []byte {
	off := ifrm.HeaderLength()
	return ifrm.buf[sizeHeader:off]
}

// ClearHeader zeros out the fixed (non-variable) header contents.
func (ifrm Frame) ClearHeader() {
	for i := range ifrm.buf[:sizeHeader] {
		ifrm.buf[i] = 0
	}
}

// ValidateSize checks the frame's length fields against the buffer's
// actual size, recording any inconsistency into v.
func (ifrm Frame) ValidateSize(v *Validator) {
	ihl := ifrm.ihl()
	tl := ifrm.TotalLength()
	if tl < sizeHeader {
		v.AddError(errBadTotalLength)
	}
	if int(tl) != len(ifrm.buf) {
		v.AddError(errShortData)
	}
	if ihl < minHeaderWords {
		v.AddError(errBadIHL)
	}
	if int(ihl)*4 > int(tl) {
		v.AddError(errBadIHL)
	}
}

// Validate checks the frame's size and version fields, recording any
// inconsistency into v. It does not verify the header checksum; callers
// that need that should compare [Frame.CRC] against
// [Frame.CalculateHeaderCRC] themselves, since doing so requires the
// checksum field to be treated as zero.
func (ifrm Frame) Validate(v *Validator) {
	ifrm.ValidateSize(v)
	if ifrm.version() != version {
		v.AddError(errBadVersion)
	}
}

func (ifrm Frame) String() string {
	src := netip.AddrFrom4(*ifrm.SourceAddr())
	dst := netip.AddrFrom4(*ifrm.DestinationAddr())
	hl := ifrm.HeaderLength()
	tl := int(ifrm.TotalLength())
	return fmt.Sprintf("IP %s SRC=%s DST=%s LEN=%d OPT=%d TTL=%d ID=%d ToS=%#x",
		ifrm.Protocol(), src, dst, tl, hl-sizeHeader, ifrm.TTL(), ifrm.ID(), ifrm.ToS())
}
