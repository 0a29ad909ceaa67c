package ipv4

import "fmt"

const (
	// sizeHeader is the length in bytes of a fixed IPv4 header, excluding options.
	sizeHeader = 20
	// minHeaderWords is the smallest valid IHL value, in 32-bit words.
	minHeaderWords = 5
	// version is the only IP version this package recognizes.
	version = 4
	// DefaultMTU is the maximum transmission unit [NewInterface] assumes
	// when it is passed a zero MTU. [NewFragmenter] applies no default.
	DefaultMTU = 1500
)

// ToS represents the Traffic Class (a.k.a Type of Service) field. It is
// 8 bits long: 6 MSB are Differentiated Services; 2 LSB are Explicit
// Congestion Notification.
type ToS uint8

// DS returns the Differentiated Services Code Point.
func (tos ToS) DS() uint8 { return uint8(tos) >> 2 }

// ECN returns the Explicit Congestion Notification bits.
func (tos ToS) ECN() uint8 { return uint8(tos) & 0b11 }

// Flags holds the packed flags+fragment-offset field of an IPv4 header.
// It is 16 bits long: the top 3 bits are Reserved/DontFragment/MoreFragments,
// the low 13 bits are the fragment offset in units of 8 octets.
type Flags uint16

// DontFragment reports whether the datagram must not be fragmented.
// If a router needs to fragment a packet with DontFragment set, it drops
// the packet instead of fragmenting it.
func (f Flags) DontFragment() bool { return f&0x4000 != 0 }

// MoreFragments is cleared on the last fragment of a fragmented datagram
// (and on unfragmented datagrams). All earlier fragments have it set.
func (f Flags) MoreFragments() bool { return f&0x2000 != 0 }

// FragmentOffset is the offset of this fragment's payload relative to the
// start of the original datagram's payload, in units of 8 octets.
func (f Flags) FragmentOffset() uint16 { return uint16(f) & 0x1fff }

// withDontFragment returns f with the DontFragment bit set to v, leaving
// MoreFragments and FragmentOffset untouched.
func (f Flags) withDontFragment(v bool) Flags {
	if v {
		return f | 0x4000
	}
	return f &^ 0x4000
}

// withMoreFragments returns f with the MoreFragments bit set to v, leaving
// DontFragment and FragmentOffset untouched.
func (f Flags) withMoreFragments(v bool) Flags {
	if v {
		return f | 0x2000
	}
	return f &^ 0x2000
}

// withFragmentOffset returns f with the fragment offset set to off & 0x1fff,
// leaving DontFragment and MoreFragments untouched.
func (f Flags) withFragmentOffset(off uint16) Flags {
	return f&0xe000 | Flags(off&0x1fff)
}

// Protocol identifies the protocol carried in an IPv4 datagram's payload.
// Unlike a closed enum, Protocol is a plain byte: an unrecognized value
// round-trips through it without loss, [Protocol.String] just falls back
// to a numeric rendering for it.
type Protocol uint8

// Protocol numbers this module has a concrete use for. Any other value
// is carried verbatim; see [Protocol.String].
const (
	ProtocolICMP Protocol = 1
	ProtocolTCP  Protocol = 6
	ProtocolUDP  Protocol = 17
)

func (p Protocol) String() string {
	switch p {
	case ProtocolICMP:
		return "ICMP"
	case ProtocolTCP:
		return "TCP"
	case ProtocolUDP:
		return "UDP"
	default:
		return fmt.Sprintf("Protocol(%d)", uint8(p))
	}
}
