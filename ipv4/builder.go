package ipv4

import "github.com/qixiaoo/radish/checksum"

// Builder assembles a well-formed IPv4 datagram field by field. Each
// setter returns the receiver so calls can be chained; [Builder.Build]
// allocates the backing buffer, writes every field, and fills in
// TotalLength and CRC if left at their zero value.
//
// The zero value is not ready to use; start from [NewBuilder].
type Builder struct {
	tos            ToS
	totalLength    uint16
	id             uint16
	flags          Flags
	ttl            uint8
	protocol       Protocol
	crc            uint16
	src, dst       [4]byte
	headerWords    uint8
	payload        []byte
}

// NewBuilder returns a Builder with version 4, a minimal 20-byte header
// and protocol left unset, matching the defaults of a freshly zeroed
// IPv4 header.
func NewBuilder() *Builder {
	return &Builder{headerWords: minHeaderWords}
}

func (b *Builder) ToS(tos ToS) *Builder { b.tos = tos; return b }

// TotalLength overrides the computed total length. Leave at zero (the
// default) to have [Builder.Build] compute it from the header length and
// payload size.
func (b *Builder) TotalLength(tl uint16) *Builder { b.totalLength = tl; return b }

func (b *Builder) ID(id uint16) *Builder { b.id = id; return b }

func (b *Builder) Flags(flags Flags) *Builder { b.flags = flags; return b }

func (b *Builder) TTL(ttl uint8) *Builder { b.ttl = ttl; return b }

func (b *Builder) Protocol(p Protocol) *Builder { b.protocol = p; return b }

// CRC overrides the header checksum. Leave at zero (the default) to have
// [Builder.Build] compute it once every other field has been written.
func (b *Builder) CRC(crc uint16) *Builder { b.crc = crc; return b }

func (b *Builder) SourceAddr(addr [4]byte) *Builder { b.src = addr; return b }

func (b *Builder) DestinationAddr(addr [4]byte) *Builder { b.dst = addr; return b }

// HeaderWords sets the IHL field, i.e. the header length in 32-bit words,
// options included. Defaults to the minimum of 5 (20 bytes, no options).
func (b *Builder) HeaderWords(words uint8) *Builder { b.headerWords = words; return b }

// Payload sets the datagram's payload. The slice is copied into the
// built buffer, not retained.
func (b *Builder) Payload(payload []byte) *Builder { b.payload = payload; return b }

// Build allocates a buffer, writes every configured field into it and
// returns the resulting Frame. If TotalLength was left at zero it is
// computed from the header length and payload size; if CRC was left at
// zero it is computed over the finished header.
func (b *Builder) Build() Frame {
	headerBytes := int(b.headerWords) * 4
	totalLength := b.totalLength
	if totalLength == 0 {
		totalLength = uint16(headerBytes + len(b.payload))
	}
	buf := make([]byte, int(totalLength))
	copy(buf[headerBytes:], b.payload)

	frm := Frame{buf: buf}
	frm.SetVersionAndIHL(version, b.headerWords)
	frm.SetToS(b.tos)
	frm.SetTotalLength(totalLength)
	frm.SetID(b.id)
	frm.SetFlags(b.flags)
	frm.SetTTL(b.ttl)
	frm.SetProtocol(b.protocol)
	*frm.SourceAddr() = b.src
	*frm.DestinationAddr() = b.dst
	frm.SetCRC(b.crc)

	if b.crc == 0 {
		frm.SetCRC(checksum.Checksum(buf[:headerBytes]))
	}
	return frm
}
