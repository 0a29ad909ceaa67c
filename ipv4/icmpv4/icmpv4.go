// Package icmpv4 implements zero-copy views over ICMPv4 messages, as
// defined in RFC 792.
package icmpv4

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/qixiaoo/radish/checksum"
)

// Type identifies an ICMPv4 message.
type Type uint8

const (
	TypeEchoReply Type = 0 // echo reply

	TypeDestinationUnreachable Type = 3 // destination unreachable
	TypeSourceQuench           Type = 4 // source quench
	TypeRedirect               Type = 5 // redirect

	TypeEcho Type = 8 // echo

	TypeTimeExceeded     Type = 11 // time exceeded
	TypeParameterProblem Type = 12 // parameter problem

	TypeTimestamp      Type = 13 // timestamp
	TypeTimestampReply Type = 14 // timestamp reply

	TypeInfoRequest      Type = 15 // information request
	TypeInfoRequestReply Type = 16 // information request reply
)

func (t Type) String() string {
	switch t {
	case TypeEchoReply:
		return "EchoReply"
	case TypeDestinationUnreachable:
		return "DestinationUnreachable"
	case TypeSourceQuench:
		return "SourceQuench"
	case TypeRedirect:
		return "Redirect"
	case TypeEcho:
		return "Echo"
	case TypeTimeExceeded:
		return "TimeExceeded"
	case TypeParameterProblem:
		return "ParameterProblem"
	case TypeTimestamp:
		return "Timestamp"
	case TypeTimestampReply:
		return "TimestampReply"
	case TypeInfoRequest:
		return "InfoRequest"
	case TypeInfoRequestReply:
		return "InfoRequestReply"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// CodeTimeExceeded is the code sub-field of a TimeExceeded message.
type CodeTimeExceeded uint8

const (
	CodeExceededInTransit  CodeTimeExceeded = iota // TTL exceeded in transit
	CodeFragmentReassembly                         // fragment reassembly time exceeded
)

// CodeDestinationUnreachable is the code sub-field of a
// DestinationUnreachable message.
type CodeDestinationUnreachable uint8

const (
	CodeNetUnreachable     CodeDestinationUnreachable = iota // net unreachable
	CodeHostUnreachable                                      // host unreachable
	CodeProtoUnreachable                                     // protocol unreachable
	CodePortUnreachable                                      // port unreachable
	CodeFragNeededAndDFSet                                   // fragmentation needed and DF set
	CodeSourceRouteFailed                                    // source route failed
)

// CodeRedirect is the code sub-field of a Redirect message.
type CodeRedirect uint8

const (
	CodeRedirectForNetwork       CodeRedirect = iota // redirect for network
	CodeRedirectForHost                               // redirect for host
	CodeRedirectForToSAndNetwork                      // redirect for ToS+network
	CodeRedirectToSAndHost                            // redirect for ToS+host
)

var (
	errShortFrame         = errors.New("icmpv4: short frame")
	errInvalidMessageType = errors.New("icmpv4: invalid message type for this view")
)

// NewFrame returns a Frame over buf, the base ICMPv4 message layout
// common to every message type. buf must be at least 8 bytes: the 4-byte
// base header plus the 4 bytes every defined message type uses next,
// even though their meaning varies (identifier+sequence for Echo, unused
// for DestinationUnreachable, and so on).
func NewFrame(buf []byte) (Frame, error) {
	if len(buf) < 8 {
		return Frame{}, errShortFrame
	}
	return Frame{buf: buf}, nil
}

// Frame is a zero-copy view over an ICMPv4 message's base header.
type Frame struct {
	buf []byte
}

// RawData returns the underlying slice the Frame was created over.
func (frm Frame) RawData() []byte { return frm.buf }

func (frm Frame) Type() Type { return Type(frm.buf[0]) }

func (frm Frame) SetType(t Type) { frm.buf[0] = uint8(t) }

func (frm Frame) Code() uint8 { return frm.buf[1] }

func (frm Frame) SetCode(code uint8) { frm.buf[1] = code }

// CRC returns the checksum field of the frame.
func (frm Frame) CRC() uint16 { return binary.BigEndian.Uint16(frm.buf[2:4]) }

// SetCRC sets the checksum field of the frame.
func (frm Frame) SetCRC(crc uint16) { binary.BigEndian.PutUint16(frm.buf[2:4], crc) }

// CalculateCRC computes the RFC 1071 checksum over the whole message,
// treating the checksum field as zero; ICMPv4, unlike IPv4, checksums its
// payload as well as its header.
func (frm Frame) CalculateCRC() uint16 {
	var a checksum.Accumulator
	a.Write(frm.buf[0:2])
	a.Write(frm.buf[4:])
	return a.Sum16()
}

func (frm Frame) payload() []byte { return frm.buf[4:] }

func (frm Frame) String() string {
	return fmt.Sprintf("ICMP type=%s code=%d crc=%#x", frm.Type(), frm.Code(), frm.CRC())
}

// FrameDestinationUnreachable is a Frame known to carry a
// DestinationUnreachable message.
type FrameDestinationUnreachable struct {
	Frame
}

// NewFrameDestinationUnreachable views buf as a DestinationUnreachable
// message, returning [errInvalidMessageType] if its type field says
// otherwise.
func NewFrameDestinationUnreachable(buf []byte) (FrameDestinationUnreachable, error) {
	frm, err := NewFrame(buf)
	if err != nil {
		return FrameDestinationUnreachable{}, err
	}
	if frm.Type() != TypeDestinationUnreachable {
		return FrameDestinationUnreachable{}, errInvalidMessageType
	}
	return FrameDestinationUnreachable{Frame: frm}, nil
}

func (frm FrameDestinationUnreachable) Code() CodeDestinationUnreachable {
	return CodeDestinationUnreachable(frm.Frame.Code())
}

func (frm FrameDestinationUnreachable) SetCode(code CodeDestinationUnreachable) {
	frm.Frame.SetCode(uint8(code))
}

// Payload returns the offending datagram's leading bytes, as quoted back
// by the router that generated this message.
func (frm FrameDestinationUnreachable) Payload() []byte { return frm.buf[8:] }

// FrameEcho is a Frame known to carry an Echo or EchoReply message.
type FrameEcho struct {
	Frame
}

// NewFrameEcho views buf as an Echo or EchoReply message, returning
// [errInvalidMessageType] if its type field says otherwise.
func NewFrameEcho(buf []byte) (FrameEcho, error) {
	frm, err := NewFrame(buf)
	if err != nil {
		return FrameEcho{}, err
	}
	if frm.Type() != TypeEcho && frm.Type() != TypeEchoReply {
		return FrameEcho{}, errInvalidMessageType
	}
	return FrameEcho{Frame: frm}, nil
}

// IsReply reports whether this is an EchoReply message.
func (frm FrameEcho) IsReply() bool { return frm.Type() == TypeEchoReply }

// IsRequest reports whether this is an Echo (request) message.
func (frm FrameEcho) IsRequest() bool { return frm.Type() == TypeEcho }

func (frm FrameEcho) Identifier() uint16 { return binary.BigEndian.Uint16(frm.buf[4:6]) }

func (frm FrameEcho) SetIdentifier(id uint16) { binary.BigEndian.PutUint16(frm.buf[4:6], id) }

func (frm FrameEcho) SequenceNumber() uint16 { return binary.BigEndian.Uint16(frm.buf[6:8]) }

func (frm FrameEcho) SetSequenceNumber(seq uint16) {
	binary.BigEndian.PutUint16(frm.buf[6:8], seq)
}

func (frm FrameEcho) Data() []byte { return frm.buf[8:] }
