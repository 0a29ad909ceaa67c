package ipv4

import (
	"bytes"
	"testing"
)

func TestBuilder_build(t *testing.T) {
	const (
		tos           = ToS(0)
		id            = uint16(0x1122)
		flags         = Flags(0b010 << 13)
		ttl           = uint8(100)
		proto         = ProtocolICMP
	)
	src := [4]byte{127, 0, 0, 1}
	dst := [4]byte{192, 168, 233, 233}
	payload := make([]byte, 20)

	frm := NewBuilder().
		ToS(tos).
		ID(id).
		Flags(flags).
		TTL(ttl).
		Protocol(proto).
		SourceAddr(src).
		DestinationAddr(dst).
		Payload(payload).
		Build()

	wantTotalLen := uint16(minHeaderWords*4 + len(payload))

	if ver, ihl := frm.VersionAndIHL(); ver != version || ihl != minHeaderWords {
		t.Errorf("version,ihl = %d,%d, want %d,%d", ver, ihl, version, minHeaderWords)
	}
	if frm.ToS() != tos {
		t.Errorf("ToS = %v, want %v", frm.ToS(), tos)
	}
	if frm.TotalLength() != wantTotalLen {
		t.Errorf("TotalLength = %d, want %d", frm.TotalLength(), wantTotalLen)
	}
	if frm.ID() != id {
		t.Errorf("ID = %#x, want %#x", frm.ID(), id)
	}
	if frm.Flags() != flags {
		t.Errorf("Flags = %#x, want %#x", frm.Flags(), flags)
	}
	if frm.TTL() != ttl {
		t.Errorf("TTL = %d, want %d", frm.TTL(), ttl)
	}
	if frm.Protocol() != proto {
		t.Errorf("Protocol = %v, want %v", frm.Protocol(), proto)
	}
	if *frm.SourceAddr() != src {
		t.Errorf("SourceAddr = %v, want %v", *frm.SourceAddr(), src)
	}
	if *frm.DestinationAddr() != dst {
		t.Errorf("DestinationAddr = %v, want %v", *frm.DestinationAddr(), dst)
	}
	if !bytes.Equal(frm.Payload(), payload) {
		t.Errorf("Payload = %v, want %v", frm.Payload(), payload)
	}
}

func TestBuilder_checksumOverHeaderOnly(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	frm := NewBuilder().
		ID(7).
		TTL(64).
		Protocol(ProtocolUDP).
		SourceAddr([4]byte{10, 0, 0, 1}).
		DestinationAddr([4]byte{10, 0, 0, 2}).
		Payload(payload).
		Build()

	if frm.CRC() == 0 {
		t.Fatal("Build() left the checksum unset")
	}
	if frm.CRC() != frm.CalculateHeaderCRC() {
		t.Errorf("stored checksum %#x does not match a header-only recomputation %#x",
			frm.CRC(), frm.CalculateHeaderCRC())
	}
}

func TestBuilder_explicitCRCIsPreserved(t *testing.T) {
	frm := NewBuilder().CRC(0xbeef).Build()
	if frm.CRC() != 0xbeef {
		t.Errorf("CRC = %#x, want 0xbeef to be preserved", frm.CRC())
	}
}
