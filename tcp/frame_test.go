package tcp

import (
	"math/rand"
	"testing"

	lneto "github.com/qixiaoo/radish"
)

// capturedCurlSegment is a TCP segment captured from "curl 127.0.0.1:3000",
// header plus the GET request payload.
var capturedCurlSegment = []byte{
	// header
	0xc0, 0x9b, 0x0b, 0xb8, 0x57, 0x16, 0x23, 0x08, 0x60, 0x82, 0x25, 0x90, 0x80, 0x18, 0x18, 0xeb, 0xfe, 0x76,
	0x00, 0x00, 0x01, 0x01, 0x08, 0x0a, 0xf1, 0x51, 0xfb, 0xc9, 0xa8, 0x10, 0x91, 0x0d,
	// payload
	0x47, 0x45, 0x54, 0x20, 0x2f, 0x20, 0x48, 0x54, 0x54, 0x50, 0x2f, 0x31, 0x2e, 0x31, 0x0d, 0x0a, 0x48, 0x6f,
	0x73, 0x74, 0x3a, 0x20, 0x31, 0x32, 0x37, 0x2e, 0x30, 0x2e, 0x30, 0x2e, 0x31, 0x3a, 0x33, 0x30, 0x30, 0x30,
	0x0d, 0x0a, 0x55, 0x73, 0x65, 0x72, 0x2d, 0x41, 0x67, 0x65, 0x6e, 0x74, 0x3a, 0x20, 0x63, 0x75, 0x72, 0x6c,
	0x2f, 0x37, 0x2e, 0x36, 0x34, 0x2e, 0x31, 0x0d, 0x0a, 0x41, 0x63, 0x63, 0x65, 0x70, 0x74, 0x3a, 0x20, 0x2a,
	0x2f, 0x2a, 0x0d, 0x0a, 0x0d, 0x0a,
}

func TestFrame_capturedCurlSegment(t *testing.T) {
	buf := append([]byte(nil), capturedCurlSegment...)
	frm, err := NewFrame(buf)
	if err != nil {
		t.Fatal(err)
	}

	if frm.SourcePort() != 49307 {
		t.Errorf("SourcePort = %d, want 49307", frm.SourcePort())
	}
	if frm.DestinationPort() != 3000 {
		t.Errorf("DestinationPort = %d, want 3000", frm.DestinationPort())
	}
	if frm.Seq() != 0x57162308 {
		t.Errorf("Seq = %#x, want 0x57162308", frm.Seq())
	}
	if frm.Ack() != 0x60822590 {
		t.Errorf("Ack = %#x, want 0x60822590", frm.Ack())
	}
	offset, flags := frm.OffsetAndFlags()
	if offset != 8 {
		t.Errorf("offset = %d, want 8", offset)
	}
	if !flags.HasAll(FlagACK | FlagPSH) {
		t.Errorf("flags = %s, want ACK and PSH set", flags)
	}
	if flags.HasAny(FlagURG | FlagRST | FlagSYN | FlagFIN) {
		t.Errorf("flags = %s, want URG,RST,SYN,FIN clear", flags)
	}
	if frm.WindowSize() != 0x18eb {
		t.Errorf("WindowSize = %#x, want 0x18eb", frm.WindowSize())
	}
	if frm.CRC() != 0xfe76 {
		t.Errorf("CRC = %#x, want 0xfe76", frm.CRC())
	}
	if frm.UrgentPtr() != 0 {
		t.Errorf("UrgentPtr = %#x, want 0", frm.UrgentPtr())
	}
	if frm.HeaderLength() != 32 {
		t.Errorf("HeaderLength = %d, want 32", frm.HeaderLength())
	}
	wantPayload := capturedCurlSegment[32:]
	if string(frm.Payload()) != string(wantPayload) {
		t.Errorf("Payload mismatch: got %d bytes, want %d", len(frm.Payload()), len(wantPayload))
	}
}

func TestFrame_setters(t *testing.T) {
	const dataOffset = 5
	const payloadLen = 8
	buf := make([]byte, dataOffset*4+payloadLen)
	frm, err := NewFrame(buf)
	if err != nil {
		t.Fatal(err)
	}

	frm.SetSourcePort(4096)
	if frm.SourcePort() != 4096 {
		t.Errorf("SourcePort = %d, want 4096", frm.SourcePort())
	}

	frm.SetDestinationPort(80)
	if frm.DestinationPort() != 80 {
		t.Errorf("DestinationPort = %d, want 80", frm.DestinationPort())
	}

	frm.SetSeq(0x11223344)
	if frm.Seq() != 0x11223344 {
		t.Errorf("Seq = %#x, want 0x11223344", frm.Seq())
	}

	frm.SetAck(0xffeeddcc)
	if frm.Ack() != 0xffeeddcc {
		t.Errorf("Ack = %#x, want 0xffeeddcc", frm.Ack())
	}

	wantFlags := FlagURG | FlagACK | FlagPSH | FlagRST | FlagSYN | FlagFIN
	frm.SetOffsetAndFlags(dataOffset, wantFlags)
	gotOffset, gotFlags := frm.OffsetAndFlags()
	if gotOffset != dataOffset {
		t.Errorf("offset = %d, want %d", gotOffset, dataOffset)
	}
	if gotFlags != wantFlags {
		t.Errorf("flags = %s, want %s", gotFlags, wantFlags)
	}
}

func TestFrame_SetSegmentRoundtrip(t *testing.T) {
	buf := make([]byte, sizeHeaderTCP)
	frm, err := NewFrame(buf)
	if err != nil {
		t.Fatal(err)
	}

	seg := Segment{SEQ: 100, ACK: 200, DATALEN: 10, WND: 0xffff, Flags: FlagSYN | FlagACK}
	frm.SetSegment(seg, 5)

	got := frm.Segment(int(seg.DATALEN))
	if got.SEQ != seg.SEQ || got.ACK != seg.ACK || got.WND != seg.WND || got.Flags != seg.Flags {
		t.Errorf("Segment roundtrip mismatch: got %+v, want %+v", got, seg)
	}
}

func TestSegment_LENAndLast(t *testing.T) {
	seg := Segment{SEQ: 1000, DATALEN: 50, Flags: FlagSYN}
	if seg.LEN() != 51 {
		t.Errorf("LEN = %d, want 51 (SYN consumes a sequence number)", seg.LEN())
	}
	if seg.Last() != 1050 {
		t.Errorf("Last = %d, want 1050", seg.Last())
	}

	empty := Segment{SEQ: 42}
	if empty.Last() != 42 {
		t.Errorf("Last of an empty segment = %d, want SEQ unchanged (42)", empty.Last())
	}
}

func TestFlags_String(t *testing.T) {
	cases := []struct {
		flags Flags
		want  string
	}{
		{0, "[]"},
		{FlagSYN | FlagACK, "[SYN,ACK]"},
		{FlagFIN | FlagACK, "[FIN,ACK]"},
		{FlagRST, "[RST]"},
		{FlagSYN | FlagECE | FlagCWR, "[SYN,ECE,CWR]"},
	}
	for _, c := range cases {
		if got := c.flags.String(); got != c.want {
			t.Errorf("Flags(%#x).String() = %q, want %q", uint16(c.flags), got, c.want)
		}
	}
}

func TestFrame_ValidateSize(t *testing.T) {
	buf := make([]byte, sizeHeaderTCP)
	frm, err := NewFrame(buf)
	if err != nil {
		t.Fatal(err)
	}
	frm.SetOffsetAndFlags(5, 0)

	var v lneto.Validator
	frm.ValidateSize(&v)
	if err := v.Err(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	frm.SetOffsetAndFlags(4, 0) // header offset below minimum
	var v2 lneto.Validator
	frm.ValidateSize(&v2)
	if err := v2.Err(); err == nil {
		t.Error("expected validation error for undersized header offset")
	}
}

func TestFrame_fieldRoundtrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	buf := make([]byte, sizeHeaderTCP)
	frm, err := NewFrame(buf)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100; i++ {
		srcPort := uint16(rng.Intn(1 << 16))
		dstPort := uint16(rng.Intn(1 << 16))
		seq := Value(rng.Uint32())
		ack := Value(rng.Uint32())
		wnd := uint16(rng.Intn(1 << 16))
		crc := uint16(rng.Intn(1 << 16))
		urg := uint16(rng.Intn(1 << 16))

		frm.SetSourcePort(srcPort)
		frm.SetDestinationPort(dstPort)
		frm.SetSeq(seq)
		frm.SetAck(ack)
		frm.SetWindowSize(wnd)
		frm.SetCRC(crc)
		frm.SetUrgentPtr(urg)

		if frm.SourcePort() != srcPort || frm.DestinationPort() != dstPort ||
			frm.Seq() != seq || frm.Ack() != ack ||
			frm.WindowSize() != wnd || frm.CRC() != crc || frm.UrgentPtr() != urg {
			t.Fatalf("iteration %d: field roundtrip mismatch", i)
		}
	}
}
