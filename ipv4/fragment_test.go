package ipv4

import "testing"

func TestFragmenter_splitsIntoThreeFragments(t *testing.T) {
	const minMTU = 68
	payloadLen := 100
	payload := make([]byte, payloadLen)
	for i := range payload {
		payload[i] = byte(i)
	}

	origin := NewBuilder().
		ID(0x1001).
		TTL(64).
		Protocol(ProtocolUDP).
		SourceAddr([4]byte{192, 168, 233, 233}).
		DestinationAddr([4]byte{192, 168, 233, 234}).
		Payload(payload).
		Build()

	frag := NewFragmenter(origin, minMTU)

	first, ok := frag.Next()
	if !ok {
		t.Fatal("expected a first fragment")
	}
	second, ok := frag.Next()
	if !ok {
		t.Fatal("expected a second fragment")
	}
	third, ok := frag.Next()
	if !ok {
		t.Fatal("expected a third fragment")
	}
	if _, ok := frag.Next(); ok {
		t.Fatal("expected no fourth fragment")
	}
	if frag.cursor != payloadLen+minHeaderWords*4 {
		t.Errorf("cursor = %d, want %d", frag.cursor, payloadLen+minHeaderWords*4)
	}

	checkFragment(t, "first", first, minMTU, true, 0, payload[0:48])
	checkFragment(t, "second", second, minMTU, true, 6, payload[48:96])
	checkFragment(t, "third", third, 24, false, 12, payload[96:100])
}

func checkFragment(t *testing.T, name string, frm Frame, wantTotalLen int, wantMF bool, wantOffset uint16, wantPayload []byte) {
	t.Helper()
	if int(frm.TotalLength()) != wantTotalLen {
		t.Errorf("%s: TotalLength = %d, want %d", name, frm.TotalLength(), wantTotalLen)
	}
	if frm.Flags().MoreFragments() != wantMF {
		t.Errorf("%s: MoreFragments = %v, want %v", name, frm.Flags().MoreFragments(), wantMF)
	}
	if frm.Flags().FragmentOffset() != wantOffset {
		t.Errorf("%s: FragmentOffset = %d, want %d", name, frm.Flags().FragmentOffset(), wantOffset)
	}
	if string(frm.Payload()) != string(wantPayload) {
		t.Errorf("%s: Payload = %v, want %v", name, frm.Payload(), wantPayload)
	}
	if got, want := frm.CRC(), frm.CalculateHeaderCRC(); got != want {
		t.Errorf("%s: CRC = %#x, want %#x (CalculateHeaderCRC)", name, got, want)
	}
}

func TestFragmenter_singleFragmentWhenUnderMTU(t *testing.T) {
	origin := NewBuilder().Payload(make([]byte, 10)).Build()
	frag := NewFragmenter(origin, DefaultMTU)

	_, ok := frag.Next()
	if !ok {
		t.Fatal("expected exactly one fragment")
	}
	if _, ok := frag.Next(); ok {
		t.Fatal("expected no second fragment")
	}
}
