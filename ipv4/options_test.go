package ipv4

import "testing"

func TestOptionType_decompose(t *testing.T) {
	// Timestamp option: copied=0, class=DebuggingAndMeasurement(2), number=4.
	ot := OptionType(0b0_10_00100)
	if ot.Copied() {
		t.Error("Copied() = true, want false")
	}
	if ot.Class() != OptionClassDebuggingAndMeasurement {
		t.Errorf("Class() = %v, want DebuggingAndMeasurement", ot.Class())
	}
	if ot.Number() != 4 {
		t.Errorf("Number() = %d, want 4", ot.Number())
	}
	if ot.Kind() != OptionTimestamp {
		t.Errorf("Kind() = %v, want Timestamp", ot.Kind())
	}
}

func TestOptionIterator_endStopsIteration(t *testing.T) {
	buf := []byte{
		byte(OptionType(0b0_00_00001)), // NoOperation
		0x00,                           // End
		0xff, 0xff, 0xff,               // garbage the iterator must never reach
	}
	it := OptionIterator{buf: buf}

	opt, ok, err := it.Next()
	if err != nil || !ok {
		t.Fatalf("expected NoOperation, got ok=%v err=%v", ok, err)
	}
	if opt.Kind() != OptionNoOperation {
		t.Errorf("Kind() = %v, want NoOperation", opt.Kind())
	}

	_, ok, err = it.Next()
	if err != nil || ok {
		t.Fatalf("expected iteration to stop at End, got ok=%v err=%v", ok, err)
	}
	_, ok, err = it.Next()
	if err != nil || ok {
		t.Fatalf("expected iterator to stay exhausted, got ok=%v err=%v", ok, err)
	}
}

func TestOptionIterator_malformedOptionIsAnError(t *testing.T) {
	// A timestamp option (length byte required) truncated to a single byte.
	buf := []byte{byte(OptionType(0b0_10_00100))}
	it := OptionIterator{buf: buf}

	_, ok, err := it.Next()
	if ok || err == nil {
		t.Fatalf("expected a malformed-option error, got ok=%v err=%v", ok, err)
	}
	_, ok, err = it.Next()
	if ok || err != nil {
		t.Fatal("iterator should stay exhausted after surfacing a malformed option")
	}
}

func TestNewOption_streamID(t *testing.T) {
	buf := []byte{byte(OptionType(0b0_00_01000)), 0, 0, 0, 0xff}
	opt, err := NewOption(buf)
	if err != nil {
		t.Fatal(err)
	}
	if opt.Kind() != OptionStreamID {
		t.Errorf("Kind() = %v, want StreamID", opt.Kind())
	}
	if len(opt.RawData()) != 4 {
		t.Errorf("len(RawData()) = %d, want 4", len(opt.RawData()))
	}
}
