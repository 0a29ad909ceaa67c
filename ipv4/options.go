package ipv4

// OptionKind identifies the meaning of an IPv4 option, as predefined in
// RFC 791. Unknown covers every (class, number) pair this package does
// not name explicitly.
type OptionKind uint8

const (
	OptionEnd OptionKind = iota
	OptionNoOperation
	OptionSecurity
	OptionLooseSourceRouting
	OptionStrictSourceRouting
	OptionRecordRoute
	OptionStreamID
	OptionTimestamp
	OptionUnknown
)

func (k OptionKind) String() string {
	switch k {
	case OptionEnd:
		return "End"
	case OptionNoOperation:
		return "NoOperation"
	case OptionSecurity:
		return "Security"
	case OptionLooseSourceRouting:
		return "LooseSourceRouting"
	case OptionStrictSourceRouting:
		return "StrictSourceRouting"
	case OptionRecordRoute:
		return "RecordRoute"
	case OptionStreamID:
		return "StreamID"
	case OptionTimestamp:
		return "Timestamp"
	default:
		return "Unknown"
	}
}

// OptionClass is the 2-bit class sub-field of an option's type byte.
type OptionClass uint8

const (
	OptionClassControl                 OptionClass = 0
	OptionClassDebuggingAndMeasurement OptionClass = 2
)

// OptionType is the raw type byte of an IPv4 option, decomposed into its
// copied flag, class and option number sub-fields per RFC 791 §3.1.
type OptionType uint8

// Copied reports whether the option must be copied into every fragment of
// a fragmented datagram.
func (t OptionType) Copied() bool { return t&0b1000_0000 != 0 }

// Class returns the option's class sub-field.
func (t OptionType) Class() OptionClass { return OptionClass(t&0b0110_0000) >> 5 }

// Number returns the option's number sub-field.
func (t OptionType) Number() uint8 { return uint8(t) & 0b0001_1111 }

// Kind maps the (class, number) pair to a named [OptionKind].
func (t OptionType) Kind() OptionKind {
	switch {
	case t.Class() == OptionClassControl && t.Number() == 0:
		return OptionEnd
	case t.Class() == OptionClassControl && t.Number() == 1:
		return OptionNoOperation
	case t.Class() == OptionClassControl && t.Number() == 2:
		return OptionSecurity
	case t.Class() == OptionClassControl && t.Number() == 3:
		return OptionLooseSourceRouting
	case t.Class() == OptionClassControl && t.Number() == 7:
		return OptionRecordRoute
	case t.Class() == OptionClassControl && t.Number() == 8:
		return OptionStreamID
	case t.Class() == OptionClassControl && t.Number() == 9:
		return OptionStrictSourceRouting
	case t.Class() == OptionClassDebuggingAndMeasurement && t.Number() == 4:
		return OptionTimestamp
	default:
		return OptionUnknown
	}
}

// Option is a view over a single IPv4 option within a Frame's options
// buffer, sized to exactly the bytes it occupies (its "consumed length").
type Option struct {
	buf []byte
}

// NewOption decodes the first option at the start of buf, returning a
// slice-sized view bounded at its declared (or implicit, for single-byte
// options) length. It errors if buf is too short to hold the option its
// type and length bytes claim.
func NewOption(buf []byte) (Option, error) {
	if len(buf) < 1 {
		return Option{}, errInvalidOptionLen
	}
	kind := OptionType(buf[0]).Kind()
	if len(buf) == 1 {
		switch kind {
		case OptionEnd, OptionNoOperation, OptionUnknown:
			return Option{buf: buf[:1]}, nil
		default:
			return Option{}, errInvalidOptionLen
		}
	}
	var consumed int
	switch kind {
	case OptionEnd, OptionNoOperation, OptionUnknown:
		consumed = 1
	case OptionSecurity:
		consumed = 11
	case OptionLooseSourceRouting, OptionStrictSourceRouting, OptionRecordRoute, OptionTimestamp:
		consumed = int(buf[1])
		if consumed < 2 {
			return Option{}, errInvalidOptionLen
		}
	case OptionStreamID:
		consumed = 4
	}
	if len(buf) < consumed {
		return Option{}, errInvalidOptionLen
	}
	return Option{buf: buf[:consumed]}, nil
}

// RawData returns the bytes occupied by the option.
func (o Option) RawData() []byte { return o.buf }

// Type returns the option's raw type byte, decomposed via [OptionType].
func (o Option) Type() OptionType { return OptionType(o.buf[0]) }

// Kind is a shorthand for o.Type().Kind().
func (o Option) Kind() OptionKind { return o.Type().Kind() }

// Length returns the option's length byte and whether it has one: End,
// NoOperation and Unknown single-byte options have none.
func (o Option) Length() (length uint8, ok bool) {
	if len(o.buf) > 1 {
		return o.buf[1], true
	}
	return 0, false
}

// Data returns the option's value bytes, following its type and length
// bytes, or nil if the option carries no value (End/NoOperation/Unknown).
func (o Option) Data() []byte {
	length, ok := o.Length()
	if !ok {
		return nil
	}
	return o.buf[2:length]
}

// OptionIterator walks the options of an IPv4 header one at a time. It is
// a finite, non-restartable pull iterator: it stops at the first End
// option, at the end of the buffer, or at the first malformed option
// (which it surfaces as an error rather than silently dropping).
type OptionIterator struct {
	buf    []byte
	cursor int
	done   bool
}

// OptionIterator returns an iterator over the frame's options buffer.
func (ifrm Frame) OptionIterator() OptionIterator {
	return OptionIterator{buf: ifrm.Options()}
}

// Next returns the next option, or ok=false once the iterator is
// exhausted (End option seen, or buffer consumed). A non-nil error means
// the remaining bytes could not be parsed as an option; the iterator is
// exhausted after returning it.
func (it *OptionIterator) Next() (opt Option, ok bool, err error) {
	if it.done || it.cursor >= len(it.buf) {
		return Option{}, false, nil
	}
	opt, err = NewOption(it.buf[it.cursor:])
	if err != nil {
		it.done = true
		return Option{}, false, err
	}
	it.cursor += len(opt.buf)
	if opt.Kind() == OptionEnd {
		it.done = true
		return Option{}, false, nil
	}
	return opt, true, nil
}
