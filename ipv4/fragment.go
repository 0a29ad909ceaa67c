package ipv4

// Fragmenter splits a Frame into MTU-sized fragments, in the order
// consumed by [Interface.Send]. It is a one-shot, non-restartable pull
// iterator: advancing it invalidates no state other than its own cursor,
// but it cannot be rewound.
//
// Fragments never carry the original's options, not even those whose type
// has the copied flag set (see [OptionType.Copied]): every fragment has a
// bare 20-byte header.
type Fragmenter struct {
	origin Frame
	cursor int
	mtu    int
}

// NewFragmenter returns a Fragmenter over frm's payload, producing
// fragments no larger than mtu bytes including their own header.
func NewFragmenter(frm Frame, mtu int) Fragmenter {
	return Fragmenter{origin: frm, cursor: frm.HeaderLength(), mtu: mtu}
}

// Next returns the next fragment, or ok=false once the whole payload has
// been consumed.
func (fr *Fragmenter) Next() (fragment Frame, ok bool) {
	total := int(fr.origin.TotalLength())
	if fr.cursor >= total {
		return Frame{}, false
	}

	minHeaderBytes := minHeaderWords * 4
	remaining := total - fr.cursor
	isLast := remaining <= fr.mtu-minHeaderBytes
	nfb := (fr.mtu - minHeaderBytes) / 8 // number of 8-byte fragment blocks per non-final fragment
	payloadLen := nfb * 8
	if isLast {
		payloadLen = remaining
	}

	originHeaderBytes := fr.origin.HeaderLength()
	fragmentOffset := fr.origin.Flags().FragmentOffset() + uint16((fr.cursor-originHeaderBytes)/8)

	flags := flagsForFragment(fr.origin.Flags(), isLast).withFragmentOffset(fragmentOffset)
	fragment = NewBuilder().
		HeaderWords(minHeaderWords).
		ToS(fr.origin.ToS()).
		ID(fr.origin.ID()).
		Flags(flags).
		TTL(fr.origin.TTL()).
		Protocol(fr.origin.Protocol()).
		SourceAddr(*fr.origin.SourceAddr()).
		DestinationAddr(*fr.origin.DestinationAddr()).
		Payload(fr.origin.buf[fr.cursor : fr.cursor+payloadLen]).
		Build()

	fr.cursor += payloadLen
	return fragment, true
}

// flagsForFragment returns origin's flags with MoreFragments set unless
// this is the last fragment being produced.
func flagsForFragment(origin Flags, isLast bool) Flags {
	if isLast {
		return origin
	}
	return origin.withMoreFragments(true)
}
