package ipv4

import (
	"log/slog"
	"sync"
	"time"

	lneto "github.com/qixiaoo/radish"
)

const defaultHoleUpperBound = 0xffff

// defaultTimeoutLowerBound is RFC 791 §3.2's suggested minimum reassembly
// timeout. It is a var, not a const, so tests can shrink it instead of
// sleeping through a real 15 seconds.
var defaultTimeoutLowerBound = 15 * time.Second

// DatagramID identifies the datagram a fragment belongs to: RFC 791 says
// two fragments belong to the same datagram iff their (identification,
// protocol, source, destination) tuples match. Unlike a single packed
// integer, DatagramID keeps the fields named and is usable directly as a
// map key.
type DatagramID struct {
	Identification uint16
	Protocol       Protocol
	Source         [4]byte
	Destination    [4]byte
}

// DatagramID returns the identity fragments of this datagram share.
func (ifrm Frame) DatagramID() DatagramID {
	return DatagramID{
		Identification: ifrm.ID(),
		Protocol:       ifrm.Protocol(),
		Source:         *ifrm.SourceAddr(),
		Destination:    *ifrm.DestinationAddr(),
	}
}

// firstOctet and lastOctet return the inclusive byte range, relative to
// the start of the original datagram's payload, that a fragment covers.
func firstOctet(frm Frame) uint16 { return frm.Flags().FragmentOffset() * 8 }
func lastOctet(frm Frame) uint16  { return firstOctet(frm) + uint16(len(frm.Payload())) - 1 }

// HoleDescriptor represents a still-missing byte range, as defined by
// RFC 815: first and last are both inclusive, relative to the start of
// the original datagram's payload.
type HoleDescriptor struct {
	First, Last uint16
}

// IncompleteDatagram accumulates the fragments of a datagram that has not
// yet been fully reassembled. It implements the hole-descriptor algorithm
// of RFC 815: a newly inserted fragment narrows or splits every hole it
// overlaps, and the datagram is complete once no hole remains.
type IncompleteDatagram struct {
	holes        []HoleDescriptor
	fragments    []Frame
	totalDataLen int
	timeout      time.Duration
	timer        *time.Timer
}

func newIncompleteDatagram() *IncompleteDatagram {
	return &IncompleteDatagram{
		holes:   []HoleDescriptor{{First: 0, Last: defaultHoleUpperBound}},
		timeout: defaultTimeoutLowerBound,
	}
}

// Insert folds fragment into the datagram, splitting or shrinking every
// hole it overlaps. Fragments that don't fill any hole are discarded: RFC
// 815 treats them as pure duplicates of data already received.
func (d *IncompleteDatagram) Insert(fragment Frame) {
	moreFragments := fragment.Flags().MoreFragments()
	first := firstOctet(fragment)
	last := lastOctet(fragment)
	filled := false

	if !moreFragments {
		d.totalDataLen = int(fragment.TotalLength()) - fragment.HeaderLength() + int(first)
	}

	for {
		idx := -1
		for i, hole := range d.holes {
			if first <= hole.Last && last >= hole.First {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		hole := d.holes[idx]

		var newHoles []HoleDescriptor
		if first > hole.First {
			newHoles = append(newHoles, HoleDescriptor{First: hole.First, Last: first - 1})
		}
		if last < hole.Last && moreFragments {
			newHoles = append(newHoles, HoleDescriptor{First: last + 1, Last: hole.Last})
		}

		d.holes = append(d.holes[:idx], append(newHoles, d.holes[idx+1:]...)...)
		filled = true
	}

	if !filled {
		slog.Debug("ipv4: discarding fragment", slog.Any("err", lneto.ErrPacketDrop),
			slog.Any("first", first), slog.Any("last", last))
		return
	}

	pos := len(d.fragments)
	for i, frag := range d.fragments {
		if firstOctet(frag) > first {
			pos = i
			break
		}
	}
	d.fragments = append(d.fragments, Frame{})
	copy(d.fragments[pos+1:], d.fragments[pos:])
	d.fragments[pos] = fragment
}

// Complete returns the reassembled datagram, or ok=false while holes
// remain.
func (d *IncompleteDatagram) Complete() (frame Frame, ok bool) {
	if len(d.holes) != 0 || len(d.fragments) == 0 {
		return Frame{}, false
	}

	var end uint16
	payload := make([]byte, 0, d.totalDataLen)
	for _, fragment := range d.fragments {
		first, last := firstOctet(fragment), lastOctet(fragment)
		if last < end {
			continue
		}
		start := end
		end = last + 1
		payload = append(payload, fragment.Payload()[start-first:end-first]...)
	}

	head := d.fragments[0]
	_, ihl := head.VersionAndIHL()

	datagram := NewBuilder().
		HeaderWords(ihl).
		ToS(head.ToS()).
		ID(head.ID()).
		Flags(head.Flags().withMoreFragments(false).withFragmentOffset(0)).
		TTL(head.TTL()).
		Protocol(head.Protocol()).
		SourceAddr(*head.SourceAddr()).
		DestinationAddr(*head.DestinationAddr()).
		Payload(payload).
		Build()
	return datagram, true
}

// Reassembler reconstructs complete datagrams out of the fragments passed
// to [Reassembler.Reassemble]. It is safe for concurrent use.
type Reassembler struct {
	mu        sync.Mutex
	datagrams map[DatagramID]*IncompleteDatagram
}

// NewReassembler returns an empty Reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{datagrams: make(map[DatagramID]*IncompleteDatagram)}
}

// Release discards any in-progress reassembly state for id, without
// waiting for its timer to expire.
func (r *Reassembler) Release(id DatagramID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.datagrams[id]; ok {
		d.timer.Stop()
		delete(r.datagrams, id)
	}
}

// Reassemble folds fragment into the reassembly state for its datagram,
// returning the complete datagram once every fragment has arrived. Every
// insert restarts the datagram's expiry timer with the largest TTL seen
// among its fragments, taken as seconds, but never less than
// defaultTimeoutLowerBound (15 seconds), per RFC 791 §3.2's discard-timer
// guidance.
func (r *Reassembler) Reassemble(fragment Frame) (complete Frame, ok bool) {
	ttl := time.Duration(fragment.TTL()) * time.Second
	id := fragment.DatagramID()

	r.mu.Lock()
	defer r.mu.Unlock()

	d, exists := r.datagrams[id]
	if !exists {
		d = newIncompleteDatagram()
		r.datagrams[id] = d
	}

	d.Insert(fragment)

	if d.timeout < ttl {
		d.timeout = ttl
	}
	timeout := d.timeout
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(timeout, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.datagrams[id] == d {
			slog.Warn("ipv4: evicting incomplete datagram after reassembly timeout",
				slog.Any("id", id), slog.Duration("timeout", timeout), slog.Int("holes", len(d.holes)))
			delete(r.datagrams, id)
		}
	})

	complete, ok = d.Complete()
	if ok {
		d.timer.Stop()
		delete(r.datagrams, id)
	}
	return complete, ok
}
