package ipv4

import (
	"fmt"
	"io"
	"log/slog"
)

// Interface is the entry point the upper layers use to exchange whole
// datagrams with a tun device, transparently fragmenting outgoing
// datagrams that exceed the MTU and reassembling incoming ones that
// arrived fragmented. It does not address the case of acting as a
// gateway between two networks.
type Interface struct {
	device      io.ReadWriter
	reassembler *Reassembler
	mtu         int
}

// NewInterface returns an Interface that reads and writes whole IPv4
// datagrams through device, using mtu as both the fragmentation
// threshold and the read buffer size. A zero mtu defaults to
// [DefaultMTU].
func NewInterface(device io.ReadWriter, reassembler *Reassembler, mtu int) *Interface {
	if mtu == 0 {
		mtu = DefaultMTU
	}
	return &Interface{device: device, reassembler: reassembler, mtu: mtu}
}

// Send writes frm to the device, fragmenting it first if it exceeds the
// interface's MTU. It returns [ErrNonFragmentable] if frm is too large
// and carries DontFragment.
func (ifc *Interface) Send(frm Frame) (int, error) {
	octets := frm.RawData()
	if len(octets) <= ifc.mtu {
		return ifc.device.Write(octets)
	}
	if frm.Flags().DontFragment() {
		return 0, ErrNonFragmentable
	}

	frag := NewFragmenter(frm, ifc.mtu)
	for {
		fragment, ok := frag.Next()
		if !ok {
			break
		}
		if _, err := ifc.device.Write(fragment.RawData()); err != nil {
			return 0, err
		}
	}
	return len(octets), nil
}

// Receive reads one datagram's worth of bytes from the device and
// returns the resulting complete datagram. If the bytes read are a
// fragment of a larger datagram, Receive returns [ErrTryAgainLater]
// until every fragment has arrived.
func (ifc *Interface) Receive() (Frame, error) {
	buf := make([]byte, ifc.mtu)
	n, err := ifc.device.Read(buf)
	if err != nil {
		return Frame{}, err
	}
	buf = buf[:n]

	frm, err := NewFrame(buf)
	if err != nil {
		return Frame{}, err
	}
	var v Validator
	frm.Validate(&v)
	if err := v.Err(); err != nil {
		return Frame{}, err
	}
	if frm.CRC() != frm.CalculateHeaderCRC() {
		slog.Warn("ipv4: dropping datagram with invalid header checksum",
			slog.Any("got", frm.CRC()), slog.Any("want", frm.CalculateHeaderCRC()))
		return Frame{}, ErrInvalidChecksum
	}

	if frm.Flags().FragmentOffset() == 0 && !frm.Flags().MoreFragments() {
		ifc.reassembler.Release(frm.DatagramID())
		return frm, nil
	}

	complete, ok := ifc.reassembler.Reassemble(frm)
	if !ok {
		return Frame{}, fmt.Errorf("%w", ErrTryAgainLater)
	}
	return complete, nil
}
