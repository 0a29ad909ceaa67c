//go:build linux

// Package device opens the tun byte channel the rest of the stack reads
// IPv4 datagrams from and writes them to. Address, netmask, and interface
// flags are configured out of band (e.g. with the "ip" command); this
// package only deals in raw octets.
package device

import (
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Tun is a Linux /dev/net/tun interface opened in IFF_TUN mode: it carries
// raw IP packets with no Ethernet framing.
type Tun struct {
	fd   int
	name string
}

// Open creates (or attaches to) the tun interface named name. An empty name
// lets the kernel pick one, available afterwards via [Tun.Name].
func Open(name string) (*Tun, error) {
	if len(name) >= unix.IFNAMSIZ {
		return nil, errors.New("device: name too large")
	}
	fd, err := unix.Open("/dev/net/tun", unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("device: opening /dev/net/tun: %w", err)
	}
	ifr := makeifreq(name)
	ifr.setflags(uint16(unix.IFF_TUN | unix.IFF_NO_PI))
	if err := ioctl(fd, unix.TUNSETIFF, ifr.ptr()); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("device: TUNSETIFF: %w", err)
	}
	return &Tun{fd: fd, name: ifr.name()}, nil
}

// Name returns the kernel-assigned interface name, e.g. "tun0".
func (t *Tun) Name() string { return t.name }

// Read reads a single IP packet off the tun device into b.
func (t *Tun) Read(b []byte) (int, error) { return unix.Read(t.fd, b) }

// Write writes a single IP packet to the tun device.
func (t *Tun) Write(b []byte) (int, error) { return unix.Write(t.fd, b) }

// Close releases the underlying file descriptor. The kernel destroys the
// interface once the last open descriptor referencing it is closed, unless
// IFF_PERSIST was set out of band.
func (t *Tun) Close() error { return unix.Close(t.fd) }

func ioctl(fd int, request uintptr, argp unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), request, uintptr(argp))
	if errno != 0 {
		return os.NewSyscallError("ioctl", errno)
	}
	return nil
}

type ifreq struct {
	Name [unix.IFNAMSIZ]byte
	Data [64]byte
}

func makeifreq(name string) ifreq {
	var ifr ifreq
	copy(ifr.Name[:], name)
	return ifr
}

func (ifr *ifreq) setflags(flags uint16) {
	*(*uint16)(unsafe.Pointer(&ifr.Data[0])) = flags
}

func (ifr *ifreq) name() string {
	n := 0
	for n < len(ifr.Name) && ifr.Name[n] != 0 {
		n++
	}
	return string(ifr.Name[:n])
}

func (ifr *ifreq) ptr() unsafe.Pointer { return unsafe.Pointer(ifr) }
