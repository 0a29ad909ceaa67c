//go:build !linux

package device

import "errors"

// Tun is unimplemented outside Linux; tun devices are a Linux kernel
// facility.
type Tun struct{}

func Open(name string) (*Tun, error) {
	return nil, errors.ErrUnsupported
}

func (t *Tun) Name() string { return "" }

func (t *Tun) Read(b []byte) (int, error) { return -1, errors.ErrUnsupported }

func (t *Tun) Write(b []byte) (int, error) { return -1, errors.ErrUnsupported }

func (t *Tun) Close() error { return errors.ErrUnsupported }
