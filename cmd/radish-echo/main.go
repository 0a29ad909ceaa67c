// Command radish-echo answers ICMPv4 echo requests arriving on a tun
// device, for exercising the ipv4/icmpv4 packages end to end. Configure
// the interface's address and bring it up out of band, e.g.:
//
//	ip tuntap add dev tun0 mode tun
//	ip addr add 10.0.0.1/24 dev tun0
//	ip link set dev tun0 up
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/qixiaoo/radish/device"
	"github.com/qixiaoo/radish/ipv4"
	"github.com/qixiaoo/radish/ipv4/icmpv4"
)

func main() {
	if err := run(); err != nil {
		log.Fatalln("failed:", err)
	}
}

func run() error {
	var (
		flagIface = flag.String("iface", "tun0", "tun interface name")
		flagMTU   = flag.Int("mtu", ipv4.DefaultMTU, "interface MTU")
	)
	flag.Parse()

	slogger := slog.Default()
	tun, err := device.Open(*flagIface)
	if err != nil {
		return fmt.Errorf("opening tun device: %w", err)
	}
	defer tun.Close()
	slogger.Info("listening", slog.String("iface", tun.Name()), slog.Int("mtu", *flagMTU))

	ifc := ipv4.NewInterface(tun, ipv4.NewReassembler(), *flagMTU)
	for {
		frm, err := ifc.Receive()
		if err != nil {
			if errors.Is(err, ipv4.ErrTryAgainLater) {
				continue
			}
			slogger.Error("receive", slog.String("err", err.Error()))
			continue
		}
		if frm.Protocol() != ipv4.ProtocolICMP {
			continue
		}
		if err := handleEcho(ifc, frm); err != nil {
			slogger.Error("handle-echo", slog.String("err", err.Error()))
		}
	}
}

func handleEcho(ifc *ipv4.Interface, frm ipv4.Frame) error {
	echo, err := icmpv4.NewFrameEcho(frm.Payload())
	if err != nil {
		return nil // neither an echo request nor an echo reply.
	}
	if !echo.IsRequest() {
		return nil
	}

	reply := ipv4.NewBuilder().
		TTL(64).
		Protocol(ipv4.ProtocolICMP).
		SourceAddr(*frm.DestinationAddr()).
		DestinationAddr(*frm.SourceAddr()).
		Payload(append([]byte(nil), frm.Payload()...)).
		Build()

	replyEcho, err := icmpv4.NewFrameEcho(reply.Payload())
	if err != nil {
		return err
	}
	replyEcho.SetType(icmpv4.TypeEchoReply)
	replyEcho.SetCRC(0)
	replyEcho.SetCRC(replyEcho.CalculateCRC())

	reply.SetCRC(reply.CalculateHeaderCRC())
	_, err = ifc.Send(reply)
	return err
}
