// Command anp runs one acoustic data link node: it frames Ethernet traffic
// from a TUN-like device into MAC terminal frames, sends and receives them
// over an audio host, and exits cleanly when the operator presses Enter.
package main

import (
	"bufio"
	"net"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/anptech/anp/internal/audio"
	"github.com/anptech/anp/internal/detector"
	"github.com/anptech/anp/internal/mac"
	"github.com/anptech/anp/internal/modem"
	"github.com/anptech/anp/internal/monitor"
	"github.com/anptech/anp/internal/preamble"
	"github.com/anptech/anp/internal/tunio"
)

const (
	defaultSampleRate = 48000
	defaultBufferSize = 256
	monitorAddr       = "127.0.0.1:8090"
)

func main() {
	name := pflag.StringP("name", "i", "anp0", "TUN interface name")
	address := pflag.StringP("address", "a", "11.45.14.19/24", "interface CIDR address")
	wired := pflag.Bool("wired", false, "use the wired preamble/detector profile instead of acoustic")
	avoidCollision := pflag.Bool("avoid-collision", false, "back off sends while the channel looks busy")
	listDevices := pflag.Bool("list-devices", false, "print available audio devices and exit")
	pflag.Parse()

	if *listDevices {
		if err := audio.Init(); err != nil {
			log.Fatal("portaudio init failed", "err", err)
		}
		defer audio.Terminate()
		if err := audio.PrintDevices(); err != nil {
			log.Fatal("list devices failed", "err", err)
		}
		return
	}

	macAddress, err := macAddressFromCIDR(*address)
	if err != nil {
		log.Fatal("invalid address", "address", *address, "err", err)
	}

	if err := audio.Init(); err != nil {
		log.Fatal("portaudio init failed", "err", err)
	}
	defer audio.Terminate()

	host := audio.NewHost(defaultSampleRate, defaultBufferSize)
	m := modem.NewOFDM(defaultSampleRate)

	detProfile, preProfile := detector.Acoustic, preamble.Acoustic
	if *wired {
		detProfile, preProfile = detector.Wired, preamble.Wired
	}

	terminal := mac.NewTerminal(macAddress, host, m, detProfile, preProfile, *avoidCollision)

	hub := monitor.NewHub()
	terminal.SetTelemetry(hub)
	monitorServer := monitor.NewServer(monitorAddr, hub)
	go func() {
		if err := monitorServer.Start(); err != nil {
			log.Error("monitor server stopped", "err", err)
		}
	}()

	if err := host.Activate(); err != nil {
		log.Fatal("audio host activate failed", "err", err)
	}
	terminal.Activate()

	log.Info("node running", "name", *name, "address", *address, "mac", macAddress, "monitor", monitorAddr)

	if tap, err := openTunLikeDevice(*name, *address); err != nil {
		log.Warn("no upper-edge TUN device wired up", "err", err)
	} else {
		go pumpTunToTerminal(tap, terminal)
		go pumpTerminalToTun(terminal, tap)
	}

	log.Info("press Enter to shut down")
	bufio.NewReader(os.Stdin).ReadString('\n')

	terminal.Deactivate()
	host.Deactivate()
	os.Exit(0)
}

// macAddressFromCIDR derives a 2-byte MAC address from a CIDR's last two IP
// octets — undocumented by the interface spec beyond "configured at
// construction"; the last two octets are the part of the default address
// that actually varies between nodes on a /24, so they are the natural
// choice here.
func macAddressFromCIDR(cidr string) (mac.MacAddress, error) {
	ip, _, err := net.ParseCIDR(cidr)
	if err != nil {
		return mac.MacAddress{}, err
	}
	ip4 := ip.To4()
	if ip4 == nil {
		ip4 = net.IPv4(0, 0, 11, 45).To4()
	}
	return mac.MacAddress{ip4[2], ip4[3]}, nil
}

// openTunLikeDevice stands in for a real kernel TUN device, which this
// module treats as an external black box: it returns one end of an
// in-process tunio.PipeDevice pair, and nothing is attached to the other end.
func openTunLikeDevice(name, address string) (tunio.Device, error) {
	_ = address
	in, _ := tunio.NewPipeDevice(name)
	return in, nil
}

func pumpTunToTerminal(tap tunio.Device, terminal *mac.Terminal) {
	buf := make([]byte, terminal.ValidPacketBytes())
	broadcast := mac.MacAddress{0xFF, 0xFF}
	for {
		n, err := tap.Read(buf)
		if err != nil {
			return
		}
		terminal.Send(buf[:n], broadcast)
	}
}

func pumpTerminalToTun(terminal *mac.Terminal, tap tunio.Device) {
	for {
		frame := terminal.Recv()
		if _, err := tap.Write(frame.Payload); err != nil {
			return
		}
	}
}
