// Package tunio defines the upper-edge interface a MAC terminal reads
// Ethernet frames from and writes received frames back to. The operating
// system's actual TUN/TAP device is treated as an external black box,
// reachable only through this interface — opening a real kernel device needs
// a platform-specific ioctl path no library in this module's dependency set
// provides, and the terminal only ever needs the io.ReadWriteCloser shape
// below, not the device itself.
package tunio

import "io"

// Device is an Ethernet-layer byte-stream endpoint: a terminal forwards raw
// Reads into Send and Recv results into Writes.
type Device interface {
	io.ReadWriteCloser
	// Name reports the interface name the device was configured with.
	Name() string
}

// PipeDevice is an in-process Device backed by an io.Pipe, useful for tests
// and for any deployment that wants to drive a Terminal without a real
// network interface (e.g. bridging to another in-process component).
type PipeDevice struct {
	name string
	r    *io.PipeReader
	w    *io.PipeWriter
}

// NewPipeDevice returns a connected pair backed by two pipes: bytes written
// to either device can be read from the other one, in both directions.
func NewPipeDevice(name string) (in *PipeDevice, out *PipeDevice) {
	r1, w1 := io.Pipe()
	r2, w2 := io.Pipe()
	return &PipeDevice{name: name, r: r1, w: w2}, &PipeDevice{name: name, r: r2, w: w1}
}

func (d *PipeDevice) Name() string                     { return d.name }
func (d *PipeDevice) Read(p []byte) (int, error)       { return d.r.Read(p) }
func (d *PipeDevice) Write(p []byte) (int, error)      { return d.w.Write(p) }
func (d *PipeDevice) Close() error {
	d.r.Close()
	return d.w.Close()
}
