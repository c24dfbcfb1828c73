package gigevision

//
// Data model
//

import (
	"fmt"
	"time"
)

// Logger is the logger used throughout this package.
type Logger interface {
	// Debugf formats and emits a debug message.
	Debugf(format string, v ...any)

	// Debug emits a debug message.
	Debug(message string)

	// Infof formats and emits an informational message.
	Infof(format string, v ...any)

	// Info emits an informational message.
	Info(message string)

	// Warnf formats and emits a warning message.
	Warnf(format string, v ...any)

	// Warn emits a warning message.
	Warn(message string)
}

// HostInterface is a host network interface bound to one or more IPv4
// addresses, discovered by [System.UpdateInterfaceList].
type HostInterface struct {
	// Name is the OS interface name (e.g. "eth0").
	Name string

	// Addrs is the ordered list of bound IPv4 addresses on this interface.
	Addrs []HostAddr
}

// HostAddr is an IPv4 address bound to a [HostInterface], with its netmask.
type HostAddr struct {
	// IP is the dotted-decimal IPv4 address (e.g. "169.254.0.1").
	IP string

	// Netmask is the dotted-decimal IPv4 netmask (e.g. "255.255.0.0").
	Netmask string
}

// DeviceDescriptor describes a device found via GVCP DISCOVERY. It is
// immutable once constructed by [parseDiscoveryAck].
type DeviceDescriptor struct {
	// MACAddress is the canonical colon-separated MAC address, e.g.
	// "12:34:56:78:9a:bc".
	MACAddress string

	// SpecVersionMajor and SpecVersionMinor are the device's claimed
	// GigE Vision specification version.
	SpecVersionMajor uint16
	SpecVersionMinor uint16

	// Endianness, DeviceClass, LinkConfig, Charset decode the device-mode
	// bitfield (see spec §4.1 DISCOVERY ACK payload).
	Endianness  uint8
	DeviceClass uint8
	LinkConfig  uint8
	Charset     uint8

	// IPConfigOptions and IPConfigCurrent are the device's supported and
	// active IP configuration bitmaps.
	IPConfigOptions uint32
	IPConfigCurrent uint32

	// CurrentIP, CurrentNetmask, DefaultGateway are dotted-decimal IPv4
	// strings.
	CurrentIP      string
	CurrentNetmask string
	DefaultGateway string

	// Manufacturer, Model, Version, ManufacturerSpecific, SerialNumber,
	// UserDefinedName are the NUL-terminated text fields of the DISCOVERY
	// ACK payload, decoded up to the first NUL.
	Manufacturer         string
	Model                string
	Version              string
	ManufacturerSpecific string
	SerialNumber         string
	UserDefinedName      string

	// Raw is the verbatim DISCOVERY ACK payload.
	Raw []byte
}

// String implements fmt.Stringer.
func (d *DeviceDescriptor) String() string {
	return fmt.Sprintf(
		"%s (%s/%s, ip=%s, serial=%s)",
		d.MACAddress, d.Manufacturer, d.Model, d.CurrentIP, d.SerialNumber,
	)
}

// ConnectionState is the lifecycle state of a [GVCPClient].
type ConnectionState int

const (
	// StateDisconnected is the initial and final state.
	StateDisconnected = ConnectionState(iota)

	// StateConnecting means a connect attempt is in progress.
	StateConnecting

	// StateOwning means control privilege has been claimed and the
	// heartbeat task is running.
	StateOwning

	// StateDisconnecting means disconnect has been requested and the
	// heartbeat task is being torn down.
	StateDisconnecting
)

// String implements fmt.Stringer.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOwning:
		return "owning"
	case StateDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// Frame is a reassembled GVSP frame delivered to a [FrameCallback]. The
// buffer is borrowed: it is only valid for the duration of the callback
// and is recycled immediately afterwards.
type Frame struct {
	// BlockID is the 16-bit GVSP block-id this frame was assembled from.
	BlockID uint16

	// Width and Height are the frame dimensions in pixels.
	Width, Height uint32

	// BitDepth is the declared per-sample bit depth (8..16).
	BitDepth int

	// PixelFormat is the GVSP leader's pixel format code.
	PixelFormat uint32

	// Timestamp is the device timestamp carried by the leader packet.
	Timestamp time.Duration

	// Data is the row-major pixel buffer. Do not retain a reference to
	// this slice past the callback's return.
	Data []byte
}

// FrameCallback is invoked once per successfully reassembled frame, on the
// [Receiver]'s packet-ingestion goroutine. It must not block on GVCP
// operations that would deadlock the connection mutex. It returns
// "intercept": when false, the receiver also appends the frame to its
// recording queue if recording is enabled.
type FrameCallback func(frame *Frame) (intercept bool)
