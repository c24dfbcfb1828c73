package gigevision

//
// DISCOVERY ACK payload parsing
//

import (
	"encoding/binary"
)

// discoveryAckPayloadLen is the fixed length of a DISCOVERY ACK payload
// (spec §4.1).
const discoveryAckPayloadLen = 248

// parseDiscoveryAck parses a DISCOVERY_ACK into a [DeviceDescriptor].
func parseDiscoveryAck(a *Ack) (*DeviceDescriptor, error) {
	if err := requireAckCode(a, CmdDiscoveryAck, discoveryAckPayloadLen); err != nil {
		return nil, err
	}
	if int(a.Length) != discoveryAckPayloadLen {
		return nil, &AckLengthError{
			Msg:      "length of the received packet is wrong",
			Expected: discoveryAckPayloadLen,
			Actual:   int(a.Length),
		}
	}
	p := a.Payload

	deviceMode := binary.BigEndian.Uint32(p[4:8])

	d := &DeviceDescriptor{
		SpecVersionMajor: binary.BigEndian.Uint16(p[0:2]),
		SpecVersionMinor: binary.BigEndian.Uint16(p[2:4]),
		Endianness:       uint8((deviceMode & 0x80000000) >> 31),
		DeviceClass:      uint8((deviceMode & 0x70000000) >> 28),
		LinkConfig:       uint8((deviceMode & 0x0F000000) >> 24),
		Charset:          uint8(deviceMode & 0xFF),
		MACAddress:       bytesToMAC(p[10:16]),
		IPConfigOptions:  binary.BigEndian.Uint32(p[16:20]),
		IPConfigCurrent:  binary.BigEndian.Uint32(p[20:24]),
		CurrentIP:        bytesToIP(p[36:40]),
		CurrentNetmask:   bytesToIP(p[52:56]),
		DefaultGateway:   bytesToIP(p[68:72]),

		Manufacturer:         bytesToStr(p[72:104]),
		Model:                bytesToStr(p[104:136]),
		Version:              bytesToStr(p[136:168]),
		ManufacturerSpecific: bytesToStr(p[168:216]),
		SerialNumber:         bytesToStr(p[216:232]),
		UserDefinedName:      bytesToStr(p[232:248]),

		Raw: append([]byte(nil), p...),
	}
	return d, nil
}

// Device mode bitfield values (spec §4.1).
const (
	DevModeLittleEndian = 0
	DevModeBigEndian     = 1

	DevModeClassTransmitter = 0
	DevModeClassReceiver    = 1
	DevModeClassTransceiver = 2
	DevModeClassPeripheral  = 3

	DevModeLinkSingle      = 0
	DevModeLinkMulti       = 1
	DevModeLinkStaticLAG   = 2
	DevModeLinkDynamicLAG  = 3

	DevModeCharsetReserved = 0
	DevModeCharsetUTF8     = 1
	DevModeCharsetASCII    = 2
)

// FormatDeviceClass returns a human-readable device-class name.
func FormatDeviceClass(class uint8) string {
	switch class {
	case DevModeClassTransmitter:
		return "Transmitter"
	case DevModeClassReceiver:
		return "Receiver"
	case DevModeClassTransceiver:
		return "Transceiver"
	case DevModeClassPeripheral:
		return "Peripheral"
	default:
		return "Unknown"
	}
}
