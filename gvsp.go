package gigevision

//
// GVSP wire codec: packet header and leader/trailer payload parsing
//

import (
	"encoding/binary"
)

// GVSP packet formats, carried in the top byte of the 32-bit packet-id
// field (spec §4.4, glossary "Packet-id").
const (
	gvspFormatLeader  = 1
	gvspFormatTrailer = 2
	gvspFormatData    = 3
)

// gvspHeaderSize is the size in bytes of the common GVSP packet header.
const gvspHeaderSize = 8

// GVSP leader payload-type values.
const gvspPayloadTypeImage = 0x0001

// gvspPacketHeader is the decoded 8-byte header shared by every GVSP
// packet: 2-byte status, 2-byte block-id, 4-byte packet-id (format in
// the top byte, sequence in the low 24 bits).
type gvspPacketHeader struct {
	status   uint16
	blockID  uint16
	format   uint8
	sequence uint32
}

// decodeGVSPHeader parses the common 8-byte GVSP header.
func decodeGVSPHeader(data []byte) (gvspPacketHeader, []byte, error) {
	if len(data) < gvspHeaderSize {
		return gvspPacketHeader{}, nil, &AckLengthError{
			Msg:      "GVSP packet shorter than the common header",
			Expected: gvspHeaderSize,
			Actual:   len(data),
		}
	}
	packetID := binary.BigEndian.Uint32(data[4:8])
	h := gvspPacketHeader{
		status:   binary.BigEndian.Uint16(data[0:2]),
		blockID:  binary.BigEndian.Uint16(data[2:4]),
		format:   uint8(packetID >> 24),
		sequence: packetID & 0x00ffffff,
	}
	return h, data[gvspHeaderSize:], nil
}

// gvspLeaderInfo is the parsed payload of a leader packet.
type gvspLeaderInfo struct {
	payloadType uint16
	timestamp   uint64
	pixelFormat uint32
	width       uint32
	height      uint32
	xOffset     uint32
	yOffset     uint32
	paddingX    uint16
	paddingY    uint16
}

// gvspLeaderPayloadLen is the fixed byte length of an image leader
// payload following the common GVSP header.
const gvspLeaderPayloadLen = 34

// parseGVSPLeader parses a leader packet's payload.
func parseGVSPLeader(payload []byte) (*gvspLeaderInfo, error) {
	if len(payload) < gvspLeaderPayloadLen {
		return nil, &AckLengthError{
			Msg:      "GVSP leader payload too short",
			Expected: gvspLeaderPayloadLen,
			Actual:   len(payload),
		}
	}
	return &gvspLeaderInfo{
		payloadType: binary.BigEndian.Uint16(payload[0:2]),
		timestamp:   binary.BigEndian.Uint64(payload[2:10]),
		pixelFormat: binary.BigEndian.Uint32(payload[10:14]),
		width:       binary.BigEndian.Uint32(payload[14:18]),
		height:      binary.BigEndian.Uint32(payload[18:22]),
		xOffset:     binary.BigEndian.Uint32(payload[22:26]),
		yOffset:     binary.BigEndian.Uint32(payload[26:30]),
		paddingX:    binary.BigEndian.Uint16(payload[30:32]),
		paddingY:    binary.BigEndian.Uint16(payload[32:34]),
	}, nil
}

// pixelFormatBitDepth extracts the effective bits-per-pixel from a PFNC
// pixel format code: bits 23..16 carry the sample's effective bit count
// (e.g. Mono8=0x01080001 -> 8, Mono12Packed=0x010c0006 -> 12).
func pixelFormatBitDepth(format uint32) int {
	return int((format >> 16) & 0xff)
}

// frameByteSize computes the row-major buffer size for a frame of the
// given dimensions and pixel format.
func frameByteSize(width, height uint32, pixelFormat uint32) int {
	bits := pixelFormatBitDepth(pixelFormat)
	return int(width) * int(height) * bits / 8
}
