package gigevision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGVSPHeader(blockID uint16, format uint8, sequence uint32) []byte {
	out := make([]byte, 0, gvspHeaderSize)
	out = putUint16(out, 0) // status
	out = putUint16(out, blockID)
	packetID := uint32(format)<<24 | (sequence & 0x00ffffff)
	out = putUint32(out, packetID)
	return out
}

func TestDecodeGVSPHeaderSplitsFormatAndSequence(t *testing.T) {
	raw := buildGVSPHeader(42, gvspFormatData, 7)
	h, rest, err := decodeGVSPHeader(raw)
	require.NoError(t, err)
	assert.Equal(t, uint16(42), h.blockID)
	assert.Equal(t, uint8(gvspFormatData), h.format)
	assert.Equal(t, uint32(7), h.sequence)
	assert.Empty(t, rest)
}

func TestDecodeGVSPHeaderRejectsShortPacket(t *testing.T) {
	_, _, err := decodeGVSPHeader([]byte{0, 1, 2})
	require.Error(t, err)
}

func TestParseGVSPLeader(t *testing.T) {
	payload := make([]byte, 0, gvspLeaderPayloadLen)
	payload = putUint16(payload, gvspPayloadTypeImage)
	payload = putUint64(payload, 123456789)
	payload = putUint32(payload, 0x010c0006) // Mono12Packed
	payload = putUint32(payload, 1936)
	payload = putUint32(payload, 1216)
	payload = putUint32(payload, 0)
	payload = putUint32(payload, 0)
	payload = putUint16(payload, 0)
	payload = putUint16(payload, 0)

	info, err := parseGVSPLeader(payload)
	require.NoError(t, err)
	assert.Equal(t, uint32(1936), info.width)
	assert.Equal(t, uint32(1216), info.height)
	assert.Equal(t, uint64(123456789), info.timestamp)
}

func TestPixelFormatBitDepth(t *testing.T) {
	assert.Equal(t, 8, pixelFormatBitDepth(0x01080001))  // Mono8
	assert.Equal(t, 12, pixelFormatBitDepth(0x010c0006)) // Mono12Packed
}

func TestFrameByteSizeMono12Packed(t *testing.T) {
	assert.Equal(t, 1936*1216*12/8, frameByteSize(1936, 1216, 0x010c0006))
}
