package gigevision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nullTestLogger struct{}

func (nullTestLogger) Debug(string)          {}
func (nullTestLogger) Debugf(string, ...any) {}
func (nullTestLogger) Info(string)           {}
func (nullTestLogger) Infof(string, ...any)  {}
func (nullTestLogger) Warn(string)           {}
func (nullTestLogger) Warnf(string, ...any)  {}

var _ Logger = nullTestLogger{}

// buildLeaderPacket returns an 8-byte GVSP header plus a 34-byte leader
// payload describing a width x height Mono8 image.
func buildLeaderPacket(blockID uint16, width, height uint32) []byte {
	pkt := buildGVSPHeader(blockID, gvspFormatLeader, 0)
	payload := make([]byte, 0, gvspLeaderPayloadLen)
	payload = putUint16(payload, gvspPayloadTypeImage)
	payload = putUint64(payload, 0)
	payload = putUint32(payload, 0x01080001) // Mono8
	payload = putUint32(payload, width)
	payload = putUint32(payload, height)
	payload = putUint32(payload, 0)
	payload = putUint32(payload, 0)
	payload = putUint16(payload, 0)
	payload = putUint16(payload, 0)
	return append(pkt, payload...)
}

func buildDataPacket(blockID uint16, sequence uint32, payload []byte) []byte {
	pkt := buildGVSPHeader(blockID, gvspFormatData, sequence)
	return append(pkt, payload...)
}

func buildTrailerPacket(blockID uint16) []byte {
	return buildGVSPHeader(blockID, gvspFormatTrailer, 0)
}

func newTestReceiver(packetSize int) *Receiver {
	r := NewReceiver(nullTestLogger{})
	r.buf = make([]byte, 16)
	r.packetSize = packetSize
	return r
}

func TestReceiverReassemblesOutOfOrderPackets(t *testing.T) {
	r := newTestReceiver(10) // stride = 10 - 8 = 2 bytes of payload per packet

	var delivered *Frame
	r.callback = func(f *Frame) bool {
		delivered = f
		return false
	}

	r.handlePacket(buildLeaderPacket(1, 4, 1)) // 4 bytes total -> 2 data packets
	r.handlePacket(buildDataPacket(1, 2, []byte{0xcc, 0xdd}))
	r.handlePacket(buildDataPacket(1, 1, []byte{0xaa, 0xbb}))
	r.handlePacket(buildTrailerPacket(1))

	require.NotNil(t, delivered)
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc, 0xdd}, delivered.Data)
	assert.Equal(t, uint64(0), r.LossCount())
}

func TestReceiverCountsLossOnMissingDataPacket(t *testing.T) {
	r := newTestReceiver(10)

	called := false
	r.callback = func(f *Frame) bool {
		called = true
		return false
	}

	r.handlePacket(buildLeaderPacket(1, 4, 1))
	r.handlePacket(buildDataPacket(1, 1, []byte{0xaa, 0xbb}))
	// sequence 2 never arrives
	r.handlePacket(buildTrailerPacket(1))

	assert.False(t, called)
	assert.Equal(t, uint64(1), r.LossCount())
}

func TestReceiverCountsLossOnBlockIDSwitchMidAssembly(t *testing.T) {
	r := newTestReceiver(10)

	r.handlePacket(buildLeaderPacket(1, 4, 1))
	r.handlePacket(buildDataPacket(1, 1, []byte{0xaa, 0xbb}))
	// a new block starts before block 1's trailer arrives
	r.handlePacket(buildLeaderPacket(2, 4, 1))

	assert.Equal(t, uint64(1), r.LossCount())
}

func TestReceiverRecordingQueueCapturesNonInterceptedFrames(t *testing.T) {
	r := newTestReceiver(10)
	r.callback = func(f *Frame) bool { return false }
	r.SetRecording(true)

	r.handlePacket(buildLeaderPacket(1, 4, 1))
	r.handlePacket(buildDataPacket(1, 1, []byte{0xaa, 0xbb}))
	r.handlePacket(buildDataPacket(1, 2, []byte{0xcc, 0xdd}))
	r.handlePacket(buildTrailerPacket(1))

	queued := r.DrainRecording()
	require.Len(t, queued, 1)
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc, 0xdd}, queued[0].Data)
	assert.Empty(t, r.DrainRecording())
}

func TestReceiverInterceptedFrameSkipsRecordingQueue(t *testing.T) {
	r := newTestReceiver(10)
	r.callback = func(f *Frame) bool { return true }
	r.SetRecording(true)

	r.handlePacket(buildLeaderPacket(1, 4, 1))
	r.handlePacket(buildDataPacket(1, 1, []byte{0xaa, 0xbb}))
	r.handlePacket(buildDataPacket(1, 2, []byte{0xcc, 0xdd}))
	r.handlePacket(buildTrailerPacket(1))

	assert.Empty(t, r.DrainRecording())
}
