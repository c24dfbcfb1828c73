package gigevision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeReadRegRoundtrip(t *testing.T) {
	pkt, err := EncodeReadRegCmd(7, []uint32{0x00000a00, 0x00000938})
	require.NoError(t, err)
	require.Equal(t, byte(gvcpKey), pkt[0])
	require.Equal(t, CmdReadReg, int(uint16(pkt[2])<<8|uint16(pkt[3])))

	// Build a matching READREG_ACK and check ReadRegValues recovers the
	// original order.
	ackPayload := make([]byte, 0, 8)
	ackPayload = putUint32(ackPayload, 0x00000002)
	ackPayload = putUint32(ackPayload, 0x00001388)
	ack := &Ack{AckCode: CmdReadRegAck, Length: uint16(len(ackPayload)), Payload: ackPayload}

	values, err := ReadRegValues(ack)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0x00000002, 0x00001388}, values)
}

func TestEncodeReadRegCmdRejectsUnalignedAddress(t *testing.T) {
	_, err := EncodeReadRegCmd(1, []uint32{0x00000a01})
	require.Error(t, err)
	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
}

func TestEncodeCommandRejectsZeroRequestID(t *testing.T) {
	_, err := EncodeReadRegCmd(0, []uint32{0x00000a00})
	require.Error(t, err)
}

func TestDecodeAckRejectsShortPacket(t *testing.T) {
	_, err := decodeAck([]byte{0x00, 0x00, 0x00})
	require.Error(t, err)
	var lenErr *AckLengthError
	require.ErrorAs(t, err, &lenErr)
}

func TestDecodeAckRejectsLengthMismatch(t *testing.T) {
	raw := make([]byte, 0, gvcpHeaderSize)
	raw = append(raw, 0x00, 0x00)
	raw = putUint16(raw, CmdReadRegAck)
	raw = putUint16(raw, 8) // claims 8 bytes of payload
	raw = putUint16(raw, 1)
	_, err := decodeAck(raw) // no payload actually follows
	require.Error(t, err)
}

func TestAckSeverityBecomesAckError(t *testing.T) {
	raw := make([]byte, 0, gvcpHeaderSize)
	raw = append(raw, 0x80, 0x00) // severity bit set
	raw = putUint16(raw, CmdReadRegAck)
	raw = putUint16(raw, 0)
	raw = putUint16(raw, 9)
	ack, err := decodeAck(raw)
	require.NoError(t, err)
	assert.True(t, ack.Severity)

	aerr := ack.asError()
	require.Error(t, aerr)
	var ackErr *AckError
	require.ErrorAs(t, aerr, &ackErr)
	assert.Equal(t, StatusSuccess, int(ackErr.StatusCode))
}

func TestPendingTimeoutExtractsMilliseconds(t *testing.T) {
	payload := make([]byte, 0, 4)
	payload = append(payload, 0, 0)
	payload = putUint16(payload, 1500)
	ack := &Ack{AckCode: CmdPendingAck, Payload: payload}
	ms, err := PendingTimeout(ack)
	require.NoError(t, err)
	assert.Equal(t, uint16(1500), ms)
}

func TestFloat32RoundTrip(t *testing.T) {
	v := float32(123.456)
	assert.InDelta(t, v, rawUintToFloat32(float32ToRawUint(v)), 0.001)
}

func TestEncodeWriteRegCmdRejectsMismatchedSlices(t *testing.T) {
	_, err := EncodeWriteRegCmd(1, []uint32{0x00000a00, 0x00000938}, []uint32{1}, true)
	require.Error(t, err)
}

func TestEncodeActionCmdSetsScheduledFlag(t *testing.T) {
	at := uint64(1_000_000)
	pkt, err := EncodeActionCmd(1, 1, 1, 0xffffffff, true, &at)
	require.NoError(t, err)
	assert.Equal(t, byte(0x08), pkt[1]>>4)
	assert.Equal(t, byte(0x01), pkt[1]&0x01)
}
