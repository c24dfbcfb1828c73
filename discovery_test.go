package gigevision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDiscoveryAckPayload(t *testing.T) []byte {
	p := make([]byte, discoveryAckPayloadLen)
	binaryPutUint16(p[0:2], 1)
	binaryPutUint16(p[2:4], 2)
	deviceMode := uint32(1)<<31 | uint32(DevModeClassReceiver)<<28 | uint32(DevModeLinkSingle)<<24 | uint32(DevModeCharsetUTF8)
	binaryPutUint32(p[4:8], deviceMode)
	mac, err := macToBytes("00:11:22:33:44:55")
	require.NoError(t, err)
	copy(p[10:16], mac)
	copy(p[36:40], []byte{192, 168, 1, 50})
	copy(p[52:56], []byte{255, 255, 255, 0})
	copy(p[68:72], []byte{192, 168, 1, 1})
	copy(p[72:104], []byte("Acme Vision"))
	copy(p[104:136], []byte("ModelX"))
	copy(p[136:168], []byte("1.0.0"))
	copy(p[216:232], []byte("SN12345"))
	copy(p[232:248], []byte("cam-01"))
	return p
}

func binaryPutUint16(b []byte, v uint16) { b[0] = byte(v >> 8); b[1] = byte(v) }
func binaryPutUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func TestParseDiscoveryAck(t *testing.T) {
	payload := buildDiscoveryAckPayload(t)
	ack := &Ack{AckCode: CmdDiscoveryAck, Length: uint16(len(payload)), Payload: payload}

	d, err := parseDiscoveryAck(ack)
	require.NoError(t, err)
	assert.Equal(t, "00:11:22:33:44:55", d.MACAddress)
	assert.Equal(t, "192.168.1.50", d.CurrentIP)
	assert.Equal(t, "255.255.255.0", d.CurrentNetmask)
	assert.Equal(t, "192.168.1.1", d.DefaultGateway)
	assert.Equal(t, "Acme Vision", d.Manufacturer)
	assert.Equal(t, "ModelX", d.Model)
	assert.Equal(t, "1.0.0", d.Version)
	assert.Equal(t, "SN12345", d.SerialNumber)
	assert.Equal(t, "cam-01", d.UserDefinedName)
	assert.Equal(t, uint8(DevModeBigEndian), d.Endianness)
	assert.Equal(t, uint8(DevModeClassReceiver), d.DeviceClass)
	assert.Equal(t, "Receiver", FormatDeviceClass(d.DeviceClass))
}

func TestParseDiscoveryAckRejectsWrongLength(t *testing.T) {
	ack := &Ack{AckCode: CmdDiscoveryAck, Length: 4, Payload: make([]byte, 4)}
	_, err := parseDiscoveryAck(ack)
	require.Error(t, err)
}

func TestParseDiscoveryAckRejectsWrongAckCode(t *testing.T) {
	payload := buildDiscoveryAckPayload(t)
	ack := &Ack{AckCode: CmdReadRegAck, Length: uint16(len(payload)), Payload: payload}
	_, err := parseDiscoveryAck(ack)
	require.Error(t, err)
}

func TestEncodeDiscoveryCmdMatchesScenarioOneWireBytes(t *testing.T) {
	pkt, err := EncodeDiscoveryCmd(1, false)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x42, 0x01, 0x00, 0x02, 0x00, 0x00, 0x00, 0x01}, pkt)
}
