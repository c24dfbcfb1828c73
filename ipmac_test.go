package gigevision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPToUint32(t *testing.T) {
	v, err := ipToUint32("192.168.1.10")
	require.NoError(t, err)
	assert.Equal(t, uint32(0xc0a8010a), v)
}

func TestParseIPv4RejectsGarbage(t *testing.T) {
	_, err := parseIPv4("not-an-ip")
	require.Error(t, err)

	_, err = parseIPv4("256.0.0.1")
	require.Error(t, err)
}

func TestMACRoundTrip(t *testing.T) {
	b, err := macToBytes("AA:BB:CC:00:11:22")
	require.NoError(t, err)
	assert.Equal(t, "aa:bb:cc:00:11:22", bytesToMAC(b))
}

func TestMACAcceptsDashSeparator(t *testing.T) {
	_, err := macToBytes("aa-bb-cc-dd-ee-ff")
	require.NoError(t, err)
}

func TestNetmaskShortRoundTrip(t *testing.T) {
	for _, prefix := range []int{0, 1, 8, 16, 24, 30, 32} {
		mask, err := shortToNetmask(prefix)
		require.NoError(t, err)
		got, err := netmaskToShort(mask)
		require.NoError(t, err)
		assert.Equal(t, prefix, got)
	}
}

func TestIsNormalIPRejectsLoopbackAndBroadcast(t *testing.T) {
	ok, err := isNormalIP("127.0.0.1", "255.0.0.0")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = isNormalIP("255.255.255.255", "255.255.255.0")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = isNormalIP("192.168.1.10", "255.255.255.0")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSameSubnet(t *testing.T) {
	ok, err := sameSubnet("192.168.1.10", "255.255.255.0", "192.168.1.200")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = sameSubnet("192.168.1.10", "255.255.255.0", "10.0.0.5")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBytesToStrTruncatesAtNUL(t *testing.T) {
	b := append([]byte("hello"), 0x00, 'x', 'x')
	assert.Equal(t, "hello", bytesToStr(b))
}
