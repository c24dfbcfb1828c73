package gigevision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemUpdateInterfaceListPopulatesFromHost(t *testing.T) {
	sys := NewSystem(nullTestLogger{})
	defer sys.Close()

	err := sys.UpdateInterfaceList()
	require.NoError(t, err)

	for _, iface := range sys.Interfaces() {
		view := iface.HostInterface()
		assert.Equal(t, iface.Name, view.Name)
		for _, addr := range view.Addrs {
			assert.NotEmpty(t, addr.IP)
			assert.NotEmpty(t, addr.Netmask)
		}
	}
}

func TestSystemDiscoverWithNoInterfacesReturnsEmpty(t *testing.T) {
	sys := NewSystem(nullTestLogger{})
	defer sys.Close()
	// No interfaces enumerated: Discover degenerates to an empty result
	// rather than erroring, since there is nothing to broadcast on.
	matches, err := sys.Discover(0, "", "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSystemCloseReleasesInterfaces(t *testing.T) {
	sys := NewSystem(nullTestLogger{})
	require.NoError(t, sys.UpdateInterfaceList())
	require.NoError(t, sys.Close())
	assert.Empty(t, sys.Interfaces())
}

func TestInterfaceUpdateDeviceListWithNoAddrsReturnsEmpty(t *testing.T) {
	iface := &Interface{logger: nullTestLogger{}, Name: "stub"}
	found, err := iface.UpdateDeviceList(newRequestIDAllocator(), 0)
	require.NoError(t, err)
	assert.Empty(t, found)
}
