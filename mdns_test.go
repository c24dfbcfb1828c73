package gigevision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueryMDNSReturnsErrorWithoutAResponder(t *testing.T) {
	// No real "_gigevision-test._udp.local" responder exists in any test
	// environment, so this must either fail to send or time out empty;
	// either way QueryMDNS reports an error rather than panicking.
	_, err := QueryMDNS("_gigevision-test._udp.local.", 50*time.Millisecond)
	require.Error(t, err)
}
