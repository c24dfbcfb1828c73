package gigevision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCAPDumperWritesNonEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.pcap")
	dumper, err := NewPCAPDumper(path, nullTestLogger{})
	require.NoError(t, err)

	dumper.Capture("192.168.1.10", 3956, "192.168.1.1", 54321, []byte{0x42, 0x01, 0x00, 0x80})
	require.NoError(t, dumper.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPCAPDumperCaptureDropsWhenQueueFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "full.pcap")
	dumper, err := NewPCAPDumper(path, nullTestLogger{})
	require.NoError(t, err)
	defer dumper.Close()

	// Flooding the queue should never block the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			dumper.Capture("10.0.0.1", 1, "10.0.0.2", 2, []byte{0x00})
		}
		close(done)
	}()
	<-done
}
