// Command gvstream connects to a device, opens a GVSP stream, acquires a
// fixed number of frames, and reports delivery and loss counts.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/apex/log"
	logcli "github.com/apex/log/handlers/cli"

	"github.com/bassosimone/gigevision"
)

// apexLogger adapts apex/log onto [gigevision.Logger].
type apexLogger struct{}

func (apexLogger) Debug(message string)          { log.Debug(message) }
func (apexLogger) Debugf(format string, v ...any) { log.Debugf(format, v...) }
func (apexLogger) Info(message string)           { log.Info(message) }
func (apexLogger) Infof(format string, v ...any)  { log.Infof(format, v...) }
func (apexLogger) Warn(message string)           { log.Warn(message) }
func (apexLogger) Warnf(format string, v ...any)  { log.Warnf(format, v...) }

var _ gigevision.Logger = apexLogger{}

func main() {
	deviceIP := flag.String("device", "", "device IPv4 address (required)")
	hostIP := flag.String("host", "", "host IPv4 address to bind the stream to (required)")
	frames := flag.Int("frames", 10, "number of frames to acquire before exiting")
	payloadSize := flag.Int("payload-size", 4 << 20, "assembly buffer size in bytes")
	packetSize := flag.Int("packet-size", 1500, "GVSP packet size in bytes")
	pcapFile := flag.String("pcap", "", "optional .pcap file to dump each delivered frame's payload to")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	log.SetHandler(logcli.Default)
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if *deviceIP == "" || *hostIP == "" {
		log.Fatal("gvstream: -device and -host are required")
	}

	logger := apexLogger{}

	var dumper *gigevision.PCAPDumper
	if *pcapFile != "" {
		dumper = gigevision.Must1(gigevision.NewPCAPDumper(*pcapFile, logger))
		defer dumper.Close()
	}

	client := gigevision.NewGVCPClient(logger)
	gigevision.Must0(client.Connect(context.Background(), *deviceIP, gigevision.GVCPPort))
	defer client.Disconnect()

	received := make(chan *gigevision.Frame, 1)
	cb := func(frame *gigevision.Frame) (intercept bool) {
		if dumper != nil {
			dumper.Capture(*deviceIP, 0, *hostIP, 0, frame.Data)
		}
		select {
		case received <- frame:
		default:
		}
		return false
	}

	receiver := gigevision.NewReceiver(logger)
	gigevision.Must0(receiver.OpenStream(client, *hostIP, *payloadSize, *packetSize, cb))
	defer receiver.CloseStream(client)

	gigevision.Must0(receiver.StartReceive(*deviceIP))
	defer receiver.StopReceive()

	count := 0
	deadline := time.After(30 * time.Second)
	for count < *frames {
		select {
		case frame := <-received:
			count++
			fmt.Printf("frame %d: block=%d %dx%d %d bytes\n",
				count, frame.BlockID, frame.Width, frame.Height, len(frame.Data))
		case <-deadline:
			log.Warnf("gvstream: timed out after %d/%d frames", count, *frames)
			fmt.Printf("frames lost: %d\n", receiver.LossCount())
			return
		}
	}
	fmt.Printf("frames lost: %d\n", receiver.LossCount())
}
