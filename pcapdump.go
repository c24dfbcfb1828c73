package gigevision

//
// Optional PCAP capture of GVCP/GVSP traffic.
//
// Grounded on the background-goroutine-plus-bounded-channel shape of
// the teacher's PCAP dumper: capture never blocks the hot path, and
// entries are dropped rather than applying backpressure.
//

import (
	"context"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// PCAPDumper records GVCP/GVSP datagrams into a PCAP file for offline
// inspection. Since this package talks UDP sockets directly rather than
// owning a link layer, each captured packet is synthesized as a minimal
// IPv4+UDP datagram carrying the real payload bytes.
type PCAPDumper struct {
	cancel    context.CancelFunc
	closeOnce sync.Once
	joined    chan any
	logger    Logger
	pich      chan *pcapEntry
}

type pcapEntry struct {
	srcIP, dstIP     string
	srcPort, dstPort int
	payload          []byte
}

// NewPCAPDumper creates filename and starts the background writer
// goroutine. Call Close to flush and release the file.
func NewPCAPDumper(filename string, logger Logger) (*PCAPDumper, error) {
	filep, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	const manyPackets = 4096
	pd := &PCAPDumper{
		cancel: cancel,
		joined: make(chan any),
		logger: logger,
		pich:   make(chan *pcapEntry, manyPackets),
	}
	go pd.loop(ctx, filep)
	return pd, nil
}

// Capture enqueues one datagram for writing; it never blocks, dropping
// the entry when the internal queue is full.
func (pd *PCAPDumper) Capture(srcIP string, srcPort int, dstIP string, dstPort int, payload []byte) {
	entry := &pcapEntry{
		srcIP: srcIP, srcPort: srcPort,
		dstIP: dstIP, dstPort: dstPort,
		payload: append([]byte(nil), payload...),
	}
	select {
	case pd.pich <- entry:
	default:
		pd.logger.Debugf("gigevision: pcap queue full, dropping capture entry")
	}
}

func (pd *PCAPDumper) loop(ctx context.Context, filep *os.File) {
	defer close(pd.joined)
	defer filep.Close()

	w := pcapgo.NewWriter(filep)
	const snapLen = 65535
	if err := w.WriteFileHeader(snapLen, layers.LinkTypeIPv4); err != nil {
		pd.logger.Warnf("gigevision: pcap file header: %v", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case entry := <-pd.pich:
					pd.writeEntry(w, entry)
				default:
					return
				}
			}
		case entry := <-pd.pich:
			pd.writeEntry(w, entry)
		}
	}
}

func (pd *PCAPDumper) writeEntry(w *pcapgo.Writer, entry *pcapEntry) {
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.ParseIP(entry.srcIP).To4(),
		DstIP:    net.ParseIP(entry.dstIP).To4(),
	}
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(entry.srcPort),
		DstPort: layers.UDPPort(entry.dstPort),
	}
	udp.SetNetworkLayerForChecksum(ip)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ip, udp, gopacket.Payload(entry.payload)); err != nil {
		pd.logger.Warnf("gigevision: pcap serialize: %v", err)
		return
	}

	ci := gopacket.CaptureInfo{
		Timestamp:     time.Now(),
		CaptureLength: len(buf.Bytes()),
		Length:        len(buf.Bytes()),
	}
	if err := w.WritePacket(ci, buf.Bytes()); err != nil {
		pd.logger.Warnf("gigevision: pcap write packet: %v", err)
	}
}

// Close stops the background writer and flushes the file.
func (pd *PCAPDumper) Close() error {
	pd.closeOnce.Do(func() {
		pd.cancel()
		<-pd.joined
	})
	return nil
}
