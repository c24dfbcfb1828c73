package gigevision

//
// GVSP receiver: packet ingestion, frame reassembly, frame dispatch.
//
// Grounded on the dedicated-goroutine, channel-signalled shutdown shape
// used throughout the teacher's forwarding loops (a single owner
// goroutine for the hot-path state, a short-lived lock only around the
// recording queue, per spec §5).
//

import (
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// defaultRecvTimeout bounds each ReadFromUDP call so the ingestion
// goroutine can observe stop requests promptly.
const defaultRecvTimeout = 200 * time.Millisecond

// defaultRecordingQueueLen bounds the recording queue; oldest frames are
// dropped once full.
const defaultRecordingQueueLen = 64

// defaultGVSPRecvBuffer enlarges the GVSP socket's kernel receive buffer
// so bursts of high-rate streaming packets are less likely to be dropped
// before the ingestion goroutine can drain them.
const defaultGVSPRecvBuffer = 4 << 20

// Receiver reassembles one GVSP stream into frames. It owns its assembly
// buffer exclusively on the ingestion goroutine; only the recording
// queue is shared and mutex-protected (spec §5).
type Receiver struct {
	logger Logger

	conn       *net.UDPConn
	callback   FrameCallback
	packetSize int
	metrics    *Metrics

	lossCount atomic.Uint64

	recordingMu    sync.Mutex
	recording      bool
	recordingQueue []*Frame

	stopCh chan struct{}
	doneCh chan struct{}

	// Hot-path state: touched only by the ingestion goroutine.
	buf                 []byte
	assembling          bool
	blockID             uint16
	leader              *gvspLeaderInfo
	received            []bool
	packetStride        int
}

// NewReceiver constructs a closed [Receiver].
func NewReceiver(logger Logger) *Receiver {
	return &Receiver{logger: logger}
}

// OpenStream allocates the assembly buffer, binds a GVSP socket on
// hostIP, and programs the device's GevSCDA/GevSCPHostPort registers to
// point the stream at it (spec §4.4 "open_stream").
func (r *Receiver) OpenStream(client *GVCPClient, hostIP string, payloadSize, packetSize int, cb FrameCallback) error {
	if r.conn != nil {
		return ErrIsConnected
	}
	if payloadSize <= 0 || packetSize <= gvspHeaderSize {
		return &InvalidArgumentError{Msg: "payload size must be positive and packet size must exceed the GVSP header"}
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.ParseIP(hostIP), Port: 0})
	if err != nil {
		return err
	}
	if err := setRecvBuffer(conn, defaultGVSPRecvBuffer); err != nil {
		r.logger.Debugf("gigevision: cannot enlarge gvsp receive buffer: %v", err)
	}

	destIP, err := ipToUint32(hostIP)
	if err != nil {
		conn.Close()
		return err
	}
	localPort := conn.LocalAddr().(*net.UDPAddr).Port

	if err := client.WriteReg([]uint32{RegGevSCDA}, []uint32{destIP}, true); err != nil {
		conn.Close()
		return err
	}
	if err := client.WriteReg([]uint32{RegGevSCPHostPort}, []uint32{uint32(localPort)}, true); err != nil {
		conn.Close()
		return err
	}

	r.conn = conn
	r.callback = cb
	r.packetSize = packetSize
	r.buf = make([]byte, payloadSize)
	r.recordingQueue = nil
	return nil
}

// SetRecording enables or disables appending non-intercepted frames to
// the recording queue.
func (r *Receiver) SetRecording(enabled bool) {
	r.recordingMu.Lock()
	defer r.recordingMu.Unlock()
	r.recording = enabled
}

// DrainRecording returns and clears the accumulated recording queue.
func (r *Receiver) DrainRecording() []*Frame {
	r.recordingMu.Lock()
	defer r.recordingMu.Unlock()
	out := r.recordingQueue
	r.recordingQueue = nil
	return out
}

// LossCount returns the number of frames discarded for missing data
// packets since the stream was opened.
func (r *Receiver) LossCount() uint64 {
	return r.lossCount.Load()
}

// StartReceive spawns the ingestion goroutine, dropping any packet not
// sent from deviceIP (spec §4.4 "start_receive").
func (r *Receiver) StartReceive(deviceIP string) error {
	if r.conn == nil {
		return ErrStreamClosed
	}
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	go r.ingestLoop(deviceIP)
	return nil
}

// StopReceive signals the ingestion goroutine and waits for it to exit,
// leaving the socket and buffer intact.
func (r *Receiver) StopReceive() error {
	if r.conn == nil {
		return ErrStreamClosed
	}
	if r.stopCh == nil {
		return nil
	}
	close(r.stopCh)
	<-r.doneCh
	return nil
}

// CloseStream zeroes the device's destination registers and releases
// the socket and buffer.
func (r *Receiver) CloseStream(client *GVCPClient) error {
	if r.conn == nil {
		return ErrStreamClosed
	}
	_ = client.WriteReg([]uint32{RegGevSCDA}, []uint32{0}, true)
	_ = client.WriteReg([]uint32{RegGevSCPHostPort}, []uint32{0}, true)
	err := r.conn.Close()
	r.conn = nil
	r.buf = nil
	return err
}

func (r *Receiver) ingestLoop(deviceIP string) {
	defer close(r.doneCh)

	buf := make([]byte, r.packetSize)
	for {
		select {
		case <-r.stopCh:
			return
		default:
		}

		r.conn.SetReadDeadline(time.Now().Add(defaultRecvTimeout))
		n, addr, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			r.logger.Warnf("gigevision: gvsp receive error: %v", err)
			continue
		}
		if addr.IP.String() != deviceIP {
			continue
		}
		r.handlePacket(buf[:n])
	}
}

// handlePacket runs exclusively on the ingestion goroutine and
// implements the leader/data/trailer reassembly state machine of
// spec §4.4.
func (r *Receiver) handlePacket(data []byte) {
	hdr, payload, err := decodeGVSPHeader(data)
	if err != nil {
		r.logger.Debugf("gigevision: malformed gvsp packet: %v", err)
		return
	}

	switch hdr.format {
	case gvspFormatLeader:
		if r.assembling && r.blockID != hdr.blockID {
			r.countLoss()
		}
		leader, err := parseGVSPLeader(payload)
		if err != nil {
			r.assembling = false
			r.logger.Debugf("gigevision: malformed gvsp leader: %v", err)
			return
		}
		size := frameByteSize(leader.width, leader.height, leader.pixelFormat)
		if size > len(r.buf) {
			r.buf = make([]byte, size)
		}
		stride := r.packetSize - gvspHeaderSize
		if stride <= 0 {
			stride = 1
		}
		expected := (size + stride - 1) / stride

		r.blockID = hdr.blockID
		r.leader = leader
		r.packetStride = stride
		r.received = make([]bool, expected)
		r.assembling = true

	case gvspFormatData:
		if !r.assembling || hdr.blockID != r.blockID {
			return // older or unrelated block-id: discard, no resend requested
		}
		idx := int(hdr.sequence) - 1
		if idx < 0 || idx >= len(r.received) {
			return
		}
		offset := idx * r.packetStride
		if offset >= len(r.buf) {
			return
		}
		copy(r.buf[offset:], payload)
		r.received[idx] = true

	case gvspFormatTrailer:
		if !r.assembling || hdr.blockID != r.blockID {
			return
		}
		r.assembling = false
		for _, got := range r.received {
			if !got {
				r.countLoss()
				return
			}
		}
		r.deliver()
	}
}

func (r *Receiver) countLoss() {
	r.lossCount.Add(1)
	if r.metrics != nil {
		r.metrics.framesLostTotal.Inc()
	}
}

func (r *Receiver) deliver() {
	size := frameByteSize(r.leader.width, r.leader.height, r.leader.pixelFormat)
	frame := &Frame{
		BlockID:     r.blockID,
		Width:       r.leader.width,
		Height:      r.leader.height,
		BitDepth:    pixelFormatBitDepth(r.leader.pixelFormat),
		PixelFormat: r.leader.pixelFormat,
		Timestamp:   time.Duration(r.leader.timestamp),
		Data:        r.buf[:size],
	}

	if r.metrics != nil {
		r.metrics.framesDeliveredTotal.Inc()
	}

	intercept := false
	if r.callback != nil {
		intercept = r.callback(frame)
	}
	if intercept {
		return
	}

	r.recordingMu.Lock()
	defer r.recordingMu.Unlock()
	if !r.recording {
		return
	}
	stored := &Frame{
		BlockID: frame.BlockID, Width: frame.Width, Height: frame.Height,
		BitDepth: frame.BitDepth, PixelFormat: frame.PixelFormat, Timestamp: frame.Timestamp,
		Data: append([]byte(nil), frame.Data...),
	}
	r.recordingQueue = append(r.recordingQueue, stored)
	if len(r.recordingQueue) > defaultRecordingQueueLen {
		r.recordingQueue = r.recordingQueue[len(r.recordingQueue)-defaultRecordingQueueLen:]
	}
}
