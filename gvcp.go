package gigevision

//
// GVCP client: request/reply engine, control-channel-privilege ownership,
// and the heartbeat task.
//
// Grounded on the single-connection, mutex-serialized request/reply
// discipline of spec §4.3/§4.6: one UDP socket, one in-flight request at
// a time, a background heartbeat goroutine contending the same mutex.
//

import (
	"context"
	"encoding/binary"
	"net"
	"sync"
	"time"
)

// GVCPClient is a single GVCP connection to one device. It is safe for
// concurrent use: every request/reply round-trip and the background
// heartbeat task serialize on the same mutex, per spec §5.
type GVCPClient struct {
	logger Logger

	ackTimeout       time.Duration
	retries          int
	heartbeatTimeout uint32 // milliseconds

	mu      sync.Mutex
	conn    *net.UDPConn
	state   ConnectionState
	ids     *requestIDAllocator
	cap     capabilityBits
	metrics *Metrics

	heartbeatCancel context.CancelFunc
	heartbeatWG     sync.WaitGroup
}

// GVCPClientOption configures a [GVCPClient] at construction time.
type GVCPClientOption func(*GVCPClient)

// WithAckTimeout overrides the default 500ms acknowledgement timeout.
func WithAckTimeout(d time.Duration) GVCPClientOption {
	return func(c *GVCPClient) { c.ackTimeout = d }
}

// WithRetries overrides the default retry budget of 3.
func WithRetries(n int) GVCPClientOption {
	return func(c *GVCPClient) { c.retries = n }
}

// WithHeartbeatTimeout overrides the default 5000ms heartbeat timeout
// written to the device's HEARTBEAT_TIMEOUT register on connect.
func WithHeartbeatTimeout(ms uint32) GVCPClientOption {
	return func(c *GVCPClient) { c.heartbeatTimeout = ms }
}

// NewGVCPClient constructs a disconnected [GVCPClient].
func NewGVCPClient(logger Logger, opts ...GVCPClientOption) *GVCPClient {
	c := &GVCPClient{
		logger:           logger,
		ackTimeout:       defaultAckTimeout,
		retries:          defaultRetries,
		heartbeatTimeout: defaultHeartbeatTimeout,
		state:            StateDisconnected,
		ids:              newRequestIDAllocator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// roundTrip sends cmdBytes and, when wantAck is true, waits for its
// acknowledgement, retrying on timeout with the same bytes and handling
// PENDING_ACK extensions in between (spec §4.3).
func (c *GVCPClient) roundTrip(cmdBytes []byte, reqID uint16, wantAck bool) (*Ack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil, ErrNotConnected
	}
	if len(cmdBytes) >= 4 {
		c.observeRequest(binary.BigEndian.Uint16(cmdBytes[2:4]))
	}
	if !wantAck {
		_, err := c.conn.Write(cmdBytes)
		return nil, err
	}

	buf := make([]byte, gvcpHeaderSize+gvcpMaxPayload+64)
	timeout := c.ackTimeout
	pending := false

	for attempt := 0; attempt <= c.retries; attempt++ {
		if _, err := c.conn.Write(cmdBytes); err != nil {
			return nil, err
		}
		for {
			c.conn.SetReadDeadline(time.Now().Add(timeout))
			n, err := c.conn.Read(buf)
			if err != nil {
				if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
					break // fall through to the outer retry loop
				}
				return nil, err
			}
			ack, derr := decodeAck(buf[:n])
			if derr != nil {
				return nil, derr
			}
			if ack.AckID != reqID {
				return nil, &AckIdError{ReqID: reqID, AckID: ack.AckID}
			}
			if ack.AckCode == CmdPendingAck {
				ext, perr := PendingTimeout(ack)
				if perr != nil {
					return nil, perr
				}
				timeout = time.Duration(ext)*time.Millisecond + 10*time.Millisecond
				pending = true
				continue
			}
			if pending {
				timeout = c.ackTimeout
				pending = false
			}
			if aerr := ack.asError(); aerr != nil {
				if ackErr, ok := aerr.(*AckError); ok {
					c.observeAckError(ackErr)
				}
				return nil, aerr
			}
			return ack, nil
		}
	}
	return nil, ErrTimeout
}

// writeReg is the internal single-register write used by Connect and
// Disconnect, bypassing the public WriteReg's requireOwning check (which
// rejects the Disconnecting state that Disconnect runs in).
func (c *GVCPClient) writeReg(addr, value uint32, ack bool) error {
	reqID := c.ids.allocate()
	pkt, err := EncodeWriteRegCmd(reqID, []uint32{addr}, []uint32{value}, ack)
	if err != nil {
		return err
	}
	_, err = c.roundTrip(pkt, reqID, ack)
	return err
}

// ReadReg reads 1..135 register addresses and returns their values in
// request order.
func (c *GVCPClient) ReadReg(addrs []uint32) ([]uint32, error) {
	if err := c.requireOwning(); err != nil {
		return nil, err
	}
	if len(addrs) > 1 {
		if err := c.ensureCapability(capConcat); err != nil {
			return nil, err
		}
	}
	reqID := c.ids.allocate()
	pkt, err := EncodeReadRegCmd(reqID, addrs)
	if err != nil {
		return nil, err
	}
	ack, err := c.roundTrip(pkt, reqID, true)
	if err != nil {
		return nil, err
	}
	return ReadRegValues(ack)
}

// WriteReg writes 1..67 (address, value) pairs.
func (c *GVCPClient) WriteReg(addrs, values []uint32, ack bool) error {
	if err := c.requireOwning(); err != nil {
		return err
	}
	if len(addrs) > 1 {
		if err := c.ensureCapability(capConcat); err != nil {
			return err
		}
	}
	reqID := c.ids.allocate()
	pkt, err := EncodeWriteRegCmd(reqID, addrs, values, ack)
	if err != nil {
		return err
	}
	_, err = c.roundTrip(pkt, reqID, ack)
	return err
}

// ReadMem reads count bytes starting at addr.
func (c *GVCPClient) ReadMem(addr uint32, count uint16) ([]byte, error) {
	if err := c.requireOwning(); err != nil {
		return nil, err
	}
	reqID := c.ids.allocate()
	pkt, err := EncodeReadMemCmd(reqID, addr, count)
	if err != nil {
		return nil, err
	}
	ack, err := c.roundTrip(pkt, reqID, true)
	if err != nil {
		return nil, err
	}
	res, err := ParseReadMemAck(ack)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// WriteMem writes value starting at addr.
func (c *GVCPClient) WriteMem(addr uint32, value []byte, ack bool) error {
	if err := c.requireOwning(); err != nil {
		return err
	}
	if err := c.ensureCapability(capWriteMem); err != nil {
		return err
	}
	reqID := c.ids.allocate()
	pkt, err := EncodeWriteMemCmd(reqID, addr, value, ack)
	if err != nil {
		return err
	}
	_, err = c.roundTrip(pkt, reqID, ack)
	return err
}

// Action issues a GVCP ACTION command, optionally scheduled at actTime.
func (c *GVCPClient) Action(deviceKey, groupKey, groupMask uint32, ack bool, actTime *uint64) error {
	if err := c.requireOwning(); err != nil {
		return err
	}
	if err := c.ensureCapability(capAction); err != nil {
		return err
	}
	if actTime != nil {
		if err := c.ensureCapability(capScheduledAction); err != nil {
			return err
		}
	}
	reqID := c.ids.allocate()
	pkt, err := EncodeActionCmd(reqID, deviceKey, groupKey, groupMask, ack, actTime)
	if err != nil {
		return err
	}
	_, err = c.roundTrip(pkt, reqID, ack)
	return err
}

// Discovery sends a DISCOVERY command over the connected socket and
// parses the resulting [DeviceDescriptor]. Useful as a liveness probe
// on an already-open connection; see [System.Discover] for the
// broadcast form used before a connection exists.
func (c *GVCPClient) Discovery() (*DeviceDescriptor, error) {
	if err := c.requireOwning(); err != nil {
		return nil, err
	}
	reqID := c.ids.allocate()
	pkt, err := EncodeDiscoveryCmd(reqID, false)
	if err != nil {
		return nil, err
	}
	ack, err := c.roundTrip(pkt, reqID, true)
	if err != nil {
		return nil, err
	}
	return parseDiscoveryAck(ack)
}
