package gigevision

//
// Control-channel-privilege ownership state machine.
//
// States: Disconnected -> Connecting -> Owning -> Disconnecting ->
// Disconnected (spec §4.6). Grounded on netem's link.go shutdown
// discipline: a context.CancelFunc plus sync.WaitGroup join the
// heartbeat goroutine, the same shape link.go uses for linkForward.
//

import (
	"context"
	"net"
	"time"
)

const (
	defaultAckTimeout       = 500 * time.Millisecond
	defaultRetries          = 3
	defaultHeartbeatTimeout = 5000 // milliseconds
)

// State returns the client's current connection state.
func (c *GVCPClient) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect dials the device at ip:port, claims control channel privilege,
// and starts the heartbeat task (spec §4.6).
func (c *GVCPClient) Connect(ctx context.Context, ip string, port int) error {
	c.mu.Lock()
	if c.state != StateDisconnected {
		c.mu.Unlock()
		return ErrIsConnected
	}
	c.state = StateConnecting
	c.mu.Unlock()

	raddr := &net.UDPAddr{IP: net.ParseIP(ip), Port: port}
	conn, err := net.DialUDP("udp4", nil, raddr)
	if err != nil {
		c.mu.Lock()
		c.state = StateDisconnected
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.ids = newRequestIDAllocator()
	c.cap = capabilityBits{}
	c.mu.Unlock()

	if err := c.writeReg(RegCCP, ValControlAccess, true); err != nil {
		c.teardownLocked()
		return err
	}
	if err := c.writeReg(RegHeartbeatTimeout, c.heartbeatTimeout, true); err != nil {
		c.teardownLocked()
		return err
	}
	vals, err := c.ReadReg([]uint32{RegCCP})
	if err != nil {
		c.teardownLocked()
		return err
	}
	if vals[0] != ValControlAccess {
		c.teardownLocked()
		return ErrNotConnected
	}

	c.mu.Lock()
	c.state = StateOwning
	hbCtx, cancel := context.WithCancel(context.Background())
	c.heartbeatCancel = cancel
	c.heartbeatWG.Add(1)
	c.mu.Unlock()

	go c.heartbeatLoop(hbCtx)

	c.logger.Infof("gigevision: connected to %s:%d, control privilege claimed", ip, port)
	return nil
}

// teardownLocked closes the socket and resets state to Disconnected
// after a failed connect attempt.
func (c *GVCPClient) teardownLocked() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
}

// Disconnect releases control privilege, stops the heartbeat task, and
// closes the socket.
func (c *GVCPClient) Disconnect() error {
	c.mu.Lock()
	if c.state == StateDisconnected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	cancel := c.heartbeatCancel
	c.state = StateDisconnecting
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	// Best-effort release; the heartbeat may have already torn the
	// connection down if it lost control privilege concurrently.
	_ = c.writeReg(RegCCP, 0, true)

	c.heartbeatWG.Wait()

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = StateDisconnected
	c.mu.Unlock()

	c.logger.Info("gigevision: disconnected")
	return nil
}

// heartbeatLoop issues a periodic READREG(CCP) and tears the connection
// down if control privilege is lost (spec §4.3, §7).
func (c *GVCPClient) heartbeatLoop(ctx context.Context) {
	defer c.heartbeatWG.Done()

	period := time.Duration(c.heartbeatTimeout) * time.Millisecond / 3
	if period <= 0 {
		period = time.Second
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			vals, err := c.ReadReg([]uint32{RegCCP})
			if err != nil || vals[0] != ValControlAccess {
				c.logger.Warnf("gigevision: heartbeat lost control privilege: %v", err)
				c.observeHeartbeatFailure()
				c.mu.Lock()
				if c.conn != nil {
					c.conn.Close()
					c.conn = nil
				}
				c.state = StateDisconnected
				c.mu.Unlock()
				return
			}
		}
	}
}

// requireOwning returns [ErrNotConnected] unless the client currently
// holds, or is in the process of claiming, control privilege.
func (c *GVCPClient) requireOwning() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOwning && c.state != StateConnecting {
		return ErrNotConnected
	}
	return nil
}
