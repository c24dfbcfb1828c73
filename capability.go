package gigevision

//
// Optional-feature capability cache
//

// capabilityFlag names one of the optional bits of the GVCP_CAPABILITY
// register (spec §4.3).
type capabilityFlag int

const (
	capConcat capabilityFlag = iota
	capWriteMem
	capAction
	capScheduledAction
)

// capabilityBits is the cached, parsed content of the GVCP_CAPABILITY
// register. A zero value means "not yet probed".
type capabilityBits struct {
	loaded bool
	raw    uint32
}

// has reports whether flag's bit is set in the cached register value.
func (b capabilityBits) has(flag capabilityFlag) bool {
	switch flag {
	case capConcat:
		return b.raw&(1<<0) != 0
	case capWriteMem:
		return b.raw&(1<<1) != 0
	case capAction:
		return b.raw&(1<<6) != 0
	case capScheduledAction:
		return b.raw&(1<<17) != 0
	default:
		return false
	}
}

// ensureCapability probes GVCP_CAPABILITY on first use and caches the
// result; it returns [ErrNotImplemented] when flag's bit is unset.
func (c *GVCPClient) ensureCapability(flag capabilityFlag) error {
	c.mu.Lock()
	loaded := c.cap.loaded
	c.mu.Unlock()

	if !loaded {
		reqID := c.ids.allocate()
		pkt, err := EncodeReadRegCmd(reqID, []uint32{RegGVCPCapability})
		if err != nil {
			return err
		}
		ack, err := c.roundTrip(pkt, reqID, true)
		if err != nil {
			return err
		}
		vals, err := ReadRegValues(ack)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.cap = capabilityBits{loaded: true, raw: vals[0]}
		c.mu.Unlock()
	}

	c.mu.Lock()
	ok := c.cap.has(flag)
	c.mu.Unlock()
	if !ok {
		return ErrNotImplemented
	}
	return nil
}
