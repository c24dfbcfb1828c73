package gigevision

//
// Interface/device enumeration layer, modelled loosely on GenICam GenTL's
// system/interface/device hierarchy (spec §4.5).
//

import (
	"net"
	"sort"
	"sync"
	"time"
)

const defaultDiscoverTimeout = 500 * time.Millisecond

// Interface is one host network interface bound to one or more IPv4
// addresses, each with its own broadcast-capable discovery socket.
type Interface struct {
	logger Logger

	// Name is the OS interface name.
	Name string

	// Addrs is the ordered, non-loopback, non-broadcast-equal IPv4
	// addresses bound to this interface.
	Addrs []HostAddr

	conns map[string]*net.UDPConn // keyed by local IP
}

// HostInterface returns the public, socket-free view of this interface.
func (i *Interface) HostInterface() HostInterface {
	return HostInterface{Name: i.Name, Addrs: append([]HostAddr(nil), i.Addrs...)}
}

// Close releases every per-address discovery socket.
func (i *Interface) Close() error {
	var first error
	for _, conn := range i.conns {
		if err := conn.Close(); err != nil && first == nil {
			first = err
		}
	}
	i.conns = nil
	return first
}

// UpdateDeviceList broadcasts DISCOVERY on every bound address and
// collects acks until timeout, keyed by MAC address (spec §4.5).
func (i *Interface) UpdateDeviceList(ids *requestIDAllocator, timeout time.Duration) ([]*DeviceDescriptor, error) {
	if timeout <= 0 {
		timeout = defaultDiscoverTimeout
	}
	found := make(map[string]*DeviceDescriptor)

	for _, addr := range i.Addrs {
		conn, ok := i.conns[addr.IP]
		if !ok {
			continue
		}
		reqID := ids.allocate()
		// ack_bcast stays false: this host binds a unicast discovery
		// socket and cannot receive a broadcast acknowledgement (spec §8
		// scenario 1; gentl.py's update_device_list default).
		pkt, err := EncodeDiscoveryCmd(reqID, false)
		if err != nil {
			return nil, err
		}
		broadcast := &net.UDPAddr{IP: net.IPv4bcast, Port: GVCPPort}
		if _, err := conn.WriteToUDP(pkt, broadcast); err != nil {
			i.logger.Warnf("gigevision: discovery broadcast on %s failed: %v", addr.IP, err)
			continue
		}

		deadline := time.Now().Add(timeout)
		buf := make([]byte, 2048)
		for {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				break
			}
			conn.SetReadDeadline(time.Now().Add(remaining))
			n, _, err := conn.ReadFromUDP(buf)
			if err != nil {
				break // timeout (or any other receive error) ends this address's collection
			}
			ack, err := decodeAck(buf[:n])
			if err != nil || ack.AckCode != CmdDiscoveryAck || ack.AckID != reqID {
				continue
			}
			d, err := parseDiscoveryAck(ack)
			if err != nil {
				continue
			}
			found[d.MACAddress] = d
		}
	}

	out := make([]*DeviceDescriptor, 0, len(found))
	for _, d := range found {
		out = append(out, d)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].MACAddress < out[b].MACAddress })
	return out, nil
}

// System enumerates host network interfaces and their discovered
// devices. It corresponds to a GenTL "system" object.
type System struct {
	logger Logger

	mu         sync.Mutex
	interfaces []*Interface
	ids        *requestIDAllocator
}

// NewSystem constructs an empty [System].
func NewSystem(logger Logger) *System {
	return &System{logger: logger, ids: newRequestIDAllocator()}
}

// Interfaces returns the currently enumerated interfaces.
func (s *System) Interfaces() []*Interface {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Interface(nil), s.interfaces...)
}

// Close releases every interface's sockets.
func (s *System) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first error
	for _, iface := range s.interfaces {
		if err := iface.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.interfaces = nil
	return first
}

// UpdateInterfaceList re-enumerates host NICs in the "up" state, binding
// one broadcast-capable discovery socket per eligible IPv4 address
// (spec §4.2). Any previously held sockets are released first.
func (s *System) UpdateInterfaceList() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, iface := range s.interfaces {
		iface.Close()
	}
	s.interfaces = nil

	nics, err := net.Interfaces()
	if err != nil {
		return err
	}
	for _, nic := range nics {
		if nic.Flags&net.FlagUp == 0 || nic.Flags&net.FlagBroadcast == 0 {
			continue
		}
		addrs, err := nic.Addrs()
		if err != nil {
			continue
		}

		iface := &Interface{logger: s.logger, Name: nic.Name, conns: make(map[string]*net.UDPConn)}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok || ipNet.IP.To4() == nil {
				continue
			}
			ip := ipNet.IP.To4().String()
			mask := net.IP(ipNet.Mask).String()
			if ok, err := isNormalIP(ip, mask); err != nil || !ok {
				continue
			}

			conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.ParseIP(ip), Port: GVCPPort})
			if err != nil {
				s.logger.Debugf("gigevision: cannot bind %s:%d: %v", ip, GVCPPort, err)
				continue
			}
			if err := setBroadcast(conn); err != nil {
				s.logger.Debugf("gigevision: cannot enable broadcast on %s: %v", ip, err)
			}

			iface.Addrs = append(iface.Addrs, HostAddr{IP: ip, Netmask: mask})
			iface.conns[ip] = conn
		}
		if len(iface.Addrs) > 0 {
			s.interfaces = append(s.interfaces, iface)
		}
	}
	return nil
}

// Discover walks every interface's device list and returns devices whose
// Manufacturer and Model match exactly; an empty vendor or model is a
// wildcard for that dimension, so Discover(timeout, "", "") returns every
// device found. Per spec §9 the interactive disambiguation of the
// original is replaced by simply returning every match; the caller
// decides among multiple results.
func (s *System) Discover(timeout time.Duration, vendor, model string) ([]*DeviceDescriptor, error) {
	s.mu.Lock()
	interfaces := append([]*Interface(nil), s.interfaces...)
	ids := s.ids
	s.mu.Unlock()

	var matches []*DeviceDescriptor
	for _, iface := range interfaces {
		devices, err := iface.UpdateDeviceList(ids, timeout)
		if err != nil {
			return nil, err
		}
		for _, d := range devices {
			if (vendor == "" || d.Manufacturer == vendor) && (model == "" || d.Model == model) {
				matches = append(matches, d)
			}
		}
	}
	return matches, nil
}

// ForceIP selects, among all bound addresses, the one sharing a subnet
// with target (unless force is set or target is 0.0.0.0, in which case
// the first address is used), and broadcasts a FORCEIP command (spec §4.5).
//
// ackBcast follows gvcp_forceip's own resolution: nil takes the
// original's per-path default (false when reconfiguring via 0.0.0.0 or
// matching an existing subnet, true when force is set); a non-nil value
// always overrides the default.
func (s *System) ForceIP(mac, target, netmask, gateway string, force, ack bool, ackBcast *bool, timeout time.Duration) error {
	s.mu.Lock()
	interfaces := append([]*Interface(nil), s.interfaces...)
	ids := s.ids
	s.mu.Unlock()

	var conn *net.UDPConn
	for _, iface := range interfaces {
		for _, addr := range iface.Addrs {
			if !force && target != "0.0.0.0" {
				same, err := sameSubnet(addr.IP, addr.Netmask, target)
				if err != nil || !same {
					continue
				}
			}
			conn = iface.conns[addr.IP]
			break
		}
		if conn != nil {
			break
		}
	}
	if conn == nil {
		return &InvalidArgumentError{Msg: "no local interface shares a subnet with the target address"}
	}

	// Reconfiguration (target == 0.0.0.0) and subnet-matched paths both
	// default to false; only the forced path defaults to true.
	resolvedAckBcast := force
	if ackBcast != nil {
		resolvedAckBcast = *ackBcast
	}

	reqID := ids.allocate()
	pkt, err := EncodeForceIPCmd(reqID, mac, target, netmask, gateway, resolvedAckBcast, ack)
	if err != nil {
		return err
	}
	broadcast := &net.UDPAddr{IP: net.IPv4bcast, Port: GVCPPort}
	if _, err := conn.WriteToUDP(pkt, broadcast); err != nil {
		return err
	}
	if !ack {
		return nil
	}

	conn.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, gvcpHeaderSize+gvcpMaxPayload+64)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			return ErrTimeout
		}
		reply, err := decodeAck(buf[:n])
		if err != nil || reply.AckID != reqID {
			continue
		}
		return reply.asError()
	}
}
