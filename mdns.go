package gigevision

//
// Best-effort mDNS secondary discovery.
//
// Some GigE Vision devices additionally announce themselves over mDNS.
// This is a convenience supplement to GVCP DISCOVERY, not a replacement:
// callers should treat its results as hints to cross-check against a
// DISCOVERY ack, never as authoritative device descriptors.
//

import (
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

const mdnsAddr = "224.0.0.251:5353"

// MDNSHint is one answer observed while probing for a GigE Vision
// service advertisement over mDNS.
type MDNSHint struct {
	Name string
	IP   string
}

// QueryMDNS sends one mDNS PTR query for service and collects A/AAAA
// answers until timeout elapses. Failures are non-fatal: an error here
// only means the hint is unavailable, GVCP DISCOVERY remains the
// authoritative path.
func QueryMDNS(service string, timeout time.Duration) ([]MDNSHint, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	raddr, err := net.ResolveUDPAddr("udp4", mdnsAddr)
	if err != nil {
		return nil, err
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(service), dns.TypePTR)
	msg.RecursionDesired = false

	packed, err := msg.Pack()
	if err != nil {
		return nil, err
	}
	if _, err := conn.WriteToUDP(packed, raddr); err != nil {
		return nil, err
	}

	var hints []MDNSHint
	deadline := time.Now().Add(timeout)
	buf := make([]byte, 4096)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		conn.SetReadDeadline(time.Now().Add(remaining))
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			break
		}
		reply := new(dns.Msg)
		if err := reply.Unpack(buf[:n]); err != nil {
			continue
		}
		for _, rr := range append(reply.Answer, reply.Extra...) {
			switch rec := rr.(type) {
			case *dns.A:
				hints = append(hints, MDNSHint{Name: rec.Hdr.Name, IP: rec.A.String()})
			case *dns.AAAA:
				hints = append(hints, MDNSHint{Name: rec.Hdr.Name, IP: rec.AAAA.String()})
			}
		}
	}
	if len(hints) == 0 {
		return nil, fmt.Errorf("gigevision: no mdns responses for %s within %s", service, timeout)
	}
	return hints, nil
}
