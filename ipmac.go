package gigevision

//
// IPv4/MAC address and netmask utilities
//

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// isIPv4 reports whether addr is a well-formed dotted-decimal IPv4 address.
func isIPv4(addr string) bool {
	_, err := parseIPv4(addr)
	return err == nil
}

// parseIPv4 parses a dotted-decimal IPv4 address into its four octets.
func parseIPv4(addr string) ([4]byte, error) {
	var out [4]byte
	parts := strings.Split(addr, ".")
	if len(parts) != 4 {
		return out, &InvalidArgumentError{Msg: fmt.Sprintf("not a valid IPv4 address: %q", addr)}
	}
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v > 255 {
			return out, &InvalidArgumentError{Msg: fmt.Sprintf("not a valid IPv4 address: %q", addr)}
		}
		out[i] = byte(v)
	}
	return out, nil
}

// isMAC reports whether addr is a well-formed colon- or dash-separated
// MAC address.
func isMAC(addr string) bool {
	_, err := macToBytes(addr)
	return err == nil
}

// ipToUint32 converts a dotted-decimal IPv4 address to its big-endian
// uint32 representation.
func ipToUint32(addr string) (uint32, error) {
	octets, err := parseIPv4(addr)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(octets[:]), nil
}

// ipToBytes converts a dotted-decimal IPv4 address to a 4-byte buffer.
func ipToBytes(addr string) ([]byte, error) {
	octets, err := parseIPv4(addr)
	if err != nil {
		return nil, err
	}
	return octets[:], nil
}

// bytesToIP converts a 4-byte buffer to a dotted-decimal IPv4 string.
func bytesToIP(b []byte) string {
	return fmt.Sprintf("%d.%d.%d.%d", b[0], b[1], b[2], b[3])
}

// macToBytes converts a colon- or dash-separated MAC address string to a
// 6-byte buffer.
func macToBytes(addr string) ([]byte, error) {
	sep := ":"
	if strings.Contains(addr, "-") {
		sep = "-"
	}
	parts := strings.Split(addr, sep)
	if len(parts) != 6 {
		return nil, &InvalidArgumentError{Msg: fmt.Sprintf("not a valid MAC address: %q", addr)}
	}
	out := make([]byte, 6)
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return nil, &InvalidArgumentError{Msg: fmt.Sprintf("not a valid MAC address: %q", addr)}
		}
		out[i] = byte(v)
	}
	return out, nil
}

// bytesToMAC formats a 6-byte buffer as a canonical colon-separated MAC
// address string.
func bytesToMAC(b []byte) string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}

// bytesToStr decodes a NUL-terminated UTF-8 byte buffer, truncating at
// the first NUL.
func bytesToStr(b []byte) string {
	if idx := indexByte(b, 0x00); idx >= 0 {
		return string(b[:idx])
	}
	return string(b)
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// netmaskToShort converts a dotted-decimal netmask to its CIDR prefix
// length. Assumes a contiguous run of one-bits from the MSB.
func netmaskToShort(netmask string) (int, error) {
	mask, err := ipToUint32(netmask)
	if err != nil {
		return 0, err
	}
	result := 32
	var bit uint32 = 1
	for mask&bit == 0 && result > 0 {
		result--
		bit <<= 1
	}
	return result, nil
}

// shortToNetmask converts a CIDR prefix length (0..32) to a dotted-decimal
// netmask string.
func shortToNetmask(prefix int) (string, error) {
	if prefix < 0 || prefix > 32 {
		return "", &InvalidArgumentError{Msg: fmt.Sprintf("invalid netmask prefix: %d", prefix)}
	}
	var mask uint32
	if prefix > 0 {
		mask = ^uint32(0) << (32 - prefix)
	}
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, mask)
	return bytesToIP(b), nil
}

// isNormalIP reports whether addr/netmask is neither a loopback address
// (127.0.0.0/8) nor the subnet's broadcast address.
func isNormalIP(addr, netmask string) (bool, error) {
	a, err := parseIPv4(addr)
	if err != nil {
		return false, err
	}
	m, err := parseIPv4(netmask)
	if err != nil {
		return false, err
	}
	if a[0] == 127 {
		return false, nil
	}
	if a == ([4]byte{255, 255, 255, 255}) {
		return false, nil
	}
	var invMask, test [4]byte
	for i := 0; i < 4; i++ {
		invMask[i] = ^m[i]
		test[i] = a[i] & invMask[i]
	}
	if test == invMask {
		return false, nil
	}
	return true, nil
}

// sameSubnet reports whether ip and target share the same network under
// netmask.
func sameSubnet(ip, netmask, target string) (bool, error) {
	ipInt, err := ipToUint32(ip)
	if err != nil {
		return false, err
	}
	maskInt, err := ipToUint32(netmask)
	if err != nil {
		return false, err
	}
	targetInt, err := ipToUint32(target)
	if err != nil {
		return false, err
	}
	return ipInt&maskInt == targetInt&maskInt, nil
}
