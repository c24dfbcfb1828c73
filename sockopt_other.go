//go:build !unix

package gigevision

import "net"

// setBroadcast is a no-op outside unix: net.ListenUDP sockets on Windows
// accept broadcast datagrams without SO_BROADCAST.
func setBroadcast(conn *net.UDPConn) error {
	return nil
}

// setRecvBuffer is a no-op outside unix.
func setRecvBuffer(conn *net.UDPConn, bytes int) error {
	return nil
}
