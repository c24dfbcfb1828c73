// Package gigevision is a host-side implementation of the GigE Vision
// control and streaming protocols: enough to discover, configure, and
// acquire image data from a compliant camera attached via Ethernet.
//
// Two protocol layers do the heavy lifting. GVCP (GigE Vision Control
// Protocol) is a request/acknowledgement protocol over UDP/3956 used for
// device discovery, register and memory access, and heartbeat-maintained
// control ownership; see [GVCPClient]. GVSP (GigE Vision Streaming
// Protocol) is a one-way UDP stream of fragmented image frames that the
// [Receiver] reassembles, tolerating out-of-order delivery and packet
// loss.
//
// On top of these sits a thin device/interface enumeration layer,
// modelled loosely on GenICam GenTL's system/interface/device objects:
// use [System] to enumerate host network interfaces, broadcast
// discovery, and select a device by vendor and model.
//
// A typical session: enumerate interfaces with [System.UpdateInterfaceList],
// find a camera with [System.Discover], dial it with a [GVCPClient] and
// [GVCPClient.Connect] (which claims control privilege and starts the
// heartbeat task), open a [Receiver] with [Receiver.OpenStream], register
// a [FrameCallback], and start acquisition by writing the camera's
// AcquisitionStart register through [GVCPClient.WriteReg].
//
// This package intentionally stops at the raw register read/write
// surface: parsing a device's XML/ZIP feature description into a
// named node map is left to a downstream layer (see
// [GVCPClient.GetDeviceDescriptionFile] for the raw bytes).
package gigevision
