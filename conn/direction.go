package conn

import "github.com/axmq/mqttcore/encoding"

// clientToServer reports whether pt is sent by a client (and so received
// by a server).
func clientToServer(pt encoding.PacketType) bool {
	switch pt {
	case encoding.CONNECT, encoding.PUBLISH, encoding.PUBACK, encoding.PUBREC,
		encoding.PUBREL, encoding.PUBCOMP, encoding.SUBSCRIBE, encoding.UNSUBSCRIBE,
		encoding.PINGREQ, encoding.DISCONNECT, encoding.AUTH:
		return true
	default:
		return false
	}
}

// serverToClient reports whether pt is sent by a server (and so received
// by a client).
func serverToClient(pt encoding.PacketType) bool {
	switch pt {
	case encoding.CONNACK, encoding.PUBLISH, encoding.PUBACK, encoding.PUBREC,
		encoding.PUBREL, encoding.PUBCOMP, encoding.SUBACK, encoding.UNSUBACK,
		encoding.PINGRESP, encoding.DISCONNECT, encoding.AUTH:
		return true
	default:
		return false
	}
}

func roleAllowsSend(role Role, pt encoding.PacketType) bool {
	switch role {
	case RoleClient:
		return clientToServer(pt)
	case RoleServer:
		return serverToClient(pt)
	default:
		return true
	}
}

func roleAllowsRecv(role Role, pt encoding.PacketType) bool {
	switch role {
	case RoleClient:
		return serverToClient(pt)
	case RoleServer:
		return clientToServer(pt)
	default:
		return true
	}
}

// statusAllowsSend checks the status preconditions from spec.md §4.6.
func statusAllowsSend(status Status, pt encoding.PacketType) bool {
	switch pt {
	case encoding.CONNECT:
		return status == StatusDisconnected
	case encoding.CONNACK:
		return status == StatusConnecting
	case encoding.DISCONNECT:
		return status == StatusConnected || status == StatusConnecting
	default:
		return status == StatusConnected
	}
}

// locallyOwnedID reports whether pt carries a packet id this engine
// itself allocated (via AcquireUniquePacketID/RegisterPacketID) rather
// than one it is merely echoing back from an inbound request. Only
// locally-owned ids are checked against the packet-id manager and
// released back on a failed write; SUBSCRIBE/UNSUBSCRIBE always
// originate the exchange, and PUBREL always belongs to whichever side
// sent the original QoS2 PUBLISH. PUBLISH itself is handled separately
// in send.go since it has additional flow-control preconditions.
func locallyOwnedID(pt encoding.PacketType) bool {
	switch pt {
	case encoding.SUBSCRIBE, encoding.UNSUBSCRIBE, encoding.PUBREL:
		return true
	default:
		return false
	}
}

// statusAllowsRecv checks the status preconditions for the inbound path.
func statusAllowsRecv(status Status, pt encoding.PacketType) bool {
	switch pt {
	case encoding.CONNECT:
		return status == StatusDisconnected || status == StatusConnecting
	case encoding.CONNACK:
		return status == StatusConnecting
	case encoding.DISCONNECT:
		return status == StatusConnected || status == StatusConnecting
	default:
		return status == StatusConnected
	}
}
