package conn

import "github.com/axmq/mqttcore/encoding"

// packetIDOf extracts the packet id carried by pkt, if any.
func packetIDOf(pkt encoding.Packet) (id uint16, ok bool) {
	switch p := pkt.(type) {
	case *encoding.PublishPacket:
		if p.FixedHeader.QoS != encoding.QoS0 {
			return p.PacketID, true
		}
		return 0, false
	case *encoding.PublishPacket311:
		if p.FixedHeader.QoS != encoding.QoS0 {
			return p.PacketID, true
		}
		return 0, false
	case *encoding.PubackPacket:
		return p.PacketID, true
	case *encoding.PubackPacket311:
		return p.PacketID, true
	case *encoding.PubrecPacket:
		return p.PacketID, true
	case *encoding.PubrecPacket311:
		return p.PacketID, true
	case *encoding.PubrelPacket:
		return p.PacketID, true
	case *encoding.PubrelPacket311:
		return p.PacketID, true
	case *encoding.PubcompPacket:
		return p.PacketID, true
	case *encoding.PubcompPacket311:
		return p.PacketID, true
	case *encoding.SubscribePacket:
		return p.PacketID, true
	case *encoding.SubscribePacket311:
		return p.PacketID, true
	case *encoding.SubackPacket:
		return p.PacketID, true
	case *encoding.SubackPacket311:
		return p.PacketID, true
	case *encoding.UnsubscribePacket:
		return p.PacketID, true
	case *encoding.UnsubscribePacket311:
		return p.PacketID, true
	case *encoding.UnsubackPacket:
		return p.PacketID, true
	case *encoding.UnsubackPacket311:
		return p.PacketID, true
	default:
		return 0, false
	}
}

// storeEligible reports whether pt must be persisted to the inflight
// store when sent, per spec.md §4.6 ("for stored-eligible packets,
// PUBLISH QoS>=1 and PUBREL, insert into store").
func storeEligible(pkt encoding.Packet) bool {
	switch p := pkt.(type) {
	case *encoding.PublishPacket:
		return p.FixedHeader.QoS != encoding.QoS0
	case *encoding.PublishPacket311:
		return p.FixedHeader.QoS != encoding.QoS0
	case *encoding.PubrelPacket, *encoding.PubrelPacket311:
		return true
	default:
		return false
	}
}

func setPublishDup(pkt encoding.Packet) {
	switch p := pkt.(type) {
	case *encoding.PublishPacket:
		p.FixedHeader.DUP = true
		p.FixedHeader.Flags |= 0x08
	case *encoding.PublishPacket311:
		p.FixedHeader.DUP = true
		p.FixedHeader.Flags |= 0x08
	}
}
