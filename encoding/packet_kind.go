package encoding

import "io"

// Packet is implemented by every decoded/constructed control packet, v5
// and v3.1.1 alike, so callers above this package (the connection engine)
// can hand any of them to a single Send-like entry point.
type Packet interface {
	Encode(w io.Writer) error
	PacketType() PacketType
}

func (p *ConnectPacket) PacketType() PacketType     { return p.FixedHeader.Type }
func (p *ConnackPacket) PacketType() PacketType     { return p.FixedHeader.Type }
func (p *PublishPacket) PacketType() PacketType     { return p.FixedHeader.Type }
func (p *PubackPacket) PacketType() PacketType      { return p.FixedHeader.Type }
func (p *PubrecPacket) PacketType() PacketType      { return p.FixedHeader.Type }
func (p *PubrelPacket) PacketType() PacketType      { return p.FixedHeader.Type }
func (p *PubcompPacket) PacketType() PacketType     { return p.FixedHeader.Type }
func (p *SubscribePacket) PacketType() PacketType   { return p.FixedHeader.Type }
func (p *SubackPacket) PacketType() PacketType      { return p.FixedHeader.Type }
func (p *UnsubscribePacket) PacketType() PacketType { return p.FixedHeader.Type }
func (p *UnsubackPacket) PacketType() PacketType    { return p.FixedHeader.Type }
func (p *PingreqPacket) PacketType() PacketType     { return p.FixedHeader.Type }
func (p *PingrespPacket) PacketType() PacketType    { return p.FixedHeader.Type }
func (p *DisconnectPacket) PacketType() PacketType  { return p.FixedHeader.Type }
func (p *AuthPacket) PacketType() PacketType        { return p.FixedHeader.Type }

func (p *ConnectPacket311) PacketType() PacketType     { return p.FixedHeader.Type }
func (p *ConnackPacket311) PacketType() PacketType     { return p.FixedHeader.Type }
func (p *PublishPacket311) PacketType() PacketType     { return p.FixedHeader.Type }
func (p *PubackPacket311) PacketType() PacketType      { return p.FixedHeader.Type }
func (p *PubrecPacket311) PacketType() PacketType      { return p.FixedHeader.Type }
func (p *PubrelPacket311) PacketType() PacketType      { return p.FixedHeader.Type }
func (p *PubcompPacket311) PacketType() PacketType     { return p.FixedHeader.Type }
func (p *SubscribePacket311) PacketType() PacketType   { return p.FixedHeader.Type }
func (p *SubackPacket311) PacketType() PacketType      { return p.FixedHeader.Type }
func (p *UnsubscribePacket311) PacketType() PacketType { return p.FixedHeader.Type }
func (p *UnsubackPacket311) PacketType() PacketType    { return p.FixedHeader.Type }
func (p *DisconnectPacket311) PacketType() PacketType  { return p.FixedHeader.Type }
