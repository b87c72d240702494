package encoding

// This file provides validating constructors ("New*") for MQTT 5.0 packet
// types, complementing the Parse* family (which validates wire bytes) with
// validation of in-memory field values supplied by a caller building a
// packet to send. Both paths funnel through the same ValidateX helpers in
// validation.go so the rules stay in one place.

// NewConnectPacket builds and validates a v5 CONNECT packet.
func NewConnectPacket(clientID string, cleanStart bool, keepAlive uint16, props Properties) (*ConnectPacket, error) {
	if err := ValidateUTF8String([]byte(clientID)); err != nil && clientID != "" {
		return nil, err
	}
	if err := props.ValidateLocation(LocationConnect); err != nil {
		return nil, err
	}
	pkt := &ConnectPacket{
		FixedHeader:     FixedHeader{Type: CONNECT, RemainingLength: 0},
		ProtocolName:    DefaultProtocolName,
		ProtocolVersion: ProtocolVersion50,
		CleanStart:      cleanStart,
		KeepAlive:       keepAlive,
		ClientID:        clientID,
		Properties:      props,
	}
	return pkt, nil
}

// SetWill attaches a will message to an already-constructed CONNECT packet,
// validating the Will QoS/flag invariants from the MQTT specification.
func (p *ConnectPacket) SetWill(topic string, payload []byte, qos QoS, retain bool, props Properties) error {
	if err := ValidateTopicName(topic); err != nil {
		return err
	}
	if !qos.IsValid() {
		return ErrInvalidWillQoS
	}
	if err := props.ValidateLocation(LocationWill); err != nil {
		return err
	}
	p.WillFlag = true
	p.WillQoS = qos
	p.WillRetain = retain
	p.WillTopic = topic
	p.WillPayload = payload
	p.WillProperties = props
	return nil
}

// NewConnackPacket builds and validates a v5 CONNACK packet.
func NewConnackPacket(sessionPresent bool, reasonCode ReasonCode, props Properties) (*ConnackPacket, error) {
	if err := ValidateReasonCodeForPacket(CONNACK, reasonCode); err != nil {
		return nil, err
	}
	if err := props.ValidateLocation(LocationConnack); err != nil {
		return nil, err
	}
	return &ConnackPacket{
		FixedHeader:    FixedHeader{Type: CONNACK},
		SessionPresent: sessionPresent,
		ReasonCode:     reasonCode,
		Properties:     props,
	}, nil
}

// NewPublishPacket builds and validates a v5 PUBLISH packet. packetID must
// be 0 for QoS0 and non-zero for QoS1/2; topicName may be empty only when
// props carries a Topic Alias.
func NewPublishPacket(topicName string, payload []byte, qos QoS, retain bool, dup bool, packetID uint16, props Properties) (*PublishPacket, error) {
	if !qos.IsValid() {
		return nil, ErrInvalidQoS
	}
	if topicName != "" {
		if err := ValidateTopicName(topicName); err != nil {
			return nil, err
		}
	} else if props.GetProperty(PropTopicAlias) == nil {
		return nil, ErrTopicAliasInvalid
	}
	if qos == QoS0 {
		if packetID != 0 {
			return nil, ErrInvalidPacketID
		}
	} else {
		if packetID == 0 {
			return nil, ErrMissingPacketID
		}
	}
	if err := props.ValidateLocation(LocationPublish); err != nil {
		return nil, err
	}
	flags := byte(qos) << 1
	if dup {
		flags |= 0x08
	}
	if retain {
		flags |= 0x01
	}
	return &PublishPacket{
		FixedHeader: FixedHeader{Type: PUBLISH, Flags: flags, DUP: dup, QoS: qos, Retain: retain},
		TopicName:   topicName,
		PacketID:    packetID,
		Properties:  props,
		Payload:     payload,
	}, nil
}

func newAckPacket(packetType PacketType, packetID uint16, reasonCode ReasonCode, loc Location, props Properties) error {
	if packetID == 0 {
		return ErrInvalidPacketIDZero
	}
	if err := ValidateReasonCodeForPacket(packetType, reasonCode); err != nil {
		return err
	}
	return props.ValidateLocation(loc)
}

// NewPubackPacket builds and validates a v5 PUBACK packet.
func NewPubackPacket(packetID uint16, reasonCode ReasonCode, props Properties) (*PubackPacket, error) {
	if err := newAckPacket(PUBACK, packetID, reasonCode, LocationPuback, props); err != nil {
		return nil, err
	}
	return &PubackPacket{FixedHeader: FixedHeader{Type: PUBACK}, PacketID: packetID, ReasonCode: reasonCode, Properties: props}, nil
}

// NewPubrecPacket builds and validates a v5 PUBREC packet.
func NewPubrecPacket(packetID uint16, reasonCode ReasonCode, props Properties) (*PubrecPacket, error) {
	if err := newAckPacket(PUBREC, packetID, reasonCode, LocationPubrec, props); err != nil {
		return nil, err
	}
	return &PubrecPacket{FixedHeader: FixedHeader{Type: PUBREC}, PacketID: packetID, ReasonCode: reasonCode, Properties: props}, nil
}

// NewPubrelPacket builds and validates a v5 PUBREL packet.
func NewPubrelPacket(packetID uint16, reasonCode ReasonCode, props Properties) (*PubrelPacket, error) {
	if err := newAckPacket(PUBREL, packetID, reasonCode, LocationPubrel, props); err != nil {
		return nil, err
	}
	return &PubrelPacket{FixedHeader: FixedHeader{Type: PUBREL, Flags: 0x02}, PacketID: packetID, ReasonCode: reasonCode, Properties: props}, nil
}

// NewPubcompPacket builds and validates a v5 PUBCOMP packet.
func NewPubcompPacket(packetID uint16, reasonCode ReasonCode, props Properties) (*PubcompPacket, error) {
	if err := newAckPacket(PUBCOMP, packetID, reasonCode, LocationPubcomp, props); err != nil {
		return nil, err
	}
	return &PubcompPacket{FixedHeader: FixedHeader{Type: PUBCOMP}, PacketID: packetID, ReasonCode: reasonCode, Properties: props}, nil
}

// NewSubscribePacket builds and validates a v5 SUBSCRIBE packet. At least
// one subscription is required.
func NewSubscribePacket(packetID uint16, subs []Subscription, props Properties) (*SubscribePacket, error) {
	if packetID == 0 {
		return nil, ErrInvalidPacketIDZero
	}
	if len(subs) == 0 {
		return nil, ErrEmptySubscriptionList
	}
	for i := range subs {
		if err := ValidateTopicFilter(subs[i].TopicFilter); err != nil {
			return nil, err
		}
		if !subs[i].QoS.IsValid() {
			return nil, ErrInvalidSubscriptionOpts
		}
		if subs[i].RetainHandling > 2 {
			return nil, ErrInvalidSubscriptionOpts
		}
		if subs[i].NoLocal && isSharedTopicFilter(subs[i].TopicFilter) {
			return nil, ErrInvalidSubscriptionOpts
		}
	}
	if err := props.ValidateLocation(LocationSubscribe); err != nil {
		return nil, err
	}
	return &SubscribePacket{
		FixedHeader:   FixedHeader{Type: SUBSCRIBE, Flags: 0x02},
		PacketID:      packetID,
		Properties:    props,
		Subscriptions: subs,
	}, nil
}

// isSharedTopicFilter reports whether filter begins with the "$share/"
// shared-subscription prefix.
func isSharedTopicFilter(filter string) bool {
	const prefix = "$share/"
	return len(filter) >= len(prefix) && filter[:len(prefix)] == prefix
}

// NewSubackPacket builds a v5 SUBACK packet.
func NewSubackPacket(packetID uint16, reasonCodes []ReasonCode, props Properties) (*SubackPacket, error) {
	if packetID == 0 {
		return nil, ErrInvalidPacketIDZero
	}
	for _, rc := range reasonCodes {
		if err := ValidateReasonCodeForPacket(SUBACK, rc); err != nil {
			return nil, err
		}
	}
	if err := props.ValidateLocation(LocationSuback); err != nil {
		return nil, err
	}
	return &SubackPacket{FixedHeader: FixedHeader{Type: SUBACK}, PacketID: packetID, Properties: props, ReasonCodes: reasonCodes}, nil
}

// NewUnsubscribePacket builds and validates a v5 UNSUBSCRIBE packet. At
// least one topic filter is required.
func NewUnsubscribePacket(packetID uint16, filters []string, props Properties) (*UnsubscribePacket, error) {
	if packetID == 0 {
		return nil, ErrInvalidPacketIDZero
	}
	if len(filters) == 0 {
		return nil, ErrEmptyUnsubscribeList
	}
	for _, f := range filters {
		if err := ValidateTopicFilter(f); err != nil {
			return nil, err
		}
	}
	if err := props.ValidateLocation(LocationUnsubscribe); err != nil {
		return nil, err
	}
	return &UnsubscribePacket{
		FixedHeader:  FixedHeader{Type: UNSUBSCRIBE, Flags: 0x02},
		PacketID:     packetID,
		Properties:   props,
		TopicFilters: filters,
	}, nil
}

// NewUnsubackPacket builds a v5 UNSUBACK packet.
func NewUnsubackPacket(packetID uint16, reasonCodes []ReasonCode, props Properties) (*UnsubackPacket, error) {
	if packetID == 0 {
		return nil, ErrInvalidPacketIDZero
	}
	for _, rc := range reasonCodes {
		if err := ValidateReasonCodeForPacket(UNSUBACK, rc); err != nil {
			return nil, err
		}
	}
	if err := props.ValidateLocation(LocationUnsuback); err != nil {
		return nil, err
	}
	return &UnsubackPacket{FixedHeader: FixedHeader{Type: UNSUBACK}, PacketID: packetID, Properties: props, ReasonCodes: reasonCodes}, nil
}

// NewPingreqPacket builds a PINGREQ packet (identical wire form in v3.1.1
// and v5).
func NewPingreqPacket() *PingreqPacket {
	return &PingreqPacket{FixedHeader: FixedHeader{Type: PINGREQ}}
}

// NewPingrespPacket builds a PINGRESP packet (identical wire form in v3.1.1
// and v5).
func NewPingrespPacket() *PingrespPacket {
	return &PingrespPacket{FixedHeader: FixedHeader{Type: PINGRESP}}
}

// NewDisconnectPacket builds and validates a v5 DISCONNECT packet.
func NewDisconnectPacket(reasonCode ReasonCode, props Properties) (*DisconnectPacket, error) {
	if err := ValidateReasonCodeForPacket(DISCONNECT, reasonCode); err != nil {
		return nil, err
	}
	if err := props.ValidateLocation(LocationDisconnect); err != nil {
		return nil, err
	}
	return &DisconnectPacket{FixedHeader: FixedHeader{Type: DISCONNECT}, ReasonCode: reasonCode, Properties: props}, nil
}

// NewAuthPacket builds and validates a v5 AUTH packet.
func NewAuthPacket(reasonCode ReasonCode, props Properties) (*AuthPacket, error) {
	if err := ValidateReasonCodeForPacket(AUTH, reasonCode); err != nil {
		return nil, err
	}
	if err := props.ValidateLocation(LocationAuth); err != nil {
		return nil, err
	}
	return &AuthPacket{FixedHeader: FixedHeader{Type: AUTH}, ReasonCode: reasonCode, Properties: props}, nil
}
