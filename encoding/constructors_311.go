package encoding

import "io"

// This file provides MQTT 3.1.1 wire parsing (Parse*Packet311) and
// validating constructors (New*Packet311), mirroring the v5 Parse*/New*
// pairs in packets_mqtt5.go and constructors.go. MQTT 3.1.1 carries no
// Properties and no AUTH packet.

// ParseConnectPacket311 parses an MQTT 3.1.1 CONNECT packet.
func ParseConnectPacket311(r io.Reader, fh *FixedHeader) (*ConnectPacket311, error) {
	pkt := &ConnectPacket311{FixedHeader: *fh}

	protocolName, err := readUTF8String(r)
	if err != nil {
		return nil, err
	}
	pkt.ProtocolName = protocolName
	if protocolName != DefaultProtocolName && protocolName != ProtocolName30 {
		return nil, ErrInvalidProtocolName
	}

	version, err := readByte(r)
	if err != nil {
		return nil, err
	}
	pkt.ProtocolVersion = ProtocolVersion(version)
	if pkt.ProtocolVersion != ProtocolVersion311 && pkt.ProtocolVersion != ProtocolVersion30 {
		return nil, ErrInvalidProtocolVersion
	}

	flags, err := readByte(r)
	if err != nil {
		return nil, err
	}
	pkt.CleanSession = (flags & 0x02) != 0
	pkt.WillFlag = (flags & 0x04) != 0
	pkt.WillQoS = QoS((flags & 0x18) >> 3)
	pkt.WillRetain = (flags & 0x20) != 0
	pkt.PasswordFlag = (flags & 0x40) != 0
	pkt.UsernameFlag = (flags & 0x80) != 0
	if (flags & 0x01) != 0 {
		return nil, ErrMalformedPacket
	}
	if err := ValidateConnectFlags(flags); err != nil {
		return nil, err
	}

	keepAlive, err := readTwoByteInt(r)
	if err != nil {
		return nil, err
	}
	pkt.KeepAlive = keepAlive

	clientID, err := readUTF8String(r)
	if err != nil {
		return nil, err
	}
	pkt.ClientID = clientID

	if pkt.WillFlag {
		willTopic, err := readUTF8String(r)
		if err != nil {
			return nil, err
		}
		pkt.WillTopic = willTopic

		willPayload, err := readBinaryData(r)
		if err != nil {
			return nil, err
		}
		pkt.WillPayload = willPayload
	}

	if pkt.UsernameFlag {
		username, err := readUTF8String(r)
		if err != nil {
			return nil, err
		}
		pkt.Username = username
	}

	if pkt.PasswordFlag {
		password, err := readBinaryData(r)
		if err != nil {
			return nil, err
		}
		pkt.Password = password
	}

	return pkt, nil
}

// NewConnectPacket311 builds and validates a v3.1.1 CONNECT packet.
func NewConnectPacket311(clientID string, cleanSession bool, keepAlive uint16) (*ConnectPacket311, error) {
	if clientID != "" {
		if err := ValidateUTF8String([]byte(clientID)); err != nil {
			return nil, err
		}
	}
	return &ConnectPacket311{
		FixedHeader:     FixedHeader{Type: CONNECT},
		ProtocolName:    DefaultProtocolName,
		ProtocolVersion: ProtocolVersion311,
		CleanSession:    cleanSession,
		KeepAlive:       keepAlive,
		ClientID:        clientID,
	}, nil
}

// SetWill attaches a will message to a v3.1.1 CONNECT packet.
func (p *ConnectPacket311) SetWill(topic string, payload []byte, qos QoS, retain bool) error {
	if err := ValidateTopicName(topic); err != nil {
		return err
	}
	if !qos.IsValid() {
		return ErrInvalidWillQoS
	}
	p.WillFlag = true
	p.WillQoS = qos
	p.WillRetain = retain
	p.WillTopic = topic
	p.WillPayload = payload
	return nil
}

// ParseConnackPacket311 parses an MQTT 3.1.1 CONNACK packet.
func ParseConnackPacket311(r io.Reader, fh *FixedHeader) (*ConnackPacket311, error) {
	pkt := &ConnackPacket311{FixedHeader: *fh}

	flags, err := readByte(r)
	if err != nil {
		return nil, err
	}
	pkt.SessionPresent = (flags & 0x01) != 0
	if (flags & 0xFE) != 0 {
		return nil, ErrMalformedPacket
	}

	returnCode, err := readByte(r)
	if err != nil {
		return nil, err
	}
	pkt.ReturnCode = returnCode

	return pkt, nil
}

// NewConnackPacket311 builds a v3.1.1 CONNACK packet.
func NewConnackPacket311(sessionPresent bool, returnCode byte) *ConnackPacket311 {
	return &ConnackPacket311{
		FixedHeader:    FixedHeader{Type: CONNACK},
		SessionPresent: sessionPresent,
		ReturnCode:     returnCode,
	}
}

// ParsePublishPacket311 parses an MQTT 3.1.1 PUBLISH packet.
func ParsePublishPacket311(r io.Reader, fh *FixedHeader) (*PublishPacket311, error) {
	pkt := &PublishPacket311{FixedHeader: *fh}

	topicName, err := readUTF8String(r)
	if err != nil {
		return nil, err
	}
	pkt.TopicName = topicName
	if err := ValidateTopicName(topicName); err != nil {
		return nil, err
	}

	if fh.QoS > QoS0 {
		packetID, err := readTwoByteInt(r)
		if err != nil {
			return nil, err
		}
		if packetID == 0 {
			return nil, ErrInvalidPacketID
		}
		pkt.PacketID = packetID
	}

	headerSize := 2 + len(topicName)
	if fh.QoS > QoS0 {
		headerSize += 2
	}
	payloadLength := int(fh.RemainingLength) - headerSize
	if payloadLength > 0 {
		payload := make([]byte, payloadLength)
		if _, err := io.ReadFull(r, payload); err != nil {
			if err == io.EOF {
				return nil, ErrUnexpectedEOF
			}
			return nil, err
		}
		pkt.Payload = payload
	}

	return pkt, nil
}

// NewPublishPacket311 builds and validates a v3.1.1 PUBLISH packet.
func NewPublishPacket311(topicName string, payload []byte, qos QoS, retain, dup bool, packetID uint16) (*PublishPacket311, error) {
	if !qos.IsValid() {
		return nil, ErrInvalidQoS
	}
	if err := ValidateTopicName(topicName); err != nil {
		return nil, err
	}
	if qos == QoS0 {
		if packetID != 0 {
			return nil, ErrInvalidPacketID
		}
	} else if packetID == 0 {
		return nil, ErrMissingPacketID
	}
	flags := byte(qos) << 1
	if dup {
		flags |= 0x08
	}
	if retain {
		flags |= 0x01
	}
	return &PublishPacket311{
		FixedHeader: FixedHeader{Type: PUBLISH, Flags: flags, DUP: dup, QoS: qos, Retain: retain},
		TopicName:   topicName,
		PacketID:    packetID,
		Payload:     payload,
	}, nil
}

func parseAckPacket311(r io.Reader, fh *FixedHeader) (uint16, error) {
	return readTwoByteInt(r)
}

// ParsePubackPacket311 parses an MQTT 3.1.1 PUBACK packet.
func ParsePubackPacket311(r io.Reader, fh *FixedHeader) (*PubackPacket311, error) {
	id, err := parseAckPacket311(r, fh)
	if err != nil {
		return nil, err
	}
	return &PubackPacket311{FixedHeader: *fh, PacketID: id}, nil
}

// NewPubackPacket311 builds a v3.1.1 PUBACK packet.
func NewPubackPacket311(packetID uint16) (*PubackPacket311, error) {
	if packetID == 0 {
		return nil, ErrInvalidPacketIDZero
	}
	return &PubackPacket311{FixedHeader: FixedHeader{Type: PUBACK}, PacketID: packetID}, nil
}

// ParsePubrecPacket311 parses an MQTT 3.1.1 PUBREC packet.
func ParsePubrecPacket311(r io.Reader, fh *FixedHeader) (*PubrecPacket311, error) {
	id, err := parseAckPacket311(r, fh)
	if err != nil {
		return nil, err
	}
	return &PubrecPacket311{FixedHeader: *fh, PacketID: id}, nil
}

// NewPubrecPacket311 builds a v3.1.1 PUBREC packet.
func NewPubrecPacket311(packetID uint16) (*PubrecPacket311, error) {
	if packetID == 0 {
		return nil, ErrInvalidPacketIDZero
	}
	return &PubrecPacket311{FixedHeader: FixedHeader{Type: PUBREC}, PacketID: packetID}, nil
}

// ParsePubrelPacket311 parses an MQTT 3.1.1 PUBREL packet.
func ParsePubrelPacket311(r io.Reader, fh *FixedHeader) (*PubrelPacket311, error) {
	id, err := parseAckPacket311(r, fh)
	if err != nil {
		return nil, err
	}
	return &PubrelPacket311{FixedHeader: *fh, PacketID: id}, nil
}

// NewPubrelPacket311 builds a v3.1.1 PUBREL packet.
func NewPubrelPacket311(packetID uint16) (*PubrelPacket311, error) {
	if packetID == 0 {
		return nil, ErrInvalidPacketIDZero
	}
	return &PubrelPacket311{FixedHeader: FixedHeader{Type: PUBREL, Flags: 0x02}, PacketID: packetID}, nil
}

// ParsePubcompPacket311 parses an MQTT 3.1.1 PUBCOMP packet.
func ParsePubcompPacket311(r io.Reader, fh *FixedHeader) (*PubcompPacket311, error) {
	id, err := parseAckPacket311(r, fh)
	if err != nil {
		return nil, err
	}
	return &PubcompPacket311{FixedHeader: *fh, PacketID: id}, nil
}

// NewPubcompPacket311 builds a v3.1.1 PUBCOMP packet.
func NewPubcompPacket311(packetID uint16) (*PubcompPacket311, error) {
	if packetID == 0 {
		return nil, ErrInvalidPacketIDZero
	}
	return &PubcompPacket311{FixedHeader: FixedHeader{Type: PUBCOMP}, PacketID: packetID}, nil
}

// ParseSubscribePacket311 parses an MQTT 3.1.1 SUBSCRIBE packet.
func ParseSubscribePacket311(r io.Reader, fh *FixedHeader) (*SubscribePacket311, error) {
	pkt := &SubscribePacket311{FixedHeader: *fh}

	packetID, err := readTwoByteInt(r)
	if err != nil {
		return nil, err
	}
	pkt.PacketID = packetID

	bytesRead := 2
	for bytesRead < int(fh.RemainingLength) {
		topicFilter, err := readUTF8String(r)
		if err != nil {
			return nil, err
		}
		bytesRead += 2 + len(topicFilter)

		qos, err := readByte(r)
		if err != nil {
			return nil, err
		}
		bytesRead++

		if qos > byte(QoS2) {
			return nil, ErrInvalidQoS
		}

		pkt.Subscriptions = append(pkt.Subscriptions, Subscription311{
			TopicFilter: topicFilter,
			QoS:         QoS(qos),
		})
	}

	if len(pkt.Subscriptions) == 0 {
		return nil, ErrEmptySubscriptionList
	}

	return pkt, nil
}

// NewSubscribePacket311 builds and validates a v3.1.1 SUBSCRIBE packet.
func NewSubscribePacket311(packetID uint16, subs []Subscription311) (*SubscribePacket311, error) {
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
	}
	return &SubscribePacket311{
		FixedHeader:   FixedHeader{Type: SUBSCRIBE, Flags: 0x02},
		PacketID:      packetID,
		Subscriptions: subs,
	}, nil
}

// ParseSubackPacket311 parses an MQTT 3.1.1 SUBACK packet.
func ParseSubackPacket311(r io.Reader, fh *FixedHeader) (*SubackPacket311, error) {
	pkt := &SubackPacket311{FixedHeader: *fh}

	packetID, err := readTwoByteInt(r)
	if err != nil {
		return nil, err
	}
	pkt.PacketID = packetID

	returnCodeCount := int(fh.RemainingLength) - 2
	pkt.ReturnCodes = make([]byte, returnCodeCount)
	for i := 0; i < returnCodeCount; i++ {
		rc, err := readByte(r)
		if err != nil {
			return nil, err
		}
		pkt.ReturnCodes[i] = rc
	}

	return pkt, nil
}

// NewSubackPacket311 builds a v3.1.1 SUBACK packet.
func NewSubackPacket311(packetID uint16, returnCodes []byte) (*SubackPacket311, error) {
	if packetID == 0 {
		return nil, ErrInvalidPacketIDZero
	}
	return &SubackPacket311{FixedHeader: FixedHeader{Type: SUBACK}, PacketID: packetID, ReturnCodes: returnCodes}, nil
}

// ParseUnsubscribePacket311 parses an MQTT 3.1.1 UNSUBSCRIBE packet.
func ParseUnsubscribePacket311(r io.Reader, fh *FixedHeader) (*UnsubscribePacket311, error) {
	pkt := &UnsubscribePacket311{FixedHeader: *fh}

	packetID, err := readTwoByteInt(r)
	if err != nil {
		return nil, err
	}
	pkt.PacketID = packetID

	bytesRead := 2
	for bytesRead < int(fh.RemainingLength) {
		topicFilter, err := readUTF8String(r)
		if err != nil {
			return nil, err
		}
		bytesRead += 2 + len(topicFilter)
		pkt.TopicFilters = append(pkt.TopicFilters, topicFilter)
	}

	if len(pkt.TopicFilters) == 0 {
		return nil, ErrEmptyUnsubscribeList
	}

	return pkt, nil
}

// NewUnsubscribePacket311 builds and validates a v3.1.1 UNSUBSCRIBE packet.
func NewUnsubscribePacket311(packetID uint16, filters []string) (*UnsubscribePacket311, error) {
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
	return &UnsubscribePacket311{
		FixedHeader:  FixedHeader{Type: UNSUBSCRIBE, Flags: 0x02},
		PacketID:     packetID,
		TopicFilters: filters,
	}, nil
}

// ParseUnsubackPacket311 parses an MQTT 3.1.1 UNSUBACK packet.
func ParseUnsubackPacket311(r io.Reader, fh *FixedHeader) (*UnsubackPacket311, error) {
	id, err := parseAckPacket311(r, fh)
	if err != nil {
		return nil, err
	}
	return &UnsubackPacket311{FixedHeader: *fh, PacketID: id}, nil
}

// NewUnsubackPacket311 builds a v3.1.1 UNSUBACK packet.
func NewUnsubackPacket311(packetID uint16) (*UnsubackPacket311, error) {
	if packetID == 0 {
		return nil, ErrInvalidPacketIDZero
	}
	return &UnsubackPacket311{FixedHeader: FixedHeader{Type: UNSUBACK}, PacketID: packetID}, nil
}

// ParseDisconnectPacket311 parses an MQTT 3.1.1 DISCONNECT packet.
func ParseDisconnectPacket311(fh *FixedHeader) (*DisconnectPacket311, error) {
	if fh.RemainingLength != 0 {
		return nil, ErrMalformedPacket
	}
	return &DisconnectPacket311{FixedHeader: *fh}, nil
}

// NewDisconnectPacket311 builds a v3.1.1 DISCONNECT packet.
func NewDisconnectPacket311() *DisconnectPacket311 {
	return &DisconnectPacket311{FixedHeader: FixedHeader{Type: DISCONNECT}}
}
