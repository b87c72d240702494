package encoding

// TopicAlias returns the Topic Alias property value carried by the PUBLISH
// packet, if any.
func (p *PublishPacket) TopicAlias() (uint16, bool) {
	prop := p.Properties.GetProperty(PropTopicAlias)
	if prop == nil {
		return 0, false
	}
	v, ok := prop.Value.(uint16)
	return v, ok
}

// SetTopicAlias replaces (or adds) the Topic Alias property. Per MQTT 5.0,
// a PUBLISH carrying a Topic Alias may simultaneously omit the topic name
// once the alias has been mapped; callers that want the "alias-only" wire
// form should also clear TopicName.
func (p *PublishPacket) SetTopicAlias(alias uint16) error {
	for i := range p.Properties.Properties {
		if p.Properties.Properties[i].ID == PropTopicAlias {
			p.Properties.Properties[i].Value = alias
			return nil
		}
	}
	return p.Properties.AddProperty(PropTopicAlias, alias)
}

// ClearTopicAlias removes any Topic Alias property from the packet.
func (p *PublishPacket) ClearTopicAlias() {
	filtered := p.Properties.Properties[:0]
	for _, prop := range p.Properties.Properties {
		if prop.ID != PropTopicAlias {
			filtered = append(filtered, prop)
		}
	}
	p.Properties.Properties = filtered
}

// ToAliasOnly swaps the packet from "topic+alias" form to "alias-only" form:
// the topic name is cleared and the alias property (already present) is
// retained. Returns an error if no alias has been set.
func (p *PublishPacket) ToAliasOnly() error {
	if _, ok := p.TopicAlias(); !ok {
		return ErrTopicAliasInvalid
	}
	p.TopicName = ""
	return nil
}

// ToTopicOnly swaps the packet from "alias-only" or "topic+alias" form back
// to a plain topic-name PUBLISH, removing the Topic Alias property. The
// caller supplies the resolved topic (looked up from the send/recv alias
// table) since an alias-only packet carries no topic name of its own.
func (p *PublishPacket) ToTopicOnly(resolvedTopic string) {
	p.TopicName = resolvedTopic
	p.ClearTopicAlias()
}

// RegulateForStore returns a copy of the packet suitable for the inflight
// store: any topic-alias encoding is normalised back to a plain topic name,
// since a stored packet may be replayed long after the alias mapping that
// produced it has been evicted or renegotiated. resolvedTopic must be
// supplied by the caller when the packet is in alias-only form.
func (p *PublishPacket) RegulateForStore(resolvedTopic string) (*PublishPacket, error) {
	if p.TopicName == "" {
		if resolvedTopic == "" {
			return nil, ErrNotRegulated
		}
		cp := *p
		cp.Properties.Properties = append([]Property(nil), p.Properties.Properties...)
		cp.ToTopicOnly(resolvedTopic)
		return &cp, nil
	}
	cp := *p
	cp.Properties.Properties = append([]Property(nil), p.Properties.Properties...)
	cp.ClearTopicAlias()
	return &cp, nil
}

// SetMessageExpiryInterval updates (or adds) the Message Expiry Interval
// property in place, used by forwarding hosts (e.g. a broker) that need to
// decrement the remaining expiry without otherwise altering the packet.
func (p *PublishPacket) SetMessageExpiryInterval(seconds uint32) error {
	for i := range p.Properties.Properties {
		if p.Properties.Properties[i].ID == PropMessageExpiryInterval {
			p.Properties.Properties[i].Value = seconds
			return nil
		}
	}
	return p.Properties.AddProperty(PropMessageExpiryInterval, seconds)
}
