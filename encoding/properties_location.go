package encoding

// Location identifies which MQTT 5.0 packet type (or sub-structure, for
// Will properties) a Properties collection is attached to. Each property ID
// is only legal in a subset of locations; parsing a property at a location
// that disallows it is a malformed packet per the MQTT 5.0 specification.
type Location byte

const (
	LocationConnect Location = iota
	LocationConnack
	LocationPublish
	LocationWill
	LocationSubscribe
	LocationUnsubscribe
	LocationPuback
	LocationPubrec
	LocationPubrel
	LocationPubcomp
	LocationSuback
	LocationUnsuback
	LocationDisconnect
	LocationAuth
)

func (l Location) String() string {
	switch l {
	case LocationConnect:
		return "CONNECT"
	case LocationConnack:
		return "CONNACK"
	case LocationPublish:
		return "PUBLISH"
	case LocationWill:
		return "WILL"
	case LocationSubscribe:
		return "SUBSCRIBE"
	case LocationUnsubscribe:
		return "UNSUBSCRIBE"
	case LocationPuback:
		return "PUBACK"
	case LocationPubrec:
		return "PUBREC"
	case LocationPubrel:
		return "PUBREL"
	case LocationPubcomp:
		return "PUBCOMP"
	case LocationSuback:
		return "SUBACK"
	case LocationUnsuback:
		return "UNSUBACK"
	case LocationDisconnect:
		return "DISCONNECT"
	case LocationAuth:
		return "AUTH"
	default:
		return "UNKNOWN"
	}
}

// allowedLocations maps each property ID to the set of locations in which it
// is legal to appear. PropUserProperty is valid everywhere and is checked
// separately in ValidateLocation.
var allowedLocations = map[PropertyID]map[Location]bool{
	PropPayloadFormatIndicator: {LocationPublish: true, LocationWill: true},
	PropMessageExpiryInterval:  {LocationPublish: true, LocationWill: true},
	PropContentType:            {LocationPublish: true, LocationWill: true},
	PropResponseTopic:          {LocationPublish: true, LocationWill: true},
	PropCorrelationData:        {LocationPublish: true, LocationWill: true},
	PropSubscriptionIdentifier: {LocationPublish: true, LocationSubscribe: true},
	PropSessionExpiryInterval: {
		LocationConnect: true, LocationConnack: true, LocationDisconnect: true,
	},
	PropAssignedClientIdentifier: {LocationConnack: true},
	PropServerKeepAlive:          {LocationConnack: true},
	PropAuthenticationMethod:     {LocationConnect: true, LocationConnack: true, LocationAuth: true},
	PropAuthenticationData:       {LocationConnect: true, LocationConnack: true, LocationAuth: true},
	PropRequestProblemInformation: {LocationConnect: true},
	PropWillDelayInterval:         {LocationWill: true},
	PropRequestResponseInformation: {LocationConnect: true},
	PropResponseInformation:        {LocationConnack: true},
	PropServerReference: {
		LocationConnack: true, LocationDisconnect: true,
	},
	PropReasonString: {
		LocationConnack: true, LocationPuback: true, LocationPubrec: true,
		LocationPubrel: true, LocationPubcomp: true, LocationSuback: true,
		LocationUnsuback: true, LocationDisconnect: true, LocationAuth: true,
	},
	PropReceiveMaximum:    {LocationConnect: true, LocationConnack: true},
	PropTopicAliasMaximum: {LocationConnect: true, LocationConnack: true},
	PropTopicAlias:        {LocationPublish: true},
	PropMaximumQoS:        {LocationConnack: true},
	PropRetainAvailable:   {LocationConnack: true},
	PropMaximumPacketSize: {LocationConnect: true, LocationConnack: true},
	PropWildcardSubscriptionAvailable:   {LocationConnack: true},
	PropSubscriptionIdentifierAvailable: {LocationConnack: true},
	PropSharedSubscriptionAvailable:     {LocationConnack: true},
}

// ValidateLocation checks that every property in p is legal at loc, and
// enforces the zero-value protocol errors the MQTT 5.0 specification
// attaches to specific properties regardless of location.
func (p *Properties) ValidateLocation(loc Location) error {
	seen := make(map[PropertyID]bool, len(p.Properties))
	for i := range p.Properties {
		prop := &p.Properties[i]

		if prop.ID != PropUserProperty {
			spec, ok := propertySpecs[prop.ID]
			if !ok {
				return ErrInvalidPropertyID
			}
			if !spec.Multiple && seen[prop.ID] {
				return ErrDuplicateProperty
			}
			seen[prop.ID] = true

			locs, ok := allowedLocations[prop.ID]
			if !ok || !locs[loc] {
				return &PacketError{
					Err:        ErrInvalidPropertyID,
					ReasonCode: ReasonMalformedPacket,
					Message:    "property " + prop.ID.String() + " not allowed at " + loc.String(),
				}
			}
		}

		if err := validatePropertyValue(prop); err != nil {
			return err
		}
	}
	return nil
}

// validatePropertyValue enforces the MQTT 5.0 values that are protocol
// errors regardless of where the property appears.
func validatePropertyValue(prop *Property) error {
	switch prop.ID {
	case PropReceiveMaximum:
		if v, ok := prop.Value.(uint16); ok && v == 0 {
			return &PacketError{Err: ErrInvalidPropertyID, ReasonCode: ReasonProtocolError, Message: "receive_maximum must not be 0"}
		}
	case PropMaximumPacketSize:
		if v, ok := prop.Value.(uint32); ok && v == 0 {
			return &PacketError{Err: ErrInvalidPropertyID, ReasonCode: ReasonProtocolError, Message: "maximum_packet_size must not be 0"}
		}
	case PropMaximumQoS:
		if v, ok := prop.Value.(byte); ok && v > 1 {
			return &PacketError{Err: ErrInvalidPropertyID, ReasonCode: ReasonProtocolError, Message: "maximum_qos must be 0 or 1"}
		}
	case PropPayloadFormatIndicator:
		if v, ok := prop.Value.(byte); ok && v > 1 {
			return &PacketError{Err: ErrInvalidPropertyID, ReasonCode: ReasonProtocolError, Message: "payload_format_indicator must be 0 or 1"}
		}
	}
	return nil
}
