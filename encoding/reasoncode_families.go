package encoding

// Reason code family membership per MQTT 5.0 section 2.4's per-packet-type
// tables. ValidateReasonCodeForPacket uses these to reject a reason code
// that the packet type is not permitted to carry.

var connackReasonCodes = map[ReasonCode]bool{
	ReasonSuccess: true, ReasonUnspecifiedError: true, ReasonMalformedPacket: true,
	ReasonProtocolError: true, ReasonImplementationSpecificError: true,
	ReasonUnsupportedProtocolVersion: true, ReasonClientIdentifierNotValid: true,
	ReasonBadUsernameOrPassword: true, ReasonNotAuthorized: true, ReasonServerUnavailable: true,
	ReasonServerBusy: true, ReasonBanned: true, ReasonBadAuthenticationMethod: true,
	ReasonTopicNameInvalid: true, ReasonPacketTooLarge: true, ReasonQuotaExceeded: true,
	ReasonPayloadFormatInvalid: true, ReasonRetainNotSupported: true, ReasonQoSNotSupported: true,
	ReasonUseAnotherServer: true, ReasonServerMoved: true,
	ReasonConnectionRateExceeded: true,
}

var pubackPubrecReasonCodes = map[ReasonCode]bool{
	ReasonSuccess: true, ReasonNoMatchingSubscribers: true, ReasonUnspecifiedError: true,
	ReasonImplementationSpecificError: true, ReasonNotAuthorized: true, ReasonTopicNameInvalid: true,
	ReasonPacketIdentifierInUse: true, ReasonQuotaExceeded: true, ReasonPayloadFormatInvalid: true,
}

var pubrelPubcompReasonCodes = map[ReasonCode]bool{
	ReasonSuccess: true, ReasonPacketIdentifierNotFound: true,
}

var subackReasonCodes = map[ReasonCode]bool{
	ReasonGrantedQoS0: true, ReasonGrantedQoS1: true, ReasonGrantedQoS2: true,
	ReasonUnspecifiedError: true, ReasonImplementationSpecificError: true, ReasonNotAuthorized: true,
	ReasonTopicFilterInvalid: true, ReasonPacketIdentifierInUse: true, ReasonQuotaExceeded: true,
	ReasonSharedSubscriptionsNotSupported: true, ReasonSubscriptionIdentifiersNotSupported: true,
	ReasonWildcardSubscriptionsNotSupported: true,
}

var unsubackReasonCodes = map[ReasonCode]bool{
	ReasonSuccess: true, ReasonNoSubscriptionExisted: true, ReasonUnspecifiedError: true,
	ReasonImplementationSpecificError: true, ReasonNotAuthorized: true, ReasonTopicFilterInvalid: true,
	ReasonPacketIdentifierInUse: true,
}

var disconnectReasonCodes = map[ReasonCode]bool{
	ReasonNormalDisconnection: true, ReasonDisconnectWithWillMessage: true, ReasonUnspecifiedError: true,
	ReasonMalformedPacket: true, ReasonProtocolError: true, ReasonImplementationSpecificError: true,
	ReasonNotAuthorized: true, ReasonServerBusy: true, ReasonServerShuttingDown: true,
	ReasonKeepAliveTimeout: true, ReasonSessionTakenOver: true, ReasonTopicFilterInvalid: true,
	ReasonTopicNameInvalid: true, ReasonReceiveMaximumExceeded: true, ReasonTopicAliasInvalid: true,
	ReasonPacketTooLarge: true, ReasonMessageRateTooHigh: true, ReasonQuotaExceeded: true,
	ReasonAdministrativeAction: true, ReasonPayloadFormatInvalid: true, ReasonRetainNotSupported: true,
	ReasonQoSNotSupported: true, ReasonUseAnotherServer: true, ReasonServerMoved: true,
	ReasonSharedSubscriptionsNotSupported: true, ReasonConnectionRateExceeded: true,
	ReasonMaximumConnectTime: true, ReasonSubscriptionIdentifiersNotSupported: true,
	ReasonWildcardSubscriptionsNotSupported: true,
}

var authReasonCodes = map[ReasonCode]bool{
	ReasonSuccess: true, ReasonContinueAuthentication: true, ReasonReAuthenticate: true,
}

// IsValidForConnack reports whether rc is a legal CONNACK reason code.
func IsValidForConnack(rc ReasonCode) bool { return connackReasonCodes[rc] }

// IsValidForPuback reports whether rc is a legal PUBACK/PUBREC reason code.
func IsValidForPuback(rc ReasonCode) bool { return pubackPubrecReasonCodes[rc] }

// IsValidForPubrel reports whether rc is a legal PUBREL/PUBCOMP reason code.
func IsValidForPubrel(rc ReasonCode) bool { return pubrelPubcompReasonCodes[rc] }

// IsValidForSuback reports whether rc is a legal SUBACK reason code.
func IsValidForSuback(rc ReasonCode) bool { return subackReasonCodes[rc] }

// IsValidForUnsuback reports whether rc is a legal UNSUBACK reason code.
func IsValidForUnsuback(rc ReasonCode) bool { return unsubackReasonCodes[rc] }

// IsValidForDisconnect reports whether rc is a legal DISCONNECT reason code.
func IsValidForDisconnect(rc ReasonCode) bool { return disconnectReasonCodes[rc] }

// IsValidForAuth reports whether rc is a legal AUTH reason code.
func IsValidForAuth(rc ReasonCode) bool { return authReasonCodes[rc] }
