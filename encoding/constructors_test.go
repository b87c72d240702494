package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnectPacket(t *testing.T) {
	pkt, err := NewConnectPacket("client-1", true, 30, Properties{})
	require.NoError(t, err)
	assert.Equal(t, CONNECT, pkt.FixedHeader.Type)
	assert.Equal(t, "client-1", pkt.ClientID)
	assert.True(t, pkt.CleanStart)
	assert.Equal(t, DefaultProtocolName, pkt.ProtocolName)
	assert.Equal(t, ProtocolVersion50, pkt.ProtocolVersion)
}

func TestConnectPacketSetWill(t *testing.T) {
	pkt, err := NewConnectPacket("client-1", true, 30, Properties{})
	require.NoError(t, err)

	err = pkt.SetWill("a/b", []byte("payload"), QoS1, true, Properties{})
	require.NoError(t, err)
	assert.True(t, pkt.WillFlag)
	assert.Equal(t, QoS1, pkt.WillQoS)

	err = pkt.SetWill("a/+", nil, QoS0, false, Properties{})
	assert.ErrorIs(t, err, ErrInvalidPublishTopicName)
}

func TestNewPublishPacket(t *testing.T) {
	t.Run("QoS0 rejects non-zero packet id", func(t *testing.T) {
		_, err := NewPublishPacket("a/b", nil, QoS0, false, false, 1, Properties{})
		assert.ErrorIs(t, err, ErrInvalidPacketID)
	})

	t.Run("QoS1 requires a packet id", func(t *testing.T) {
		_, err := NewPublishPacket("a/b", nil, QoS1, false, false, 0, Properties{})
		assert.ErrorIs(t, err, ErrMissingPacketID)
	})

	t.Run("empty topic without alias is rejected", func(t *testing.T) {
		_, err := NewPublishPacket("", nil, QoS0, false, false, 0, Properties{})
		assert.ErrorIs(t, err, ErrTopicAliasInvalid)
	})

	t.Run("empty topic with alias is accepted", func(t *testing.T) {
		var props Properties
		require.NoError(t, props.AddProperty(PropTopicAlias, uint16(7)))
		pkt, err := NewPublishPacket("", []byte("x"), QoS0, false, false, 0, props)
		require.NoError(t, err)
		alias, ok := pkt.TopicAlias()
		assert.True(t, ok)
		assert.Equal(t, uint16(7), alias)
	})

	t.Run("valid QoS1 publish", func(t *testing.T) {
		pkt, err := NewPublishPacket("a/b", []byte("hi"), QoS1, true, false, 5, Properties{})
		require.NoError(t, err)
		assert.Equal(t, uint16(5), pkt.PacketID)
		assert.True(t, pkt.FixedHeader.Retain)
	})
}

func TestPublishPacketRegulateForStore(t *testing.T) {
	var props Properties
	require.NoError(t, props.AddProperty(PropTopicAlias, uint16(3)))
	pkt := &PublishPacket{TopicName: "", Properties: props}

	_, err := pkt.RegulateForStore("")
	assert.ErrorIs(t, err, ErrNotRegulated)

	regulated, err := pkt.RegulateForStore("a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", regulated.TopicName)
	_, ok := regulated.TopicAlias()
	assert.False(t, ok)

	// original packet is untouched
	_, ok = pkt.TopicAlias()
	assert.True(t, ok)
}

func TestNewAckPackets(t *testing.T) {
	_, err := NewPubackPacket(0, ReasonSuccess, Properties{})
	assert.ErrorIs(t, err, ErrInvalidPacketIDZero)

	puback, err := NewPubackPacket(1, ReasonSuccess, Properties{})
	require.NoError(t, err)
	assert.Equal(t, uint16(1), puback.PacketID)

	_, err = NewPubrecPacket(1, ReasonPacketTooLarge, Properties{})
	assert.Error(t, err) // not a valid PUBREC reason code

	pubrel, err := NewPubrelPacket(1, ReasonSuccess, Properties{})
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), pubrel.FixedHeader.Flags)
}

func TestNewSubscribePacket(t *testing.T) {
	_, err := NewSubscribePacket(1, nil, Properties{})
	assert.ErrorIs(t, err, ErrEmptySubscriptionList)

	subs := []Subscription{{TopicFilter: "a/+", QoS: QoS1}}
	pkt, err := NewSubscribePacket(1, subs, Properties{})
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), pkt.FixedHeader.Flags)

	badSubs := []Subscription{{TopicFilter: "a/b", RetainHandling: 3}}
	_, err = NewSubscribePacket(1, badSubs, Properties{})
	assert.ErrorIs(t, err, ErrInvalidSubscriptionOpts)
}

func TestNewUnsubscribePacket(t *testing.T) {
	_, err := NewUnsubscribePacket(1, nil, Properties{})
	assert.ErrorIs(t, err, ErrEmptyUnsubscribeList)

	pkt, err := NewUnsubscribePacket(1, []string{"a/b"}, Properties{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b"}, pkt.TopicFilters)
}

func TestNewPingPackets(t *testing.T) {
	assert.Equal(t, PINGREQ, NewPingreqPacket().FixedHeader.Type)
	assert.Equal(t, PINGRESP, NewPingrespPacket().FixedHeader.Type)
}

func TestNewDisconnectAndAuthPackets(t *testing.T) {
	disc, err := NewDisconnectPacket(ReasonNormalDisconnection, Properties{})
	require.NoError(t, err)
	assert.Equal(t, DISCONNECT, disc.FixedHeader.Type)

	_, err = NewDisconnectPacket(ReasonGrantedQoS1, Properties{})
	assert.Error(t, err) // not a disconnect reason code

	auth, err := NewAuthPacket(ReasonContinueAuthentication, Properties{})
	require.NoError(t, err)
	assert.Equal(t, ReasonContinueAuthentication, auth.ReasonCode)
}
