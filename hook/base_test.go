package hook

import (
	"testing"
	"time"

	"github.com/axmq/mqttcore/conn"
	"github.com/axmq/mqttcore/encoding"
	"github.com/stretchr/testify/assert"
)

func TestHookBaseID(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{name: "simple id", id: "test-hook"},
		{name: "empty id", id: ""},
		{name: "complex id", id: "my.custom.hook.v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Base{id: tt.id}
			assert.Equal(t, tt.id, h.ID())
		})
	}
}

func TestHookBaseProvides(t *testing.T) {
	h := &Base{id: "test"}

	allEvents := []Event{
		SetOptions, OnStarted, OnStopped,
		OnConnectAuthenticate, OnSessionEstablish, OnSessionEstablished,
		OnDisconnect, OnPublish, OnReceive, OnSend,
		OnPacketIDRelease, OnTimerOp, OnClose, OnError,
	}

	for _, event := range allEvents {
		assert.False(t, h.Provides(event))
	}
}

func TestHookBaseInit(t *testing.T) {
	h := &Base{id: "test"}

	err := h.Init(nil)
	assert.NoError(t, err)

	err = h.Init(map[string]interface{}{"key": "value"})
	assert.NoError(t, err)

	err = h.Init("string config")
	assert.NoError(t, err)
}

func TestHookBaseStop(t *testing.T) {
	h := &Base{id: "test"}
	err := h.Stop()
	assert.NoError(t, err)
}

func TestHookBaseSetOptions(t *testing.T) {
	h := &Base{id: "test"}
	opts := &Options{
		Capabilities: &Capabilities{
			MaximumQoS:      2,
			RetainAvailable: true,
		},
	}
	err := h.SetOptions(opts)
	assert.NoError(t, err)
}

func TestHookBaseOnStarted(t *testing.T) {
	h := &Base{id: "test"}
	err := h.OnStarted()
	assert.NoError(t, err)
}

func TestHookBaseOnStopped(t *testing.T) {
	h := &Base{id: "test"}
	err := h.OnStopped(nil)
	assert.NoError(t, err)

	err = h.OnStopped(assert.AnError)
	assert.NoError(t, err)
}

func TestHookBaseOnConnectAuthenticate(t *testing.T) {
	h := &Base{id: "test"}
	client := &Client{ID: "client1"}
	packet := &ConnectPacket{ClientID: "client1"}

	result := h.OnConnectAuthenticate(client, packet)
	assert.True(t, result)
}

func TestHookBaseOnSessionEstablish(t *testing.T) {
	h := &Base{id: "test"}
	client := &Client{ID: "client1"}
	packet := &ConnectPacket{ClientID: "client1"}

	state := h.OnSessionEstablish(client, packet)
	assert.Nil(t, state)
}

func TestHookBaseOnSessionEstablished(t *testing.T) {
	h := &Base{id: "test"}
	client := &Client{ID: "client1"}
	packet := &ConnectPacket{ClientID: "client1"}

	err := h.OnSessionEstablished(client, packet)
	assert.NoError(t, err)
}

func TestHookBaseOnDisconnect(t *testing.T) {
	h := &Base{id: "test"}
	client := &Client{ID: "client1"}

	err := h.OnDisconnect(client, nil, false)
	assert.NoError(t, err)

	err = h.OnDisconnect(client, assert.AnError, true)
	assert.NoError(t, err)
}

func TestHookBaseOnPublish(t *testing.T) {
	h := &Base{id: "test"}
	client := &Client{ID: "client1"}
	packet := &encoding.PublishPacket{
		TopicName: "test/topic",
		Payload:   []byte("hello"),
	}

	err := h.OnPublish(client, packet)
	assert.NoError(t, err)
}

func TestHookBaseOnReceive(t *testing.T) {
	h := &Base{id: "test"}
	client := &Client{ID: "client1"}

	err := h.OnReceive(client, &encoding.PublishPacket{TopicName: "test"})
	assert.NoError(t, err)
}

func TestHookBaseOnSend(t *testing.T) {
	h := &Base{id: "test"}
	client := &Client{ID: "client1"}

	err := h.OnSend(client, []byte{0x01, 0x02})
	assert.NoError(t, err)
}

func TestHookBaseOnPacketIDRelease(t *testing.T) {
	h := &Base{id: "test"}
	client := &Client{ID: "client1"}

	err := h.OnPacketIDRelease(client, 1)
	assert.NoError(t, err)
}

func TestHookBaseOnTimerOp(t *testing.T) {
	h := &Base{id: "test"}
	client := &Client{ID: "client1"}

	err := h.OnTimerOp(client, conn.TimerOpSet, conn.TimerPingreqSend, time.Second)
	assert.NoError(t, err)
}

func TestHookBaseOnClose(t *testing.T) {
	h := &Base{id: "test"}
	client := &Client{ID: "client1"}

	err := h.OnClose(client)
	assert.NoError(t, err)
}

func TestHookBaseOnError(t *testing.T) {
	h := &Base{id: "test"}
	client := &Client{ID: "client1"}

	err := h.OnError(client, assert.AnError)
	assert.NoError(t, err)
}

func TestHookBaseNilInputs(t *testing.T) {
	h := &Base{id: "test"}

	err := h.OnDisconnect(nil, nil, false)
	assert.NoError(t, err)

	err = h.OnPublish(nil, nil)
	assert.NoError(t, err)

	result := h.OnConnectAuthenticate(nil, nil)
	assert.True(t, result)

	state := h.OnSessionEstablish(nil, nil)
	assert.Nil(t, state)

	err = h.OnClose(nil)
	assert.NoError(t, err)

	err = h.OnError(nil, nil)
	assert.NoError(t, err)
}

func TestHookBaseAllMethodsNoOp(t *testing.T) {
	h := &Base{id: "test"}
	client := &Client{ID: "client1"}
	packet := &ConnectPacket{ClientID: "client1"}

	err := h.Init(nil)
	assert.NoError(t, err)

	err = h.Stop()
	assert.NoError(t, err)

	err = h.SetOptions(nil)
	assert.NoError(t, err)

	err = h.OnStarted()
	assert.NoError(t, err)

	err = h.OnStopped(nil)
	assert.NoError(t, err)

	_ = h.OnConnectAuthenticate(client, packet)

	_ = h.OnSessionEstablish(client, packet)

	err = h.OnSessionEstablished(client, packet)
	assert.NoError(t, err)

	err = h.OnDisconnect(client, nil, false)
	assert.NoError(t, err)

	err = h.OnPublish(client, nil)
	assert.NoError(t, err)

	err = h.OnReceive(client, nil)
	assert.NoError(t, err)

	err = h.OnSend(client, nil)
	assert.NoError(t, err)

	err = h.OnPacketIDRelease(client, 0)
	assert.NoError(t, err)

	err = h.OnTimerOp(client, conn.TimerOpCancel, conn.TimerPingrespRecv, 0)
	assert.NoError(t, err)

	err = h.OnClose(client)
	assert.NoError(t, err)

	err = h.OnError(client, nil)
	assert.NoError(t, err)
}
