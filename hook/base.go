package hook

import (
	"time"

	"github.com/axmq/mqttcore/conn"
	"github.com/axmq/mqttcore/encoding"
)

// Base provides a default no-op implementation of the Hook interface
// Users can embed this in their custom hooks and override only the methods they need
type Base struct {
	id string
}

// NewHookBase creates a new base hook with the given ID
func NewHookBase(id string) *Base {
	return &Base{id: id}
}

// ID returns the unique identifier for this hook
func (h *Base) ID() string {
	return h.id
}

// Provides determines if the hook provides the given event
func (h *Base) Provides(event Event) bool {
	return false
}

// Init initializes the hook with the given config
func (h *Base) Init(config any) error {
	return nil
}

// Stop stops the hook
func (h *Base) Stop() error {
	return nil
}

// SetOptions sets the options for the hook
func (h *Base) SetOptions(opts *Options) error {
	return nil
}

// OnStarted is called when the hook is started
func (h *Base) OnStarted() error {
	return nil
}

// OnStopped is called when the hook is stopped
func (h *Base) OnStopped(err error) error {
	return nil
}

// OnConnectAuthenticate is called during the connect authenticate phase
func (h *Base) OnConnectAuthenticate(client *Client, packet *ConnectPacket) bool {
	return true
}

// OnSessionEstablish is called when a session is being established
func (h *Base) OnSessionEstablish(client *Client, packet *ConnectPacket) *SessionState {
	return nil
}

// OnSessionEstablished is called when a session has been established
func (h *Base) OnSessionEstablished(client *Client, packet *ConnectPacket) error {
	return nil
}

// OnDisconnect is called when a client disconnects
func (h *Base) OnDisconnect(client *Client, err error, expire bool) error {
	return nil
}

// OnPublish is called for every inbound PUBLISH the engine delivers
func (h *Base) OnPublish(client *Client, packet *encoding.PublishPacket) error {
	return nil
}

// OnReceive mirrors conn.Handler.OnReceive
func (h *Base) OnReceive(client *Client, packet encoding.Packet) error {
	return nil
}

// OnSend mirrors conn.Handler.OnSend
func (h *Base) OnSend(client *Client, wire []byte) error {
	return nil
}

// OnPacketIDRelease mirrors conn.Handler.OnPacketIDRelease
func (h *Base) OnPacketIDRelease(client *Client, id uint16) error {
	return nil
}

// OnTimerOp mirrors conn.Handler.OnTimerOp
func (h *Base) OnTimerOp(client *Client, op conn.TimerOp, kind conn.TimerKind, duration time.Duration) error {
	return nil
}

// OnClose mirrors conn.Handler.OnClose
func (h *Base) OnClose(client *Client) error {
	return nil
}

// OnError mirrors conn.Handler.OnError
func (h *Base) OnError(client *Client, err error) error {
	return nil
}
