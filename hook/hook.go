package hook

import (
	"net"
	"time"

	"github.com/axmq/mqttcore/conn"
	"github.com/axmq/mqttcore/encoding"
)

// Event represents hook event types. The set is scoped to what a
// network.Endpoint actually observes: conn.Engine's own callback surface
// (OnReceive, OnSend, OnPacketIDRelease, OnTimerOp, OnClose, OnError),
// OnPublish for inbound PUBLISH packets, the connection-lifecycle points a host needs before it ever constructs
// an engine (OnConnectAuthenticate, OnSessionEstablish,
// OnSessionEstablished, OnDisconnect) and process-lifecycle bookkeeping
// (SetOptions, OnStarted, OnStopped).
type Event byte

const (
	SetOptions Event = iota
	OnStarted
	OnStopped
	OnConnectAuthenticate
	OnSessionEstablish
	OnSessionEstablished
	OnDisconnect
	OnPublish
	OnReceive
	OnSend
	OnPacketIDRelease
	OnTimerOp
	OnClose
	OnError
)

// String returns the string representation of the event
func (e Event) String() string {
	names := [...]string{
		"SetOptions",
		"OnStarted",
		"OnStopped",
		"OnConnectAuthenticate",
		"OnSessionEstablish",
		"OnSessionEstablished",
		"OnDisconnect",
		"OnPublish",
		"OnReceive",
		"OnSend",
		"OnPacketIDRelease",
		"OnTimerOp",
		"OnClose",
		"OnError",
	}
	if e < Event(len(names)) {
		return names[e]
	}
	return "Unknown"
}

// Hook defines the interface that all hooks must implement. Hooks observe
// a single network.Endpoint's conn.Engine traffic and the connection
// lifecycle that surrounds it; they never see broker-side routing
// concerns (topic matching, retained storage) since the engine itself
// never performs those.
type Hook interface {
	// ID returns a unique identifier for this hook
	ID() string

	// Provides indicates if the hook provides implementation for the given event
	Provides(event Event) bool

	// Init initializes the hook with the given configuration
	Init(config any) error

	// Stop stops the hook
	Stop() error

	// SetOptions is called when endpoint options are being configured
	SetOptions(opts *Options) error

	// OnStarted is called when the endpoint has started serving
	OnStarted() error

	// OnStopped is called when the endpoint has stopped
	OnStopped(err error) error

	// OnConnectAuthenticate is called to authenticate a client connection,
	// before a conn.Engine is ever constructed for it.
	OnConnectAuthenticate(client *Client, packet *ConnectPacket) bool

	// OnSessionEstablish is called before establishing a session, letting
	// a hook supply a recovered session.
	OnSessionEstablish(client *Client, packet *ConnectPacket) *SessionState

	// OnSessionEstablished is called after a session is established and
	// the engine has accepted the CONNECT.
	OnSessionEstablished(client *Client, packet *ConnectPacket) error

	// OnDisconnect is called when a client disconnects
	OnDisconnect(client *Client, err error, expire bool) error

	// OnPublish is called for every inbound PUBLISH the engine delivers
	// via OnReceive, before application code sees it.
	OnPublish(client *Client, packet *encoding.PublishPacket) error

	// OnReceive mirrors conn.Handler.OnReceive for every inbound packet.
	OnReceive(client *Client, packet encoding.Packet) error

	// OnSend mirrors conn.Handler.OnSend for every outbound wire write.
	OnSend(client *Client, wire []byte) error

	// OnPacketIDRelease mirrors conn.Handler.OnPacketIDRelease.
	OnPacketIDRelease(client *Client, id uint16) error

	// OnTimerOp mirrors conn.Handler.OnTimerOp.
	OnTimerOp(client *Client, op conn.TimerOp, kind conn.TimerKind, duration time.Duration) error

	// OnClose mirrors conn.Handler.OnClose.
	OnClose(client *Client) error

	// OnError mirrors conn.Handler.OnError.
	OnError(client *Client, err error) error
}

// Options holds the configuration options for an endpoint host
type Options struct {
	Capabilities *Capabilities
	Config       map[string]any
}

// Capabilities defines the limits a host advertises/enforces independently
// of the engine (the engine itself has no notion of a server's policy).
type Capabilities struct {
	MaximumSessionExpiryInterval uint32
	MaximumMessageExpiryInterval uint32
	ReceiveMaximum               uint16
	MaximumQoS                   byte
	RetainAvailable              bool
	MaximumPacketSize            uint32
	MaximumTopicAlias            uint16
	WildcardSubAvailable         bool
	SubIDAvailable               bool
	SharedSubAvailable           bool
}

// Client represents a connected client, as seen by the host wrapping a
// network.Endpoint/conn.Engine pair.
type Client struct {
	ID              string
	RemoteAddr      net.Addr
	LocalAddr       net.Addr
	Username        string
	CleanStart      bool
	ProtocolVersion byte
	KeepAlive       uint16
	SessionPresent  bool
	Properties      Properties
	ConnectedAt     time.Time
	DisconnectedAt  time.Time
	State           ClientState
}

// ClientState represents the state of a client
type ClientState byte

const (
	ClientStateConnecting ClientState = iota
	ClientStateConnected
	ClientStateDisconnecting
	ClientStateDisconnected
)

// ConnectPacket holds the information a host needs to authenticate and
// establish a session for an incoming CONNECT, before the bytes are ever
// handed to a conn.Engine.
type ConnectPacket struct {
	ProtocolName    string
	ProtocolVersion byte
	CleanStart      bool
	KeepAlive       uint16
	ClientID        string
	Username        string
	Password        []byte
	Properties      Properties
	SessionPresent  bool
}

// SessionState holds what a hook needs to hand back to the host so it can
// call conn.Engine.RestorePackets / RestoreQoS2PublishHandledPacketIDs
// before resuming traffic on a recovered session.
type SessionState struct {
	ClientID       string
	CleanStart     bool
	SessionPresent bool
	ExpiryInterval uint32
}

// Properties is a map of key-value pairs for message properties
type Properties map[string]any
