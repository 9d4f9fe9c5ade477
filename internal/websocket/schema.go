package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

// Action names a client message.
type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action of a client message.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

// Event names a server message.
type Event string

const (
	EventError     Event = "error"
	EventPong      Event = "pong"
	EventConnected Event = "connected"
)

// ErrorResponse reports a stream failure before the socket closes.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

// PongResponse answers a ping action.
type PongResponse struct {
	Event Event `json:"event"`
}

// ConnectedResponse is sent once after the upgrade, naming the channel the
// client is subscribed to.
type ConnectedResponse struct {
	Event   Event  `json:"event"`
	College string `json:"college"`
}
