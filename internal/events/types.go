package events

// Channel is one of the three real-time entry points.
type Channel string

const (
	ChannelMain Channel = "main"
	ChannelChat Channel = "chat"
	ChannelCall Channel = "call"
)

// Inbound event types (client -> server)
const (
	TypePing          = "ping"
	TypeMessageSend   = "message.send"
	TypeTyping        = "typing"
	TypeCallOffer     = "call.offer"
	TypeCallAnswer    = "call.answer"
	TypeCallCandidate = "call.candidate"
	TypeCallReject    = "call.reject"
	TypeCallJoin      = "call.join"
	TypeCallFinish    = "call.finish"
)

// Outbound event types (server -> client)
const (
	TypePong            = "pong"
	TypeError           = "error"
	TypeNotification    = "notification"
	TypeContactChanged  = "contact.changed"
	TypeMessagePreview  = "message.preview"
	TypeChatHistory     = "chat.history"
	TypeMessageReceived = "message.received"
	TypeMessageSent     = "message.sent"
	TypePeerTyping      = "peer.typing"
	TypeCallPeerJoined  = "call.peer_joined"
	TypeCallJoined      = "call.joined"
)
