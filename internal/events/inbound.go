package events

import (
	"encoding/json"
	"fmt"

	ondot_errors "ondot-chat/pkg/errors"

	"github.com/go-playground/validator/v10"
)

// Inbound is the closed set of events a client may send. The unexported
// method keeps the set sealed to this package.
type Inbound interface {
	inbound()
}

type Ping struct{}

type SendMessage struct {
	Content string `json:"content" validate:"required,max=4000"`
	Kind    string `json:"kind" validate:"omitempty,oneof=TEXT IMAGE GIFT"`
}

type Typing struct{}

// CallSignal is relayed to the peer without interpretation.
type CallSignal struct {
	Signal  string
	Payload json.RawMessage
}

type CallJoin struct{}

type CallFinish struct {
	DurationSeconds int64 `json:"durationSeconds" validate:"gte=0"`
}

func (*Ping) inbound()        {}
func (*SendMessage) inbound() {}
func (*Typing) inbound()      {}
func (*CallSignal) inbound()  {}
func (*CallJoin) inbound()    {}
func (*CallFinish) inbound()  {}

type factory func() Inbound

func signal(name string) factory {
	return func() Inbound { return &CallSignal{Signal: name} }
}

// per-channel dispatch tables; a type missing here is rejected before any
// handler runs
var inboundTypes = map[Channel]map[string]factory{
	ChannelMain: {
		TypePing: func() Inbound { return &Ping{} },
	},
	ChannelChat: {
		TypePing:        func() Inbound { return &Ping{} },
		TypeMessageSend: func() Inbound { return &SendMessage{} },
		TypeTyping:      func() Inbound { return &Typing{} },
	},
	ChannelCall: {
		TypePing:          func() Inbound { return &Ping{} },
		TypeCallOffer:     signal(TypeCallOffer),
		TypeCallAnswer:    signal(TypeCallAnswer),
		TypeCallCandidate: signal(TypeCallCandidate),
		TypeCallReject:    signal(TypeCallReject),
		TypeCallJoin:      func() Inbound { return &CallJoin{} },
		TypeCallFinish:    func() Inbound { return &CallFinish{} },
	},
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode parses one frame received on ch. The returned ref is the client's
// correlation id, usable even when err is not nil.
func Decode(ch Channel, frame []byte) (Inbound, string, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, "", fmt.Errorf("malformed frame: %w", ondot_errors.ErrInvalidInput)
	}

	newEvent, ok := inboundTypes[ch][env.Type]
	if !ok {
		return nil, env.Ref, fmt.Errorf("event %q not accepted on %s channel: %w", env.Type, ch, ondot_errors.ErrInvalidInput)
	}
	ev := newEvent()

	if sig, ok := ev.(*CallSignal); ok {
		sig.Payload = env.Data
		return sig, env.Ref, nil
	}

	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, ev); err != nil {
			return nil, env.Ref, fmt.Errorf("event %q: %v: %w", env.Type, err, ondot_errors.ErrInvalidInput)
		}
	}
	if err := validate.Struct(ev); err != nil {
		return nil, env.Ref, fmt.Errorf("event %q: %v: %w", env.Type, err, ondot_errors.ErrInvalidInput)
	}
	return ev, env.Ref, nil
}
