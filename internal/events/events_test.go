package events

import (
	"encoding/json"
	"testing"

	ondot_errors "ondot-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("should decode a chat message", func(t *testing.T) {
		req := require.New(t)

		ev, ref, err := Decode(ChannelChat, []byte(`{"type":"message.send","ref":"r1","data":{"content":"hi"}}`))

		req.NoError(err)
		req.Equal("r1", ref)
		msg, ok := ev.(*SendMessage)
		req.True(ok)
		req.Equal("hi", msg.Content)
	})

	t.Run("should reject events that belong to another channel", func(t *testing.T) {
		req := require.New(t)

		_, ref, err := Decode(ChannelMain, []byte(`{"type":"message.send","ref":"r2","data":{"content":"hi"}}`))

		req.ErrorIs(err, ondot_errors.ErrInvalidInput)
		req.Equal("r2", ref)
	})

	t.Run("should validate payloads", func(t *testing.T) {
		req := require.New(t)

		_, _, err := Decode(ChannelChat, []byte(`{"type":"message.send","data":{"content":""}}`))
		req.ErrorIs(err, ondot_errors.ErrInvalidInput)

		_, _, err = Decode(ChannelChat, []byte(`{"type":"message.send","data":{"content":"x","kind":"CALL_SUMMARY"}}`))
		req.ErrorIs(err, ondot_errors.ErrInvalidInput)

		_, _, err = Decode(ChannelCall, []byte(`{"type":"call.finish","data":{"durationSeconds":-1}}`))
		req.ErrorIs(err, ondot_errors.ErrInvalidInput)
	})

	t.Run("should keep call signal payloads verbatim", func(t *testing.T) {
		req := require.New(t)
		frame := []byte(`{"type":"call.offer","data":{"sdp":"v=0\r\n","extra":[1,2]}}`)

		ev, _, err := Decode(ChannelCall, frame)

		req.NoError(err)
		sig, ok := ev.(*CallSignal)
		req.True(ok)
		req.Equal(TypeCallOffer, sig.Signal)
		req.JSONEq(`{"sdp":"v=0\r\n","extra":[1,2]}`, string(sig.Payload))
	})

	t.Run("should accept events without data", func(t *testing.T) {
		req := require.New(t)

		ev, _, err := Decode(ChannelCall, []byte(`{"type":"call.join"}`))
		req.NoError(err)
		req.IsType(&CallJoin{}, ev)

		ev, _, err = Decode(ChannelMain, []byte(`{"type":"ping"}`))
		req.NoError(err)
		req.IsType(&Ping{}, ev)
	})

	t.Run("should reject malformed frames", func(t *testing.T) {
		_, _, err := Decode(ChannelChat, []byte(`not json`))
		require.ErrorIs(t, err, ondot_errors.ErrInvalidInput)
	})
}

func TestEncode(t *testing.T) {
	req := require.New(t)

	frame, err := Encode(TypeContactChanged, ContactChanged{RelationshipID: 3, Status: "ALLOWED"})
	req.NoError(err)
	req.JSONEq(`{"type":"contact.changed","data":{"relationshipId":3,"status":"ALLOWED"}}`, string(frame))

	var env Envelope
	req.NoError(json.Unmarshal(EncodeError(ondot_errors.ErrForbidden, "r9"), &env))
	req.Equal(TypeError, env.Type)
	req.JSONEq(`{"kind":"FORBIDDEN","message":"forbidden","ref":"r9"}`, string(env.Data))
}

func TestRooms(t *testing.T) {
	req := require.New(t)
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	req.Equal("main:user:00000000-0000-0000-0000-000000000001", PersonalRoom(ChannelMain, id))
	req.NotEqual(PersonalRoom(ChannelMain, id), PersonalRoom(ChannelChat, id))
	req.Equal("chat:5", ChatRoom(5))
	req.Equal("call:5", CallRoom(5))
}
