package websocket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"ondot-chat/config"
	"ondot-chat/internal/domain/contact"
	"ondot-chat/internal/domain/message"
	"ondot-chat/internal/domain/user"
	"ondot-chat/internal/events"
	"ondot-chat/internal/repository"
	"ondot-chat/internal/services"
	"ondot-chat/internal/websocket"
	"ondot-chat/pkg/database/dbtest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type party struct {
	id        uuid.UUID
	sessionID uuid.UUID
	token     string
}

type gatewayEnv struct {
	server   *httptest.Server
	auth     *services.AuthService
	hub      *websocket.Hub
	repos    repository.Repositories
	presence *services.PresenceService
	contacts *services.ContactService
	alice    party
	bob      party
}

func newGatewayEnv(t *testing.T) *gatewayEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)
	repos := repository.New(db)
	logger := zap.NewNop()

	auth := services.NewAuthService(repos.Users, nil, &config.Config{JWTSecret: "test-secret", JWTExpiryMin: 15}, logger)
	hub := websocket.NewHub(websocket.HubConfig{Logger: logger})
	presence := services.NewPresenceService(hub)
	notifier := services.NewNotificationService(services.NotificationServiceConfig{
		Repo:     repos.Notifications,
		Presence: presence,
		Rooms:    hub,
		Logger:   logger,
	})
	chat := services.NewChatService(db, hub, nil, logger)
	calls := services.NewCallService(hub, chat, logger)

	engine := gin.New()
	websocket.NewHandler(websocket.NewGateway(auth, hub), hub, chat, calls, websocket.NewWebSocketLogger(logger)).RegisterRoutes(engine)
	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)

	env := &gatewayEnv{
		server:   server,
		auth:     auth,
		hub:      hub,
		repos:    repos,
		presence: presence,
		contacts: services.NewContactService(repos.Contacts, presence, notifier, logger),
	}
	env.alice = env.newParty(t, "alice")
	env.bob = env.newParty(t, "bob")
	return env
}

// newParty creates a user with a live session and an access token.
func (e *gatewayEnv) newParty(t *testing.T, name string) party {
	t.Helper()
	ctx := context.Background()
	id := uuid.New()
	now := time.Now()
	require.NoError(t, e.repos.Users.CreateProfile(ctx, user.Profile{ID: id, DisplayName: name}, now))
	session := &user.UserSession{ID: uuid.New(), UserID: id, ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, e.repos.Users.CreateSession(ctx, session))
	token, err := e.auth.IssueAccessToken(id, session.ID)
	require.NoError(t, err)
	return party{id: id, sessionID: session.ID, token: token}
}

func (e *gatewayEnv) dial(t *testing.T, path string, p party, relationshipID int64) (*gorilla.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + path
	header := http.Header{}
	if p.token != "" {
		header.Set("Authorization", "Bearer "+p.token)
	}
	if relationshipID != 0 {
		header.Set("X-Relationship-Id", strconv.FormatInt(relationshipID, 10))
	}
	conn, resp, err := gorilla.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Cleanup(func() { _ = conn.Close() })
	}
	return conn, resp, err
}

func (e *gatewayEnv) mustDial(t *testing.T, path string, p party, relationshipID int64) *gorilla.Conn {
	t.Helper()
	conn, _, err := e.dial(t, path, p, relationshipID)
	require.NoError(t, err)
	return conn
}

func (e *gatewayEnv) relate(t *testing.T) int64 {
	t.Helper()
	view, err := e.contacts.RequestContact(context.Background(), e.alice.id, e.bob.id, contact.DomainMeeting)
	require.NoError(t, err)
	return view.ID
}

func send(t *testing.T, conn *gorilla.Conn, eventType string, data any) {
	t.Helper()
	frame, err := events.Encode(eventType, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(gorilla.TextMessage, frame))
}

// roundTrip sends a ping. The pong proves the connection joined its rooms.
func roundTrip(t *testing.T, conn *gorilla.Conn) {
	t.Helper()
	send(t, conn, events.TypePing, nil)
	readUntil(t, conn, events.TypePong)
}

// readUntil skips frames of other types until one of eventType arrives.
func readUntil(t *testing.T, conn *gorilla.Conn, eventType string) events.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, frame, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", eventType)
		var env events.Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		if env.Type == eventType {
			return env
		}
	}
}

func TestGatewayAuthentication(t *testing.T) {
	env := newGatewayEnv(t)

	t.Run("should refuse the upgrade without a token", func(t *testing.T) {
		req := require.New(t)
		_, resp, err := env.dial(t, "/ws", party{}, 0)
		req.Error(err)
		req.NotNil(resp)
		req.Equal(http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("should refuse a chat channel for a non party", func(t *testing.T) {
		req := require.New(t)
		relID := env.relate(t)
		carol := env.newParty(t, "carol")

		_, resp, err := env.dial(t, "/ws/chat", carol, relID)
		req.Error(err)
		req.Equal(http.StatusForbidden, resp.StatusCode)
	})

	t.Run("should refuse an unknown relationship", func(t *testing.T) {
		req := require.New(t)
		_, resp, err := env.dial(t, "/ws/chat", env.alice, 999999)
		req.Error(err)
		req.Equal(http.StatusNotFound, resp.StatusCode)
	})

	t.Run("should require a relationship id on the chat channel", func(t *testing.T) {
		req := require.New(t)
		_, resp, err := env.dial(t, "/ws/chat", env.alice, 0)
		req.Error(err)
		req.Equal(http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("should accept the token as a query parameter", func(t *testing.T) {
		req := require.New(t)
		url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws?token=" + env.alice.token
		conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
		req.NoError(err)
		defer conn.Close()

		send(t, conn, events.TypePing, nil)
		readUntil(t, conn, events.TypePong)
	})
}

func TestGatewayRejectedCredentials(t *testing.T) {
	env := newGatewayEnv(t)
	ctx := context.Background()

	// refused asserts the upgrade failed with 401 and left nothing behind.
	refused := func(t *testing.T, p party) {
		t.Helper()
		req := require.New(t)
		_, resp, err := env.dial(t, "/ws", p, 0)
		req.Error(err)
		req.NotNil(resp)
		req.Equal(http.StatusUnauthorized, resp.StatusCode)

		online, err := env.presence.IsOnline(ctx, p.id)
		req.NoError(err)
		req.False(online)
		req.Zero(env.hub.ClientCount())
	}

	t.Run("should refuse a missing token", func(t *testing.T) {
		refused(t, party{id: env.alice.id})
	})

	t.Run("should refuse an expired token", func(t *testing.T) {
		req := require.New(t)
		expiredIssuer := services.NewAuthService(env.repos.Users, nil, &config.Config{JWTSecret: "test-secret", JWTExpiryMin: -1}, zap.NewNop())
		token, err := expiredIssuer.IssueAccessToken(env.alice.id, env.alice.sessionID)
		req.NoError(err)

		refused(t, party{id: env.alice.id, sessionID: env.alice.sessionID, token: token})
	})

	t.Run("should refuse a token whose session expired", func(t *testing.T) {
		req := require.New(t)
		now := time.Now()
		session := &user.UserSession{ID: uuid.New(), UserID: env.alice.id, ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour)}
		req.NoError(env.repos.Users.CreateSession(ctx, session))
		token, err := env.auth.IssueAccessToken(env.alice.id, session.ID)
		req.NoError(err)

		refused(t, party{id: env.alice.id, sessionID: session.ID, token: token})
	})

	t.Run("should refuse a revoked session", func(t *testing.T) {
		req := require.New(t)
		carol := env.newParty(t, "carol")
		req.NoError(env.auth.RevokeSession(ctx, carol.sessionID))

		refused(t, carol)
	})
}

func TestGatewayPresence(t *testing.T) {
	req := require.New(t)
	env := newGatewayEnv(t)
	ctx := context.Background()

	online, err := env.presence.IsOnline(ctx, env.alice.id)
	req.NoError(err)
	req.False(online)

	conn := env.mustDial(t, "/ws", env.alice, 0)
	roundTrip(t, conn)

	online, err = env.presence.IsOnline(ctx, env.alice.id)
	req.NoError(err)
	req.True(online)

	req.NoError(conn.Close())
	req.Eventually(func() bool {
		online, err := env.presence.IsOnline(ctx, env.alice.id)
		return err == nil && !online
	}, 3*time.Second, 20*time.Millisecond)
}

func TestGatewayChat(t *testing.T) {
	req := require.New(t)
	env := newGatewayEnv(t)
	relID := env.relate(t)

	bobMain := env.mustDial(t, "/ws", env.bob, 0)
	roundTrip(t, bobMain)
	aliceChat := env.mustDial(t, "/ws/chat", env.alice, relID)

	history := readUntil(t, aliceChat, events.TypeChatHistory)
	var snapshot services.EnterResult
	req.NoError(json.Unmarshal(history.Data, &snapshot))
	req.Equal(relID, snapshot.RelationshipID)
	req.Empty(snapshot.Messages)

	t.Run("should preview a message for an absent receiver", func(t *testing.T) {
		req := require.New(t)
		send(t, aliceChat, events.TypeMessageSend, map[string]string{"content": "hello bob"})

		ack := readUntil(t, aliceChat, events.TypeMessageSent)
		var sent message.Message
		req.NoError(json.Unmarshal(ack.Data, &sent))
		req.False(sent.ReceiverRead)

		preview := readUntil(t, bobMain, events.TypeMessagePreview)
		var p events.MessagePreview
		req.NoError(json.Unmarshal(preview.Data, &p))
		req.Equal(sent.ID, p.MessageID)
		req.Equal("hello bob", p.Preview)
	})

	bobChat := env.mustDial(t, "/ws/chat", env.bob, relID)

	t.Run("should mark history read when the receiver enters", func(t *testing.T) {
		req := require.New(t)
		history := readUntil(t, bobChat, events.TypeChatHistory)
		var snapshot services.EnterResult
		req.NoError(json.Unmarshal(history.Data, &snapshot))
		req.Len(snapshot.Messages, 1)
		req.True(snapshot.Messages[0].ReceiverRead)
		req.EqualValues(1, snapshot.MarkedRead)
	})

	t.Run("should deliver live when both are present", func(t *testing.T) {
		req := require.New(t)
		send(t, aliceChat, events.TypeMessageSend, map[string]string{"content": "you there?"})

		received := readUntil(t, bobChat, events.TypeMessageReceived)
		var m message.Message
		req.NoError(json.Unmarshal(received.Data, &m))
		req.Equal("you there?", m.Content)
		req.True(m.ReceiverRead)
	})

	t.Run("should relay typing to the peer", func(t *testing.T) {
		req := require.New(t)
		send(t, bobChat, events.TypeTyping, nil)

		typing := readUntil(t, aliceChat, events.TypePeerTyping)
		var p events.PeerTyping
		req.NoError(json.Unmarshal(typing.Data, &p))
		req.Equal(env.bob.id, p.UserID)
	})

	t.Run("should answer a bad event with an error and stay open", func(t *testing.T) {
		req := require.New(t)
		req.NoError(aliceChat.WriteMessage(gorilla.TextMessage, []byte(`{"type":"call.offer","ref":"r-1"}`)))

		errEnv := readUntil(t, aliceChat, events.TypeError)
		var payload events.ErrorPayload
		req.NoError(json.Unmarshal(errEnv.Data, &payload))
		req.Equal("INVALID_INPUT", payload.Kind)
		req.Equal("r-1", payload.Ref)

		send(t, aliceChat, events.TypePing, nil)
		readUntil(t, aliceChat, events.TypePong)
	})
}

func TestGatewayCall(t *testing.T) {
	req := require.New(t)
	env := newGatewayEnv(t)
	relID := env.relate(t)

	caller := env.mustDial(t, "/ws/call", env.alice, relID)
	callee := env.mustDial(t, "/ws/call", env.bob, relID)
	roundTrip(t, caller)
	roundTrip(t, callee)

	send(t, caller, events.TypeCallOffer, map[string]string{"sdp": "v=0"})
	offer := readUntil(t, callee, events.TypeCallOffer)
	var relayed events.CallRelayed
	req.NoError(json.Unmarshal(offer.Data, &relayed))
	req.Equal(env.alice.id, relayed.From)
	req.JSONEq(`{"sdp":"v=0"}`, string(relayed.Payload))

	send(t, callee, events.TypeCallJoin, nil)
	readUntil(t, callee, events.TypeCallJoined)
	joined := readUntil(t, caller, events.TypeCallPeerJoined)
	var peer events.CallPeerJoined
	req.NoError(json.Unmarshal(joined.Data, &peer))
	req.Equal(env.bob.id, peer.UserID)

	send(t, caller, events.TypeCallFinish, map[string]int64{"durationSeconds": 42})
	finish := readUntil(t, callee, events.TypeCallFinish)
	var finished events.CallFinished
	req.NoError(json.Unmarshal(finish.Data, &finished))
	req.EqualValues(42, finished.DurationSeconds)

	summary, err := env.repos.Messages.GetByID(context.Background(), finished.MessageID)
	req.NoError(err)
	req.Equal(message.KindCallSummary, summary.Kind)
	req.Equal(env.alice.id, summary.SenderID)
}
