package websocket

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ondot-chat/internal/events"
	"ondot-chat/internal/middleware"
	"ondot-chat/internal/services"
	"ondot-chat/internal/transport/httpdto"
	ondot_errors "ondot-chat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	relationshipHeader = "X-Relationship-Id"
	relationshipQuery  = "relationship_id"
)

type Handler struct {
	gateway  *Gateway
	hub      *Hub
	chat     *services.ChatService
	calls    *services.CallService
	logger   *WebSocketLogger
	upgrader websocket.Upgrader
}

func NewHandler(gateway *Gateway, hub *Hub, chat *services.ChatService, calls *services.CallService, logger *WebSocketLogger) *Handler {
	return &Handler{
		gateway: gateway,
		hub:     hub,
		chat:    chat,
		calls:   calls,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/ws", h.Main)
	r.GET("/ws/chat", h.Chat)
	r.GET("/ws/call", h.Call)
}

func (h *Handler) Main(c *gin.Context) { h.serve(c, events.ChannelMain) }
func (h *Handler) Chat(c *gin.Context) { h.serve(c, events.ChannelChat) }
func (h *Handler) Call(c *gin.Context) { h.serve(c, events.ChannelCall) }

func (h *Handler) serve(c *gin.Context, ch events.Channel) {
	identity, err := h.gateway.Authenticate(c.Request.Context(), requestToken(c.Request))
	if err != nil {
		c.AbortWithStatusJSON(ondot_errors.HTTPStatus(err), httpdto.FromError(err))
		return
	}

	var relationshipID int64
	if ch != events.ChannelMain {
		relationshipID, err = requestRelationship(c.Request)
		if err == nil {
			_, err = h.chat.Authorize(c.Request.Context(), relationshipID, identity.UserID)
		}
		if err != nil {
			c.AbortWithStatusJSON(ondot_errors.HTTPStatus(err), httpdto.FromError(err))
			return
		}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("upgrade_failed", identity.UserID, "", err)
		return
	}

	// the connection outlives the request context once hijacked
	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()

	client := NewClient(conn, identity, ch, relationshipID, h.logger)
	if err := h.gateway.Attach(ctx, client); err != nil {
		h.logger.Error("attach_failed", identity.UserID, client.ID, err)
		_ = conn.WriteMessage(websocket.CloseMessage, attachCloseMessage(err))
		_ = conn.Close()
		return
	}
	defer h.gateway.Disconnect(ctx, client)

	go client.writePump()
	h.logger.Info("connected", identity.UserID, client.ID,
		zap.String("channel", string(ch)),
		zap.Int64("relationship_id", relationshipID),
		zap.Int("connections", h.gateway.ConnectionCount()))

	if err := h.enter(ctx, client); err != nil {
		h.logger.Error("enter_failed", identity.UserID, client.ID, err)
		client.Send(events.EncodeError(err, ""))
		return
	}

	client.readPump(ctx, func(ctx context.Context, frame []byte) {
		h.dispatch(ctx, client, frame)
	})
	h.logger.Info("disconnected", identity.UserID, client.ID, zap.String("channel", string(ch)))
}

// enter joins the channel's shared room and sends the opening snapshot.
func (h *Handler) enter(ctx context.Context, c *Client) error {
	switch c.Channel {
	case events.ChannelChat:
		if err := h.hub.Join(ctx, c, events.ChatRoom(c.RelationshipID)); err != nil {
			return err
		}
		snapshot, err := h.chat.Enter(ctx, c.RelationshipID, c.Identity.UserID)
		if err != nil {
			return err
		}
		c.sendEvent(events.TypeChatHistory, snapshot)
	case events.ChannelCall:
		return h.hub.Join(ctx, c, events.CallRoom(c.RelationshipID))
	}
	return nil
}

// dispatch handles one inbound frame. Failures are reported to the client
// as an error event and never close the connection.
func (h *Handler) dispatch(ctx context.Context, c *Client, frame []byte) {
	ev, ref, err := events.Decode(c.Channel, frame)
	if err == nil {
		err = h.handle(ctx, c, ev)
	}
	if err != nil {
		if ondot_errors.Kind(err) == ondot_errors.KindInternal {
			h.logger.Error("event_failed", c.Identity.UserID, c.ID, err)
		} else {
			h.logger.Warn("event_rejected", c.Identity.UserID, c.ID, zap.Error(err))
		}
		c.Send(events.EncodeError(err, ref))
	}
}

func (h *Handler) handle(ctx context.Context, c *Client, ev events.Inbound) error {
	userID := c.Identity.UserID

	switch e := ev.(type) {
	case *events.Ping:
		c.sendEvent(events.TypePong, nil)
		return nil

	case *events.SendMessage:
		m, err := h.chat.Send(ctx, services.SendInput{
			RelationshipID: c.RelationshipID,
			SenderID:       userID,
			ConnID:         c.ID,
			Content:        e.Content,
			Kind:           e.Kind,
		})
		if err != nil {
			return err
		}
		c.sendEvent(events.TypeMessageSent, m)
		return nil

	case *events.Typing:
		return h.chat.Typing(ctx, c.RelationshipID, userID, c.ID)

	case *events.CallSignal:
		return h.calls.Relay(ctx, c.RelationshipID, userID, c.ID, e)

	case *events.CallJoin:
		ack, err := h.calls.CalleeJoin(ctx, c.RelationshipID, userID, c.ID)
		if err != nil {
			return err
		}
		if ack != nil {
			c.Send(ack)
		}
		return nil

	case *events.CallFinish:
		return h.calls.Finish(ctx, c.RelationshipID, userID, c.ID, e.DurationSeconds)

	default:
		return fmt.Errorf("unhandled event %T: %w", ev, ondot_errors.ErrInvalidInput)
	}
}

// attachCloseMessage tells the client whether reconnecting elsewhere may help.
func attachCloseMessage(err error) []byte {
	if ondot_errors.Kind(err) == ondot_errors.KindUnavailable {
		return websocket.FormatCloseMessage(websocket.CloseServiceRestart, "shutting down")
	}
	return websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "could not join rooms")
}

// requestToken reads the bearer token from the Authorization header, or
// from the token query parameter for clients that cannot set headers.
func requestToken(r *http.Request) string {
	if token := middleware.BearerToken(r); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func requestRelationship(r *http.Request) (int64, error) {
	raw := r.Header.Get(relationshipHeader)
	if raw == "" {
		raw = r.URL.Query().Get(relationshipQuery)
	}
	if raw == "" {
		return 0, fmt.Errorf("relationship id is required: %w", ondot_errors.ErrInvalidInput)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("relationship id %q: %w", raw, ondot_errors.ErrInvalidInput)
	}
	return id, nil
}
