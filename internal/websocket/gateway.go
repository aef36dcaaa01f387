package websocket

import (
	"context"
	"fmt"
	"sync"

	"ondot-chat/internal/events"
	"ondot-chat/internal/services"
	ondot_errors "ondot-chat/pkg/errors"
)

// Authenticator validates bearer tokens. Implemented by services.AuthService.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (services.Identity, error)
}

// Gateway owns the connections of this instance and the identity bound to
// each. There is no process wide session state; each gateway is independent.
type Gateway struct {
	auth Authenticator
	hub  *Hub

	mu       sync.RWMutex
	clients  map[string]*Client
	draining bool
}

func NewGateway(auth Authenticator, hub *Hub) *Gateway {
	return &Gateway{
		auth:    auth,
		hub:     hub,
		clients: make(map[string]*Client),
	}
}

// Authenticate runs before the upgrade so a bad token never produces a
// connection.
func (g *Gateway) Authenticate(ctx context.Context, token string) (services.Identity, error) {
	return g.auth.Authenticate(ctx, token)
}

// Attach binds an authenticated client to this instance and joins its
// personal room on the client's channel. On failure nothing is left behind.
func (g *Gateway) Attach(ctx context.Context, c *Client) error {
	g.mu.Lock()
	if g.draining {
		g.mu.Unlock()
		return fmt.Errorf("gateway is shutting down: %w", ondot_errors.ErrServiceUnavailable)
	}
	g.clients[c.ID] = c
	g.mu.Unlock()
	g.hub.Register(c)

	if err := g.hub.Join(ctx, c, events.PersonalRoom(c.Channel, c.Identity.UserID)); err != nil {
		g.Disconnect(ctx, c)
		return err
	}
	return nil
}

// Disconnect leaves every room and forgets the identity. Calling it more
// than once is harmless.
func (g *Gateway) Disconnect(ctx context.Context, c *Client) {
	g.mu.Lock()
	_, bound := g.clients[c.ID]
	delete(g.clients, c.ID)
	g.mu.Unlock()
	if !bound {
		return
	}

	g.hub.LeaveAll(ctx, c)
	g.hub.Unregister(c)
}

// Shutdown refuses new attachments and disconnects every live client, so
// their room memberships are gone from the shared directory before the
// process exits. Unregister closes each send queue, which makes the write
// pump send a close frame and drop the socket.
func (g *Gateway) Shutdown(ctx context.Context) {
	g.mu.Lock()
	g.draining = true
	live := make([]*Client, 0, len(g.clients))
	for _, c := range g.clients {
		live = append(live, c)
	}
	g.mu.Unlock()

	for _, c := range live {
		g.Disconnect(ctx, c)
	}
}

// ConnectionCount returns the number of live connections on this instance.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}
