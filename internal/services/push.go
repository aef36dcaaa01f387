//go:generate go run go.uber.org/mock/mockgen -source=push.go -destination=../../mocks/mock_push.go -package=mocks
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ondot-chat/internal/domain/user"

	"github.com/google/uuid"
)

// PushMessage is one device notification.
type PushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title,omitempty"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound,omitempty"`
}

// PushProvider dispatches device notifications.
type PushProvider interface {
	Send(ctx context.Context, messages []PushMessage) error
}

// DeviceTokenSource looks up the active push tokens of a user.
type DeviceTokenSource interface {
	GetActivePushTokens(ctx context.Context, userID uuid.UUID) ([]user.PushToken, error)
}

// ExpoPushProvider posts to an Expo-compatible push API.
type ExpoPushProvider struct {
	endpoint string
	client   *http.Client
}

func NewExpoPushProvider(endpoint string, timeout time.Duration) *ExpoPushProvider {
	return &ExpoPushProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type expoTicket struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type expoResponse struct {
	Data   []expoTicket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (p *ExpoPushProvider) Send(ctx context.Context, messages []PushMessage) error {
	if len(messages) == 0 {
		return nil
	}
	body, err := json.Marshal(messages)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read push response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var parsed expoResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("decode push response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return fmt.Errorf("push rejected: %s: %s", parsed.Errors[0].Code, parsed.Errors[0].Message)
	}
	for i, ticket := range parsed.Data {
		if ticket.Status == "error" {
			return fmt.Errorf("push ticket %d: %s", i, ticket.Message)
		}
	}
	return nil
}
