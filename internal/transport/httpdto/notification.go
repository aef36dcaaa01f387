package httpdto

// UnreadCountResponse is returned by GET /v1/notifications/unread-count
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
