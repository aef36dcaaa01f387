package httpdto

// PresenceResponse maps user ids to their online state.
type PresenceResponse struct {
	Online map[string]bool `json:"online"`
}
