package httpdto

// CreateContactRequest is used for POST /v1/contacts
type CreateContactRequest struct {
	UserID        string `json:"userId" binding:"required,uuid"`
	ServiceDomain string `json:"serviceDomain" binding:"required,oneof=MEETING HOBBY LEARNING"`
}
