package contact

import (
	"time"

	"github.com/google/uuid"
)

// ServiceDomain is the vertical a relationship or notification belongs to.
type ServiceDomain string

const (
	DomainMeeting  ServiceDomain = "MEETING"
	DomainHobby    ServiceDomain = "HOBBY"
	DomainLearning ServiceDomain = "LEARNING"
)

func (d ServiceDomain) Valid() bool {
	switch d {
	case DomainMeeting, DomainHobby, DomainLearning:
		return true
	}
	return false
}

// Relationship represents contact_relationships.
// PartyAID is always the initiator and PartyBID the responder.
type Relationship struct {
	ID                int64
	PartyAID          uuid.UUID
	PartyBID          uuid.UUID
	Status            Status
	CounterpartStatus Label
	ServiceDomain     ServiceDomain
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Role is the position a user holds in a relationship.
type Role int

const (
	RoleNone Role = iota
	RoleInitiator
	RoleResponder
)

func (r Relationship) RoleOf(userID uuid.UUID) Role {
	switch userID {
	case r.PartyAID:
		return RoleInitiator
	case r.PartyBID:
		return RoleResponder
	default:
		return RoleNone
	}
}

func (r Relationship) IsParty(userID uuid.UUID) bool {
	return r.RoleOf(userID) != RoleNone
}

// Counterpart returns the other party. ok is false for non-parties.
func (r Relationship) Counterpart(userID uuid.UUID) (uuid.UUID, bool) {
	switch r.RoleOf(userID) {
	case RoleInitiator:
		return r.PartyBID, true
	case RoleResponder:
		return r.PartyAID, true
	default:
		return uuid.Nil, false
	}
}

// AwaitingDecisionBy reports whether userID still has to allow or reject.
func (r Relationship) AwaitingDecisionBy(userID uuid.UUID) bool {
	return r.Status == StatusRequested && r.RoleOf(userID) == RoleResponder
}

// AcceptsMessages reports whether new chat messages may be written.
func (r Relationship) AcceptsMessages() bool {
	return r.Status == StatusRequested || r.Status == StatusAllowed
}

// LabelFor resolves the display status relative to the caller's role.
func (r Relationship) LabelFor(userID uuid.UUID) Label {
	return r.Status.LabelFor(r.RoleOf(userID))
}

// Pair orders two user ids so an unordered pair has one canonical key.
func Pair(a, b uuid.UUID) (low, high uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}
