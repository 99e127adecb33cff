package domain

import "encoding/json"

// ConnID identifies one websocket connection for its whole life. Ids are
// never reused.
type ConnID string

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRinging Status = "ringing"
	StatusOnCall  Status = "on-call"
)

// Participant is the coordinator's record for one registered connection.
// One-to-one calls use PartnerID, rooms use RoomID, never both.
type Participant struct {
	ConnID    ConnID
	Identity  Identity
	Status    Status
	PartnerID ConnID
	RoomID    RoomID

	// RingID tags the ring that put a pair into StatusRinging and Outgoing
	// marks the side that placed it. Neither is published.
	RingID   uint64
	Outgoing bool
}

func NewParticipant(id ConnID, identity Identity) Participant {
	return Participant{ConnID: id, Identity: identity, Status: StatusIdle}
}

func (p Participant) InCall() bool { return p.PartnerID != "" }

func (p Participant) InRoom() bool { return p.RoomID != "" }

func (p Participant) IsIdle() bool {
	return p.Status == StatusIdle && !p.InCall() && !p.InRoom()
}

// Reset drops every call and room association.
func (p *Participant) Reset() {
	p.Status = StatusIdle
	p.PartnerID = ""
	p.RoomID = ""
	p.RingID = 0
	p.Outgoing = false
}

// participantJSON is the presence view; empty associations are null.
type participantJSON struct {
	ID         UserID  `json:"_id"`
	FullName   string  `json:"fullName"`
	ProfilePic string  `json:"profilePic"`
	Status     Status  `json:"status"`
	PartnerID  *ConnID `json:"partnerId"`
	RoomID     *RoomID `json:"roomId"`
}

func (p Participant) MarshalJSON() ([]byte, error) {
	v := participantJSON{
		ID:         p.Identity.ID,
		FullName:   p.Identity.FullName,
		ProfilePic: p.Identity.ProfilePic,
		Status:     p.Status,
	}
	if p.PartnerID != "" {
		partner := p.PartnerID
		v.PartnerID = &partner
	}
	if p.RoomID != "" {
		room := p.RoomID
		v.RoomID = &room
	}
	return json.Marshal(v)
}

// ShouldInitiate is the mesh tie-break: of two room members, the one with
// the smaller connection id sends the offer.
func ShouldInitiate(self, peer ConnID) bool {
	return self < peer
}
