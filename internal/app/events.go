package app

import (
	"encoding/json"

	"github.com/dkeye/Callboard/internal/domain"
)

// Outbound event types.
const (
	EventConnected      = "connected"
	EventWhoAmI         = "whoami"
	EventPong           = "pong"
	EventError          = "error"
	EventUsersUpdate    = "users-update"
	EventRoomCreated    = "room-created"
	EventRoomJoined     = "room-joined"
	EventUserJoinedRoom = "user-joined-room"
	EventUserLeftRoom   = "user-left-room"
	EventIncomingCall   = "incoming-call"
	EventCallInitiated  = "call-initiated"
	EventCallAccepted   = "call-accepted"
	EventCallRejected   = "call-rejected"
	EventCallEnded      = "call-ended"
	EventReceiveMessage = "receive-message"
	EventOffer          = "offer"
	EventAnswer         = "answer"
	EventICECandidate   = "ice-candidate"
)

// Reasons carried by call-rejected.
const (
	ReasonBusy     = "busy"
	ReasonDeclined = "declined"
	ReasonNoAnswer = "no-answer"
)

type Connected struct {
	Type string        `json:"type"`
	ID   domain.ConnID `json:"id"`
}

type WhoAmI struct {
	Type        string              `json:"type"`
	ID          domain.ConnID       `json:"id"`
	Participant *domain.Participant `json:"participant,omitempty"`
}

type Pong struct {
	Type string `json:"type"`
}

type Error struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// PresenceEntry encodes as a two element array [connId, participant].
type PresenceEntry struct {
	ID          domain.ConnID
	Participant domain.Participant
}

func (e PresenceEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.ID, e.Participant})
}

type UsersUpdate struct {
	Type  string          `json:"type"`
	Users []PresenceEntry `json:"users"`
}

type RoomCreated struct {
	Type     string          `json:"type"`
	RoomID   domain.RoomID   `json:"roomId"`
	RoomName domain.RoomName `json:"roomName"`
}

type RoomJoined struct {
	Type         string          `json:"type"`
	RoomID       domain.RoomID   `json:"roomId"`
	RoomName     domain.RoomName `json:"roomName,omitempty"`
	Participants []domain.ConnID `json:"participants"`
	InitiateTo   []domain.ConnID `json:"initiateTo"`
}

type UserJoinedRoom struct {
	Type     string        `json:"type"`
	From     domain.ConnID `json:"from"`
	Name     string        `json:"name,omitempty"`
	RoomID   domain.RoomID `json:"roomId"`
	Initiate bool          `json:"initiate"`
}

type UserLeftRoom struct {
	Type   string        `json:"type"`
	From   domain.ConnID `json:"from"`
	RoomID domain.RoomID `json:"roomId"`
}

type IncomingCall struct {
	Type     string        `json:"type"`
	From     domain.ConnID `json:"from"`
	FromName string        `json:"fromName"`
	FromPic  string        `json:"fromPic,omitempty"`
}

type CallInitiated struct {
	Type     string        `json:"type"`
	TargetID domain.ConnID `json:"targetId"`
}

type CallAccepted struct {
	Type string        `json:"type"`
	From domain.ConnID `json:"from"`
}

type CallRejected struct {
	Type   string        `json:"type"`
	Reason string        `json:"reason"`
	From   domain.ConnID `json:"from,omitempty"`
}

type CallEnded struct {
	Type string        `json:"type"`
	From domain.ConnID `json:"from,omitempty"`
}

type ReceiveMessage struct {
	Type      string        `json:"type"`
	From      domain.ConnID `json:"from"`
	Message   string        `json:"message"`
	Timestamp string        `json:"timestamp"`
}

// Relayed carries an offer, answer or ICE candidate exactly as the sender
// wrote it.
type Relayed struct {
	Type      string          `json:"type"`
	From      domain.ConnID   `json:"from"`
	Offer     json.RawMessage `json:"offer,omitempty"`
	Answer    json.RawMessage `json:"answer,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	RoomID    domain.RoomID   `json:"roomId,omitempty"`
}
