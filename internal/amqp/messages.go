package amqp

import (
	"encoding/json"
	"time"
)

// Entity kinds carried in change messages.
const (
	EntityClient  = "client"
	EntityInvoice = "invoice"
	EntityMeeting = "meeting"
	EntityProject = "project"
)

// Operations carried in change messages.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeMessage announces that one stored entity changed. It carries
// only the identity of the change; consumers reload what they need from
// the database.
type ChangeMessage struct {
	Entity    string    `json:"entity"`
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change message stamped with the current time.
func NewChangeMessage(entity, id, op string) *ChangeMessage {
	return &ChangeMessage{
		Entity:    entity,
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
