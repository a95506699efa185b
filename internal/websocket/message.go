package websocket

import (
	"encoding/json"

	"github.com/atkinsj/dumpbin/internal/models"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewEventMessage encodes an audit event for broadcast.
func NewEventMessage(event models.Event) ([]byte, error) {
	return json.Marshal(Message{Action: "event", Payload: event})
}

// NewStatsMessage encodes a service stats snapshot for broadcast.
func NewStatsMessage(stats interface{}) ([]byte, error) {
	return json.Marshal(Message{Action: "stats", Payload: stats})
}
