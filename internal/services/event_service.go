package services

import (
	"database/sql"
	"time"

	"github.com/atkinsj/dumpbin/internal/models"
	ws "github.com/atkinsj/dumpbin/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(eventType, level, message string, dumpPublicID *string)
	GetRecentEvents(limit int) ([]models.Event, error)
}

// EventService records audit events and pushes them to connected
// websocket clients.
type EventService struct {
	db  *sql.DB
	hub *ws.Hub
}

// NewEventService creates a new EventService. hub may be nil when no live
// push is wanted (tests).
func NewEventService(db *sql.DB, hub *ws.Hub) *EventService {
	return &EventService{db: db, hub: hub}
}

// CreateEvent logs a new event to the database and broadcasts it. Event
// recording is best-effort; a failure is logged, never propagated, so
// callers can fire-and-forget.
func (s *EventService) CreateEvent(eventType, level, message string, dumpPublicID *string) {
	event := models.Event{
		ID:           uuid.New().String(),
		Type:         eventType,
		Level:        level,
		Message:      message,
		DumpPublicID: dumpPublicID,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.Exec(
		"INSERT INTO events (id, type, level, message, dump_public_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.DumpPublicID, event.CreatedAt,
	)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to record event")
		return
	}

	if s.hub != nil {
		if msg, err := ws.NewEventMessage(event); err == nil {
			s.hub.Broadcast <- msg
		}
	}
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(limit int) ([]models.Event, error) {
	rows, err := s.db.Query("SELECT id, type, level, message, dump_public_id, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.DumpPublicID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
