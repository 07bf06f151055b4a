package types

import "time"

// EventType represents the type of real-time admin event
type EventType string

const (
	EventPhotoUploaded EventType = "photo.uploaded"
	EventPhotoUpdated  EventType = "photo.updated"
	EventPhotoDeleted  EventType = "photo.deleted"
)

// Event represents a real-time event that can be sent over WebSocket
type Event struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp string    `json:"timestamp"`
}

// PhotoEvent describes a change to one catalog entry
type PhotoEvent struct {
	PhotoID   string `json:"photo_id"`
	ObjectKey string `json:"object_key"`
	Category  string `json:"category"`
	URL       string `json:"url,omitempty"`
	FileSize  int64  `json:"file_size,omitempty"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, data any) *Event {
	return &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
