package events

import (
	"github.com/tangerinesoft/photo-service/internal/types"
	"github.com/tangerinesoft/photo-service/internal/types/photos"
)

// Publisher announces catalog changes to connected admin sessions
type Publisher interface {
	PublishPhotoUploaded(photo *photos.Photo)
	PublishPhotoUpdated(photo *photos.Photo)
	PublishPhotoDeleted(photo *photos.Photo)
}

// WebSocketHub is the part of the hub the publisher needs
type WebSocketHub interface {
	Broadcast(event *types.Event)
	ClientCount() int
}

// EventPublisher implements the Publisher interface on top of a hub
type EventPublisher struct {
	hub WebSocketHub
}

func NewEventPublisher(hub WebSocketHub) *EventPublisher {
	return &EventPublisher{hub: hub}
}

func (p *EventPublisher) PublishPhotoUploaded(photo *photos.Photo) {
	p.publish(types.EventPhotoUploaded, photo)
}

func (p *EventPublisher) PublishPhotoUpdated(photo *photos.Photo) {
	p.publish(types.EventPhotoUpdated, photo)
}

func (p *EventPublisher) PublishPhotoDeleted(photo *photos.Photo) {
	p.publish(types.EventPhotoDeleted, photo)
}

func (p *EventPublisher) publish(eventType types.EventType, photo *photos.Photo) {
	// Nobody is watching
	if p.hub.ClientCount() == 0 {
		return
	}

	p.hub.Broadcast(types.NewEvent(eventType, &types.PhotoEvent{
		PhotoID:   photo.ID,
		ObjectKey: photo.ObjectKey,
		Category:  photo.Category,
		URL:       photo.URL,
		FileSize:  photo.FileSize,
	}))
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishPhotoUploaded(*photos.Photo) {}
func (Nop) PublishPhotoUpdated(*photos.Photo)  {}
func (Nop) PublishPhotoDeleted(*photos.Photo)  {}
