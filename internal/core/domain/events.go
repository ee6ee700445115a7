package domain

import "time"

// PostCreatedEvent est publié par le worker quand un post sort de la file pending.
type PostCreatedEvent struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	HasImage  bool      `json:"has_image"`
	CreatedAt time.Time `json:"created_at"`
}

// NewPostCreatedEvent mappe un post vers son event.
func NewPostCreatedEvent(p *Post) PostCreatedEvent {
	return PostCreatedEvent{
		ID:        p.ID,
		Username:  p.Username,
		HasImage:  p.HasImage(),
		CreatedAt: p.CreatedTime(),
	}
}
