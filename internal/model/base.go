package model

import "time"

// Base carries the fields shared by every stored entity: an opaque generated
// identifier and storage-managed timestamps.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntityID returns the entity's identifier.
func (b *Base) EntityID() string { return b.ID }

// SetEntityID assigns the entity's identifier.
func (b *Base) SetEntityID(id string) { b.ID = id }
