package models

import (
	"time"

	"github.com/google/uuid"
)

// CartSnapshot holds the serialized cart for one account, one row per owner.
// The blob is opaque here; the cart package owns its shape. A snapshot that
// fails to decode is treated as an empty cart, never as an error.
type CartSnapshot struct {
	OwnerID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"owner_id"`
	Data      []byte    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}
