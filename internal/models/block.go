// internal/models/block.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Block is a directed edge: Blocker no longer sees content by Blocked.
// The edge is owned by the blocker and hard-deleted on unblock, so there is
// no soft-delete column here.
type Block struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BlockerID uuid.UUID `json:"blocker_id" gorm:"type:uuid;not null;uniqueIndex:idx_blocks_pair;index"`
	BlockedID uuid.UUID `json:"blocked_id" gorm:"type:uuid;not null;uniqueIndex:idx_blocks_pair"`
	Reason    string    `json:"reason,omitempty" gorm:"size:255"`

	// Relationships
	Blocker User `json:"blocker,omitempty" gorm:"foreignKey:BlockerID"`
	Blocked User `json:"blocked,omitempty" gorm:"foreignKey:BlockedID"`
}

func (b *Block) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
