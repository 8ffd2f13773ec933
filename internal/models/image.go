// internal/models/image.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Image is an artwork listing. The file itself lives in object storage and is
// referenced by StorageKey; FileURL is the public (or CDN) address.
type Image struct {
	BaseModel
	OwnerID      uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title        string         `json:"title" gorm:"size:255;not null"`
	Description  string         `json:"description" gorm:"type:text"`
	FileURL      string         `json:"file_url" gorm:"size:512;not null"`
	ThumbnailURL string         `json:"thumbnail_url" gorm:"size:512"`
	StorageKey   string         `json:"-" gorm:"size:512"`
	Tags         pq.StringArray `json:"tags" gorm:"type:text[]"`
	Price        float64        `json:"price" gorm:"type:decimal(10,2);default:0"`
	Status       ImageStatus    `json:"status" gorm:"type:varchar(20);default:'active';index"`
	ViewCount    int64          `json:"view_count" gorm:"default:0"`

	// Relationships
	Owner User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}
