// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Username     string   `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email        string   `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string   `json:"-" gorm:"size:255;not null"`
	UserType     UserType `json:"user_type" gorm:"type:varchar(20);not null;default:'artist'"`
	Bio          string   `json:"bio" gorm:"type:text"`
	AvatarURL    string   `json:"avatar_url" gorm:"size:512"`

	// Moderation state, mutated only by the moderation action engine.
	ModerationStatus     ModerationStatus `json:"moderation_status" gorm:"type:varchar(20);default:'active';index"`
	WarningCount         int              `json:"warning_count" gorm:"default:0"`
	SuspendedUntil       *time.Time       `json:"suspended_until"`
	BanReason            string           `json:"ban_reason,omitempty" gorm:"type:text"`
	LastModerationAction *time.Time       `json:"last_moderation_action"`

	// Relationships
	Images  []Image  `json:"images,omitempty" gorm:"foreignKey:OwnerID"`
	Reports []Report `json:"reports,omitempty" gorm:"foreignKey:ReporterID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// IsSuspended reports whether a suspension is still in effect.
func (u *User) IsSuspended(now time.Time) bool {
	return u.ModerationStatus == ModerationStatusSuspended &&
		u.SuspendedUntil != nil && u.SuspendedUntil.After(now)
}
