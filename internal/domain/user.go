package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the minimal profile record the engine needs: mention
// resolution, participant display, and notification actors.
// Profile CRUD itself lives outside this service.
type User struct {
	ID          string    `gorm:"column:id;primaryKey;type:char(36)" json:"id"`
	Username    string    `gorm:"column:username;uniqueIndex;size:30" json:"username"`
	DisplayName string    `gorm:"column:display_name;size:50" json:"display_name"`
	AvatarURL   string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID when none is set
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// UserRef is the embedded author/actor shape used in list responses
type UserRef struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Ref converts a User to its response shape
func (u User) Ref() UserRef {
	return UserRef{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}
