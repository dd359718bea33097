package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the identity referenced by participants and message authors.
// Credential management lives in a separate auth service; this backend only
// ever reads users resolved from a bearer token.
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username    string     `gorm:"uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string     `json:"display_name"`
	Avatar      string     `json:"avatar"`
	IsOnline    bool       `gorm:"default:false" json:"is_online"`
	LastSeen    *time.Time `json:"last_seen"`
}

type UserResponse struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Avatar      string     `json:"avatar"`
	IsOnline    bool       `json:"is_online"`
	LastSeen    *time.Time `json:"last_seen"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		IsOnline:    u.IsOnline,
		LastSeen:    u.LastSeen,
	}
}
