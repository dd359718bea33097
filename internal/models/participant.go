package models

import "time"

// Participant is a user's membership in a session. A (session_id, user_id)
// pair is unique; once deactivated the row never goes active again.
type Participant struct {
	ID        uint `gorm:"primarykey" json:"id"`
	SessionID uint `gorm:"not null;uniqueIndex:idx_session_user" json:"session_id"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_session_user" json:"user_id"`

	IsHost      bool `gorm:"default:false" json:"is_host"`
	IsModerator bool `gorm:"default:false" json:"is_moderator"`
	IsSynced    bool `gorm:"default:true" json:"is_synced"`

	CurrentPage int `gorm:"default:0" json:"current_page"`

	JoinedAt time.Time  `gorm:"autoCreateTime" json:"joined_at"`
	LeftAt   *time.Time `json:"left_at"`
	IsActive bool       `gorm:"default:true;index" json:"is_active"`

	User    User    `gorm:"foreignKey:UserID" json:"user"`
	Session Session `gorm:"foreignKey:SessionID" json:"-"`
}

type ParticipantResponse struct {
	ID          uint         `json:"id"`
	SessionID   uint         `json:"session_id"`
	UserID      uint         `json:"user_id"`
	IsHost      bool         `json:"is_host"`
	IsModerator bool         `json:"is_moderator"`
	IsSynced    bool         `json:"is_synced"`
	CurrentPage int          `json:"current_page"`
	JoinedAt    time.Time    `json:"joined_at"`
	LeftAt      *time.Time   `json:"left_at"`
	IsActive    bool         `json:"is_active"`
	User        UserResponse `json:"user"`
}

func (p *Participant) ToResponse() ParticipantResponse {
	return ParticipantResponse{
		ID:          p.ID,
		SessionID:   p.SessionID,
		UserID:      p.UserID,
		IsHost:      p.IsHost,
		IsModerator: p.IsModerator,
		IsSynced:    p.IsSynced,
		CurrentPage: p.CurrentPage,
		JoinedAt:    p.JoinedAt,
		LeftAt:      p.LeftAt,
		IsActive:    p.IsActive,
		User:        p.User.ToResponse(),
	}
}
