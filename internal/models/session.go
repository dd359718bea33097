package models

import (
	"time"

	"gorm.io/gorm"
)

type SessionStatus string

const (
	StatusScheduled SessionStatus = "SCHEDULED"
	StatusActive    SessionStatus = "ACTIVE"
	StatusPaused    SessionStatus = "PAUSED"
	StatusEnded     SessionStatus = "ENDED"
	StatusCancelled SessionStatus = "CANCELLED"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusActive, StatusPaused, StatusEnded, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether a session in this status accepts no further
// mutation: status, current page, and roster are frozen once ENDED or
// CANCELLED is reached.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusEnded || s == StatusCancelled
}

// CanTransitionTo validates a status change. Any move between the live
// statuses (SCHEDULED, ACTIVE, PAUSED) or into a terminal status is allowed;
// nothing leaves a terminal status.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	if !next.Valid() {
		return false
	}
	return !s.IsTerminal()
}

// Session is a live shared-reading room owned by a host.
type Session struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Title       string        `gorm:"size:200;not null" json:"title"`
	Description string        `gorm:"size:1000" json:"description"`
	Status      SessionStatus `gorm:"type:varchar(20);default:'SCHEDULED';index" json:"status"`

	CurrentPage  int      `gorm:"default:0" json:"current_page"`
	CurrentSpeed *float64 `json:"current_speed"`

	IsPublic    bool `gorm:"default:true" json:"is_public"`
	AllowChat   bool `gorm:"default:true" json:"allow_chat"`
	SyncEnabled bool `gorm:"default:true" json:"sync_enabled"`

	MaxParticipants  int `gorm:"default:50" json:"max_participants"`
	ParticipantCount int `gorm:"default:0" json:"participant_count"`
	PeakParticipants int `gorm:"default:0" json:"peak_participants"`
	TotalMessages    int `gorm:"default:0" json:"total_messages"`
	TotalPageTurns   int `gorm:"default:0" json:"total_page_turns"`

	ScheduledAt *time.Time `json:"scheduled_at"`
	StartedAt   *time.Time `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at"`

	HostID uint `gorm:"not null;index" json:"host_id"`

	// Associations
	Host         User          `gorm:"foreignKey:HostID" json:"host"`
	Participants []Participant `gorm:"foreignKey:SessionID" json:"participants,omitempty"`
}

type SessionResponse struct {
	ID               uint          `json:"id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Status           SessionStatus `json:"status"`
	CurrentPage      int           `json:"current_page"`
	CurrentSpeed     *float64      `json:"current_speed"`
	IsPublic         bool          `json:"is_public"`
	AllowChat        bool          `json:"allow_chat"`
	SyncEnabled      bool          `json:"sync_enabled"`
	MaxParticipants  int           `json:"max_participants"`
	ParticipantCount int           `json:"participant_count"`
	PeakParticipants int           `json:"peak_participants"`
	TotalMessages    int           `json:"total_messages"`
	TotalPageTurns   int           `json:"total_page_turns"`
	ScheduledAt      *time.Time    `json:"scheduled_at"`
	StartedAt        *time.Time    `json:"started_at"`
	EndedAt          *time.Time    `json:"ended_at"`
	HostID           uint          `json:"host_id"`
	Host             UserResponse  `json:"host"`
	CreatedAt        time.Time     `json:"created_at"`
}

func (s *Session) ToResponse() SessionResponse {
	return SessionResponse{
		ID:               s.ID,
		Title:            s.Title,
		Description:      s.Description,
		Status:           s.Status,
		CurrentPage:      s.CurrentPage,
		CurrentSpeed:     s.CurrentSpeed,
		IsPublic:         s.IsPublic,
		AllowChat:        s.AllowChat,
		SyncEnabled:      s.SyncEnabled,
		MaxParticipants:  s.MaxParticipants,
		ParticipantCount: s.ParticipantCount,
		PeakParticipants: s.PeakParticipants,
		TotalMessages:    s.TotalMessages,
		TotalPageTurns:   s.TotalPageTurns,
		ScheduledAt:      s.ScheduledAt,
		StartedAt:        s.StartedAt,
		EndedAt:          s.EndedAt,
		HostID:           s.HostID,
		Host:             s.Host.ToResponse(),
		CreatedAt:        s.CreatedAt,
	}
}
