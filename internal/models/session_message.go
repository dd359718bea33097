package models

import (
	"time"

	"gorm.io/gorm"
)

type MessageType string

const (
	ChatMessage       MessageType = "CHAT"
	SystemMessage     MessageType = "SYSTEM"
	HighlightMessage  MessageType = "HIGHLIGHT"
	QuestionMessage   MessageType = "QUESTION"
	AnnotationMessage MessageType = "ANNOTATION"
)

func (t MessageType) Valid() bool {
	switch t {
	case ChatMessage, SystemMessage, HighlightMessage, QuestionMessage, AnnotationMessage:
		return true
	}
	return false
}

// SessionMessage is a chat/annotation entry scoped to a session. Rows are
// immutable once created; there is no update or delete path.
type SessionMessage struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Client-generated UUID so a retried send cannot create a duplicate row.
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_author;not null" json:"client_id"`

	SessionID uint `gorm:"not null;index" json:"session_id"`
	AuthorID  uint `gorm:"not null;uniqueIndex:idx_client_author" json:"author_id"`
	Author    User `gorm:"foreignKey:AuthorID" json:"author"`

	Type       MessageType `gorm:"type:varchar(20);default:'CHAT'" json:"type"`
	Content    string      `gorm:"type:text;not null" json:"content"`
	PageNumber *int        `json:"page_number"`
}

type SessionMessageResponse struct {
	ID         uint         `json:"id"`
	ClientID   string       `json:"client_id"`
	SessionID  uint         `json:"session_id"`
	AuthorID   uint         `json:"author_id"`
	Author     UserResponse `json:"author"`
	Type       MessageType  `json:"type"`
	Content    string       `json:"content"`
	PageNumber *int         `json:"page_number"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (m *SessionMessage) ToResponse() SessionMessageResponse {
	return SessionMessageResponse{
		ID:         m.ID,
		ClientID:   m.ClientID,
		SessionID:  m.SessionID,
		AuthorID:   m.AuthorID,
		Author:     m.Author.ToResponse(),
		Type:       m.Type,
		Content:    m.Content,
		PageNumber: m.PageNumber,
		CreatedAt:  m.CreatedAt,
	}
}
