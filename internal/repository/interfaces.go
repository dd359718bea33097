package repository

import (
	"time"

	"github.com/yhafez/read-master-sub002/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	FindByID(id uint) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
}

// SessionRepositoryInterface defines the contract for session repository operations
type SessionRepositoryInterface interface {
	Create(session *models.Session) error
	FindByID(id uint) (*models.Session, error)
	ListPublic(limit int) ([]models.Session, error)
	Update(sessionID uint, fields map[string]interface{}) error
	// Finish atomically marks the session terminal and deactivates every
	// active participant; partial results are never visible.
	Finish(sessionID uint, status models.SessionStatus, endedAt time.Time) error
	IncrementMessageCount(sessionID uint) error
	IncrementPageTurns(sessionID uint) error
	AdjustParticipantCount(sessionID uint, delta int) error
}

// ParticipantRepositoryInterface defines the contract for participant repository operations
type ParticipantRepositoryInterface interface {
	Create(participant *models.Participant) error
	FindBySessionAndUser(sessionID, userID uint) (*models.Participant, error)
	ListActive(sessionID uint) ([]models.Participant, error)
	CountActive(sessionID uint) (int64, error)
	Deactivate(participantID uint, leftAt time.Time) error
	UpdateSync(participantID uint, isSynced bool, currentPage int) error
	UpdatePage(participantID uint, currentPage int) error
}

// SessionMessageRepositoryInterface defines the contract for session message repository operations
type SessionMessageRepositoryInterface interface {
	Create(message *models.SessionMessage) error
	FindByID(id uint) (*models.SessionMessage, error)
	FindByClientID(clientID string, authorID uint) (*models.SessionMessage, error)
	// ListBySession returns up to limit messages newest-first, strictly older
	// than cursor when cursor > 0.
	ListBySession(sessionID uint, cursor uint, limit int) ([]models.SessionMessage, error)
	// ListSince returns messages created after the given watermark,
	// oldest-first so pages can be drained without skipping rows.
	ListSince(sessionID uint, since time.Time, limit int) ([]models.SessionMessage, error)
}
