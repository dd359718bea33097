package repository

import (
	"time"

	"github.com/yhafez/read-master-sub002/internal/models"
	"gorm.io/gorm"
)

type SessionMessageRepository struct {
	db *gorm.DB
}

func NewSessionMessageRepository(db *gorm.DB) *SessionMessageRepository {
	return &SessionMessageRepository{db: db}
}

func (r *SessionMessageRepository) Create(message *models.SessionMessage) error {
	return r.db.Create(message).Error
}

func (r *SessionMessageRepository) FindByID(id uint) (*models.SessionMessage, error) {
	var message models.SessionMessage
	err := r.db.Preload("Author").First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *SessionMessageRepository) FindByClientID(clientID string, authorID uint) (*models.SessionMessage, error) {
	var message models.SessionMessage
	err := r.db.Where("client_id = ? AND author_id = ?", clientID, authorID).
		Preload("Author").
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListBySession pages newest-first. The compound ordering key
// (created_at DESC, id DESC) makes pagination stable when two messages share
// a timestamp.
func (r *SessionMessageRepository) ListBySession(sessionID uint, cursor uint, limit int) ([]models.SessionMessage, error) {
	var messages []models.SessionMessage
	q := r.db.Where("session_id = ?", sessionID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Preload("Author").
		Find(&messages).Error
	return messages, err
}

// ListSince returns messages after the watermark oldest-first, so a client
// draining a backlog one page at a time can advance its watermark without
// skipping rows.
func (r *SessionMessageRepository) ListSince(sessionID uint, since time.Time, limit int) ([]models.SessionMessage, error) {
	var messages []models.SessionMessage
	err := r.db.Where("session_id = ? AND created_at > ?", sessionID, since).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Preload("Author").
		Find(&messages).Error
	return messages, err
}
