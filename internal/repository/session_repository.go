package repository

import (
	"time"

	"github.com/yhafez/read-master-sub002/internal/models"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *models.Session) error {
	return r.db.Create(session).Error
}

func (r *SessionRepository) FindByID(id uint) (*models.Session, error) {
	var session models.Session
	if err := r.db.Preload("Host").First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) ListPublic(limit int) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.Where("is_public = true AND status IN ?",
		[]models.SessionStatus{models.StatusScheduled, models.StatusActive, models.StatusPaused}).
		Order("created_at DESC").
		Limit(limit).
		Preload("Host").
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) Update(sessionID uint, fields map[string]interface{}) error {
	return r.db.Model(&models.Session{}).Where("id = ?", sessionID).Updates(fields).Error
}

// Finish marks the session terminal and cascades participant deactivation in
// one transaction, so a concurrent snapshot reader never observes a terminal
// session with an active roster.
func (r *SessionRepository) Finish(sessionID uint, status models.SessionStatus, endedAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Session{}).Where("id = ?", sessionID).
			Updates(map[string]interface{}{
				"status":   status,
				"ended_at": endedAt,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Participant{}).
			Where("session_id = ? AND is_active = true", sessionID).
			Updates(map[string]interface{}{
				"is_active": false,
				"left_at":   endedAt,
			}).Error
	})
}

func (r *SessionRepository) IncrementMessageCount(sessionID uint) error {
	return r.db.Model(&models.Session{}).Where("id = ?", sessionID).
		Update("total_messages", gorm.Expr("total_messages + 1")).Error
}

func (r *SessionRepository) IncrementPageTurns(sessionID uint) error {
	return r.db.Model(&models.Session{}).Where("id = ?", sessionID).
		Update("total_page_turns", gorm.Expr("total_page_turns + 1")).Error
}

// AdjustParticipantCount shifts participant_count and, on joins, keeps
// peak_participants at the high-water mark.
func (r *SessionRepository) AdjustParticipantCount(sessionID uint, delta int) error {
	updates := map[string]interface{}{
		"participant_count": gorm.Expr("participant_count + ?", delta),
	}
	if delta > 0 {
		updates["peak_participants"] = gorm.Expr("GREATEST(peak_participants, participant_count + ?)", delta)
	}
	return r.db.Model(&models.Session{}).Where("id = ?", sessionID).Updates(updates).Error
}
