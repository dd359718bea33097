package repository

import (
	"time"

	"github.com/yhafez/read-master-sub002/internal/models"
	"gorm.io/gorm"
)

type ParticipantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(participant *models.Participant) error {
	return r.db.Create(participant).Error
}

func (r *ParticipantRepository) FindBySessionAndUser(sessionID, userID uint) (*models.Participant, error) {
	var participant models.Participant
	err := r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).
		Preload("User").
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *ParticipantRepository) ListActive(sessionID uint) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.Where("session_id = ? AND is_active = true", sessionID).
		Order("joined_at ASC").
		Preload("User").
		Find(&participants).Error
	return participants, err
}

func (r *ParticipantRepository) CountActive(sessionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Participant{}).
		Where("session_id = ? AND is_active = true", sessionID).
		Count(&count).Error
	return count, err
}

func (r *ParticipantRepository) Deactivate(participantID uint, leftAt time.Time) error {
	return r.db.Model(&models.Participant{}).Where("id = ?", participantID).
		Updates(map[string]interface{}{
			"is_active": false,
			"left_at":   leftAt,
		}).Error
}

func (r *ParticipantRepository) UpdateSync(participantID uint, isSynced bool, currentPage int) error {
	return r.db.Model(&models.Participant{}).Where("id = ?", participantID).
		Updates(map[string]interface{}{
			"is_synced":    isSynced,
			"current_page": currentPage,
		}).Error
}

func (r *ParticipantRepository) UpdatePage(participantID uint, currentPage int) error {
	return r.db.Model(&models.Participant{}).Where("id = ?", participantID).
		Update("current_page", currentPage).Error
}
