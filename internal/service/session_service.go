package service

import (
	"errors"
	"strings"
	"time"

	"github.com/yhafez/read-master-sub002/internal/models"
	"github.com/yhafez/read-master-sub002/internal/repository"
	"github.com/yhafez/read-master-sub002/internal/validation"
	"gorm.io/gorm"
)

type SessionService struct {
	sessionRepo     repository.SessionRepositoryInterface
	participantRepo repository.ParticipantRepositoryInterface
}

func NewSessionService(
	sessionRepo repository.SessionRepositoryInterface,
	participantRepo repository.ParticipantRepositoryInterface,
) *SessionService {
	return &SessionService{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
	}
}

type CreateSessionInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	IsPublic        *bool      `json:"is_public"`
	AllowChat       *bool      `json:"allow_chat"`
	SyncEnabled     *bool      `json:"sync_enabled"`
	MaxParticipants int        `json:"max_participants"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
}

type UpdateSessionInput struct {
	Title        *string               `json:"title"`
	Description  *string               `json:"description"`
	Status       *models.SessionStatus `json:"status"`
	CurrentSpeed *float64              `json:"current_speed"`
	IsPublic     *bool                 `json:"is_public"`
	AllowChat    *bool                 `json:"allow_chat"`
	SyncEnabled  *bool                 `json:"sync_enabled"`
	ScheduledAt  *time.Time            `json:"scheduled_at"`
}

func (s *SessionService) CreateSession(hostID uint, input CreateSessionInput) (*models.Session, error) {
	input.Title = strings.TrimSpace(input.Title)
	if !validation.ValidTitle(input.Title) {
		return nil, ErrInvalidTitle
	}

	maxParticipants := input.MaxParticipants
	if maxParticipants == 0 {
		maxParticipants = validation.MaxSessionParticipants()
	}
	if maxParticipants < 2 {
		return nil, ErrInvalidCapacity
	}

	session := &models.Session{
		Title:           input.Title,
		Description:     strings.TrimSpace(input.Description),
		Status:          models.StatusScheduled,
		IsPublic:        true,
		AllowChat:       true,
		SyncEnabled:     true,
		MaxParticipants: maxParticipants,
		ScheduledAt:     input.ScheduledAt,
		HostID:          hostID,
	}
	if input.IsPublic != nil {
		session.IsPublic = *input.IsPublic
	}
	if input.AllowChat != nil {
		session.AllowChat = *input.AllowChat
	}
	if input.SyncEnabled != nil {
		session.SyncEnabled = *input.SyncEnabled
	}

	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	// The host is the first participant
	host := &models.Participant{
		SessionID: session.ID,
		UserID:    hostID,
		IsHost:    true,
		IsSynced:  true,
		IsActive:  true,
	}
	if err := s.participantRepo.Create(host); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.AdjustParticipantCount(session.ID, 1); err != nil {
		return nil, err
	}

	return s.sessionRepo.FindByID(session.ID)
}

func (s *SessionService) GetSession(sessionID uint) (*models.Session, error) {
	return s.sessionRepo.FindByID(sessionID)
}

func (s *SessionService) ListPublicSessions(limit int) ([]models.Session, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.sessionRepo.ListPublic(limit)
}

// UpdateSession applies host-only mutations, including status transitions.
// Moving to ACTIVE stamps startedAt on the first activation only; moving to a
// terminal status cascades participant deactivation.
func (s *SessionService) UpdateSession(sessionID, userID uint, input UpdateSessionInput) (*models.Session, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != userID {
		return nil, ErrNotHost
	}
	if session.Status.IsTerminal() {
		return nil, ErrSessionFinished
	}

	fields := map[string]interface{}{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if !validation.ValidTitle(title) {
			return nil, ErrInvalidTitle
		}
		fields["title"] = title
	}
	if input.Description != nil {
		fields["description"] = strings.TrimSpace(*input.Description)
	}
	if input.CurrentSpeed != nil {
		fields["current_speed"] = *input.CurrentSpeed
	}
	if input.IsPublic != nil {
		fields["is_public"] = *input.IsPublic
	}
	if input.AllowChat != nil {
		fields["allow_chat"] = *input.AllowChat
	}
	if input.SyncEnabled != nil {
		fields["sync_enabled"] = *input.SyncEnabled
	}
	if input.ScheduledAt != nil {
		fields["scheduled_at"] = *input.ScheduledAt
	}

	var finishWith models.SessionStatus
	if input.Status != nil {
		next := *input.Status
		if !next.Valid() {
			return nil, ErrInvalidStatus
		}
		if !session.Status.CanTransitionTo(next) {
			return nil, ErrSessionFinished
		}
		if next.IsTerminal() {
			finishWith = next
		} else {
			fields["status"] = next
			if next == models.StatusActive && session.StartedAt == nil {
				fields["started_at"] = time.Now()
			}
		}
	}

	if len(fields) > 0 {
		if err := s.sessionRepo.Update(sessionID, fields); err != nil {
			return nil, err
		}
	}
	if finishWith != "" {
		if err := s.sessionRepo.Finish(sessionID, finishWith, time.Now()); err != nil {
			return nil, err
		}
	}

	return s.sessionRepo.FindByID(sessionID)
}

// EndSession terminates a session. A session that never started resolves to
// CANCELLED; a started one resolves to ENDED. The caller does not choose.
func (s *SessionService) EndSession(sessionID, userID uint) (*models.Session, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != userID {
		return nil, ErrNotHost
	}
	if session.Status.IsTerminal() {
		return nil, ErrSessionFinished
	}

	status := models.StatusCancelled
	if session.StartedAt != nil {
		status = models.StatusEnded
	}

	if err := s.sessionRepo.Finish(sessionID, status, time.Now()); err != nil {
		return nil, err
	}

	return s.sessionRepo.FindByID(sessionID)
}

func (s *SessionService) JoinSession(sessionID, userID uint) (*models.Participant, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.IsTerminal() {
		return nil, ErrSessionFinished
	}
	if !session.IsPublic && session.HostID != userID {
		return nil, ErrSessionPrivate
	}

	existing, err := s.participantRepo.FindBySessionAndUser(sessionID, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		if existing.IsActive {
			return nil, ErrAlreadyJoined
		}
		// A deactivated row never goes active again.
		return nil, ErrCannotRejoin
	}

	active, err := s.participantRepo.CountActive(sessionID)
	if err != nil {
		return nil, err
	}
	if active >= int64(session.MaxParticipants) {
		return nil, ErrSessionFull
	}

	participant := &models.Participant{
		SessionID: sessionID,
		UserID:    userID,
		IsSynced:  true,
		IsActive:  true,
	}
	if err := s.participantRepo.Create(participant); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.AdjustParticipantCount(sessionID, 1); err != nil {
		return nil, err
	}

	return s.participantRepo.FindBySessionAndUser(sessionID, userID)
}

// LeaveSession deactivates a non-host participant. The host must end the
// session instead; a host leave attempt performs no mutation.
func (s *SessionService) LeaveSession(sessionID, userID uint) error {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return err
	}
	if session.Status.IsTerminal() {
		return ErrSessionFinished
	}

	participant, err := s.participantRepo.FindBySessionAndUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotParticipant
		}
		return err
	}
	if participant.IsHost {
		return ErrHostCannotLeave
	}
	if !participant.IsActive {
		return ErrNotParticipant
	}

	if err := s.participantRepo.Deactivate(participant.ID, time.Now()); err != nil {
		return err
	}
	return s.sessionRepo.AdjustParticipantCount(sessionID, -1)
}

func (s *SessionService) GetParticipants(sessionID uint) ([]models.Participant, error) {
	return s.participantRepo.ListActive(sessionID)
}
