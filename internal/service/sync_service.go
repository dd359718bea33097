package service

import (
	"errors"

	"github.com/yhafez/read-master-sub002/internal/models"
	"github.com/yhafez/read-master-sub002/internal/repository"
	"github.com/yhafez/read-master-sub002/internal/validation"
	"gorm.io/gorm"
)

type PageEventType string

const (
	PageEventTurn PageEventType = "TURN"
	PageEventJump PageEventType = "JUMP"
	PageEventSync PageEventType = "SYNC"
)

func (t PageEventType) Valid() bool {
	switch t {
	case PageEventTurn, PageEventJump, PageEventSync:
		return true
	}
	return false
}

type SyncService struct {
	sessionRepo     repository.SessionRepositoryInterface
	participantRepo repository.ParticipantRepositoryInterface
}

func NewSyncService(
	sessionRepo repository.SessionRepositoryInterface,
	participantRepo repository.ParticipantRepositoryInterface,
) *SyncService {
	return &SyncService{
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
	}
}

type PageUpdateInput struct {
	CurrentPage int           `json:"current_page"`
	EventType   PageEventType `json:"event_type"`
}

type PageUpdateResult struct {
	CurrentPage    int `json:"current_page"`
	TotalPageTurns int `json:"total_page_turns"`
}

// GetSyncState builds the full shared-state snapshot: session page position
// plus the active roster.
func (s *SyncService) GetSyncState(sessionID uint) (*models.SyncState, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.ListActive(sessionID)
	if err != nil {
		return nil, err
	}

	roster := make([]models.ParticipantResponse, len(participants))
	for i := range participants {
		roster[i] = participants[i].ToResponse()
	}

	return &models.SyncState{
		Status:           session.Status,
		CurrentPage:      session.CurrentPage,
		CurrentSpeed:     session.CurrentSpeed,
		SyncEnabled:      session.SyncEnabled,
		ParticipantCount: session.ParticipantCount,
		Participants:     roster,
	}, nil
}

// UpdatePage records a page move. The actor's own participant row always
// tracks its page; only host moves drive the session-level current page, and
// only TURN/JUMP events count toward total page turns.
func (s *SyncService) UpdatePage(sessionID, userID uint, input PageUpdateInput) (*PageUpdateResult, error) {
	if !validation.ValidPage(input.CurrentPage) {
		return nil, ErrInvalidPage
	}
	if input.EventType == "" {
		input.EventType = PageEventTurn
	}
	if !input.EventType.Valid() {
		return nil, ErrInvalidStatus
	}

	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.IsTerminal() {
		return nil, ErrSessionFinished
	}

	participant, err := s.participantRepo.FindBySessionAndUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotParticipant
		}
		return nil, err
	}
	if !participant.IsActive {
		return nil, ErrNotParticipant
	}
	if !participant.IsHost && !participant.IsSynced {
		return nil, ErrNotSyncedActor
	}

	if err := s.participantRepo.UpdatePage(participant.ID, input.CurrentPage); err != nil {
		return nil, err
	}

	if participant.IsHost {
		if err := s.sessionRepo.Update(sessionID, map[string]interface{}{
			"current_page": input.CurrentPage,
		}); err != nil {
			return nil, err
		}
	}
	if input.EventType != PageEventSync {
		if err := s.sessionRepo.IncrementPageTurns(sessionID); err != nil {
			return nil, err
		}
	}

	updated, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	return &PageUpdateResult{
		CurrentPage:    updated.CurrentPage,
		TotalPageTurns: updated.TotalPageTurns,
	}, nil
}

// UpdateParticipantSync flips the caller's own follow-the-host flag.
func (s *SyncService) UpdateParticipantSync(sessionID, userID uint, isSynced bool, currentPage int) error {
	if !validation.ValidPage(currentPage) {
		return ErrInvalidPage
	}

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
	if !participant.IsActive {
		return ErrNotParticipant
	}

	return s.participantRepo.UpdateSync(participant.ID, isSynced, currentPage)
}
