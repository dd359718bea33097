package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/yhafez/read-master-sub002/internal/models"
	"github.com/yhafez/read-master-sub002/internal/repository"
	"github.com/yhafez/read-master-sub002/internal/validation"
	"gorm.io/gorm"
)

type MessageService struct {
	messageRepo     repository.SessionMessageRepositoryInterface
	sessionRepo     repository.SessionRepositoryInterface
	participantRepo repository.ParticipantRepositoryInterface
}

func NewMessageService(
	messageRepo repository.SessionMessageRepositoryInterface,
	sessionRepo repository.SessionRepositoryInterface,
	participantRepo repository.ParticipantRepositoryInterface,
) *MessageService {
	return &MessageService{
		messageRepo:     messageRepo,
		sessionRepo:     sessionRepo,
		participantRepo: participantRepo,
	}
}

type SendMessageInput struct {
	ClientID   string             `json:"client_id"`
	Content    string             `json:"content"`
	Type       models.MessageType `json:"type"`
	PageNumber *int               `json:"page_number"`
}

// MessagePage is one page of a newest-first cursor fetch.
type MessagePage struct {
	Messages   []models.SessionMessage
	HasMore    bool
	NextCursor uint
}

// SendMessage validates locally before touching the store: content must be
// non-empty after trimming and within the length cap. Re-sends with the same
// client ID return the already-stored row instead of creating a duplicate.
func (s *MessageService) SendMessage(sessionID, authorID uint, input SendMessageInput) (*models.SessionMessage, error) {
	content := validation.NormalizeContent(input.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > validation.MaxMessageLength() {
		return nil, ErrContentTooLong
	}
	if input.Type == "" {
		input.Type = models.ChatMessage
	}
	if !input.Type.Valid() {
		return nil, ErrInvalidType
	}
	if input.PageNumber != nil && !validation.ValidPage(*input.PageNumber) {
		return nil, ErrInvalidPage
	}

	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.IsTerminal() {
		return nil, ErrSessionFinished
	}
	if !session.AllowChat && input.Type == models.ChatMessage {
		return nil, ErrChatDisabled
	}

	participant, err := s.participantRepo.FindBySessionAndUser(sessionID, authorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotParticipant
		}
		return nil, err
	}
	if !participant.IsActive {
		return nil, ErrNotParticipant
	}

	if input.ClientID == "" {
		input.ClientID = uuid.New().String()
	} else {
		existing, err := s.messageRepo.FindByClientID(input.ClientID, authorID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	message := &models.SessionMessage{
		ClientID:   input.ClientID,
		SessionID:  sessionID,
		AuthorID:   authorID,
		Type:       input.Type,
		Content:    content,
		PageNumber: input.PageNumber,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.IncrementMessageCount(sessionID); err != nil {
		return nil, err
	}

	// Reload with author info
	return s.messageRepo.FindByID(message.ID)
}

// ListMessages fetches one newest-first page. It asks the store for limit+1
// rows to learn whether an older page exists.
func (s *MessageService) ListMessages(sessionID uint, cursor uint, limit int) (*MessagePage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	messages, err := s.messageRepo.ListBySession(sessionID, cursor, limit+1)
	if err != nil {
		return nil, err
	}

	page := &MessagePage{Messages: messages}
	if len(messages) > limit {
		page.Messages = messages[:limit]
		page.HasMore = true
	}
	if n := len(page.Messages); n > 0 {
		page.NextCursor = page.Messages[n-1].ID
	}
	return page, nil
}

// ListMessagesSince returns messages created after the watermark,
// oldest-first, with a real HasMore so a polling client can drain a backlog
// larger than one page: after each page its watermark lands on the newest row
// it received, never past rows it has not seen.
func (s *MessageService) ListMessagesSince(sessionID uint, since time.Time, limit int) (*MessagePage, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	messages, err := s.messageRepo.ListSince(sessionID, since, limit+1)
	if err != nil {
		return nil, err
	}

	page := &MessagePage{Messages: messages}
	if len(messages) > limit {
		page.Messages = messages[:limit]
		page.HasMore = true
	}
	return page, nil
}
