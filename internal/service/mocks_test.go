package service

import (
	"sort"
	"time"

	"github.com/yhafez/read-master-sub002/internal/models"
	"gorm.io/gorm"
)

// MockSessionRepository is an in-memory implementation for testing
type MockSessionRepository struct {
	sessions map[uint]*models.Session
	nextID   uint

	// Finish's terminal cascade also deactivates the roster, so the mock
	// mirrors that link.
	participants *MockParticipantRepository

	updateCalls int
	finishCalls int
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[uint]*models.Session),
		nextID:   1,
	}
}

func (m *MockSessionRepository) Create(session *models.Session) error {
	session.ID = m.nextID
	m.nextID++
	session.CreatedAt = time.Now()
	m.sessions[session.ID] = session
	return nil
}

func (m *MockSessionRepository) FindByID(id uint) (*models.Session, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *MockSessionRepository) ListPublic(limit int) ([]models.Session, error) {
	var result []models.Session
	for _, s := range m.sessions {
		if s.IsPublic && !s.Status.IsTerminal() {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockSessionRepository) Update(sessionID uint, fields map[string]interface{}) error {
	m.updateCalls++
	session, ok := m.sessions[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range fields {
		switch key {
		case "title":
			session.Title = value.(string)
		case "description":
			session.Description = value.(string)
		case "status":
			session.Status = value.(models.SessionStatus)
		case "current_page":
			session.CurrentPage = value.(int)
		case "current_speed":
			speed := value.(float64)
			session.CurrentSpeed = &speed
		case "is_public":
			session.IsPublic = value.(bool)
		case "allow_chat":
			session.AllowChat = value.(bool)
		case "sync_enabled":
			session.SyncEnabled = value.(bool)
		case "scheduled_at":
			at := value.(time.Time)
			session.ScheduledAt = &at
		case "started_at":
			at := value.(time.Time)
			session.StartedAt = &at
		}
	}
	return nil
}

func (m *MockSessionRepository) Finish(sessionID uint, status models.SessionStatus, endedAt time.Time) error {
	m.finishCalls++
	session, ok := m.sessions[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	session.Status = status
	session.EndedAt = &endedAt
	if m.participants != nil {
		for _, p := range m.participants.participants {
			if p.SessionID == sessionID && p.IsActive {
				p.IsActive = false
				left := endedAt
				p.LeftAt = &left
			}
		}
	}
	return nil
}

func (m *MockSessionRepository) IncrementMessageCount(sessionID uint) error {
	session, ok := m.sessions[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	session.TotalMessages++
	return nil
}

func (m *MockSessionRepository) IncrementPageTurns(sessionID uint) error {
	session, ok := m.sessions[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	session.TotalPageTurns++
	return nil
}

func (m *MockSessionRepository) AdjustParticipantCount(sessionID uint, delta int) error {
	session, ok := m.sessions[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	session.ParticipantCount += delta
	if session.ParticipantCount > session.PeakParticipants {
		session.PeakParticipants = session.ParticipantCount
	}
	return nil
}

// MockParticipantRepository is an in-memory implementation for testing
type MockParticipantRepository struct {
	participants map[uint]*models.Participant
	nextID       uint

	deactivateCalls int
}

func NewMockParticipantRepository() *MockParticipantRepository {
	return &MockParticipantRepository{
		participants: make(map[uint]*models.Participant),
		nextID:       1,
	}
}

func (m *MockParticipantRepository) Create(participant *models.Participant) error {
	participant.ID = m.nextID
	m.nextID++
	participant.JoinedAt = time.Now()
	m.participants[participant.ID] = participant
	return nil
}

func (m *MockParticipantRepository) FindBySessionAndUser(sessionID, userID uint) (*models.Participant, error) {
	for _, p := range m.participants {
		if p.SessionID == sessionID && p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockParticipantRepository) ListActive(sessionID uint) ([]models.Participant, error) {
	var result []models.Participant
	for _, p := range m.participants {
		if p.SessionID == sessionID && p.IsActive {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockParticipantRepository) CountActive(sessionID uint) (int64, error) {
	var count int64
	for _, p := range m.participants {
		if p.SessionID == sessionID && p.IsActive {
			count++
		}
	}
	return count, nil
}

func (m *MockParticipantRepository) Deactivate(participantID uint, leftAt time.Time) error {
	m.deactivateCalls++
	p, ok := m.participants[participantID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsActive = false
	p.LeftAt = &leftAt
	return nil
}

func (m *MockParticipantRepository) UpdateSync(participantID uint, isSynced bool, currentPage int) error {
	p, ok := m.participants[participantID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsSynced = isSynced
	p.CurrentPage = currentPage
	return nil
}

func (m *MockParticipantRepository) UpdatePage(participantID uint, currentPage int) error {
	p, ok := m.participants[participantID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.CurrentPage = currentPage
	return nil
}

// MockSessionMessageRepository is an in-memory implementation for testing
type MockSessionMessageRepository struct {
	messages []*models.SessionMessage
	nextID   uint
	clock    time.Time

	createCalls int
	// clientIDErr, when set, is returned from FindByClientID to simulate a
	// store failure distinct from a missing row.
	clientIDErr error
}

func NewMockSessionMessageRepository() *MockSessionMessageRepository {
	return &MockSessionMessageRepository{
		nextID: 1,
		clock:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *MockSessionMessageRepository) Create(message *models.SessionMessage) error {
	m.createCalls++
	message.ID = m.nextID
	m.nextID++
	m.clock = m.clock.Add(time.Second)
	message.CreatedAt = m.clock
	m.messages = append(m.messages, message)
	return nil
}

func (m *MockSessionMessageRepository) FindByID(id uint) (*models.SessionMessage, error) {
	for _, msg := range m.messages {
		if msg.ID == id {
			copied := *msg
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockSessionMessageRepository) FindByClientID(clientID string, authorID uint) (*models.SessionMessage, error) {
	if m.clientIDErr != nil {
		return nil, m.clientIDErr
	}
	for _, msg := range m.messages {
		if msg.ClientID == clientID && msg.AuthorID == authorID {
			copied := *msg
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockSessionMessageRepository) ListBySession(sessionID uint, cursor uint, limit int) ([]models.SessionMessage, error) {
	var result []models.SessionMessage
	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.SessionID != sessionID {
			continue
		}
		if cursor > 0 && msg.ID >= cursor {
			continue
		}
		result = append(result, *msg)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockSessionMessageRepository) ListSince(sessionID uint, since time.Time, limit int) ([]models.SessionMessage, error) {
	var result []models.SessionMessage
	for _, msg := range m.messages {
		if msg.SessionID != sessionID || !msg.CreatedAt.After(since) {
			continue
		}
		result = append(result, *msg)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}
