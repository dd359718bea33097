package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/yhafez/read-master-sub002/internal/models"
)

func newMessageFixture(t *testing.T) (*MessageService, *MockSessionMessageRepository, *models.Session) {
	t.Helper()
	sessionRepo := NewMockSessionRepository()
	participantRepo := NewMockParticipantRepository()
	sessionRepo.participants = participantRepo
	messageRepo := NewMockSessionMessageRepository()

	sessions := NewSessionService(sessionRepo, participantRepo)
	session := mustCreateSession(t, sessions, 7)
	if _, err := sessions.JoinSession(session.ID, 8); err != nil {
		t.Fatalf("JoinSession error = %v", err)
	}

	return NewMessageService(messageRepo, sessionRepo, participantRepo), messageRepo, session
}

func TestSendMessage(t *testing.T) {
	svc, _, session := newMessageFixture(t)

	message, err := svc.SendMessage(session.ID, 8, SendMessageInput{Content: "  starting chapter two  "})
	if err != nil {
		t.Fatalf("SendMessage error = %v", err)
	}
	if message.Content != "starting chapter two" {
		t.Errorf("Content = %q, want trimmed", message.Content)
	}
	if message.Type != models.ChatMessage {
		t.Errorf("Type = %q, want default %q", message.Type, models.ChatMessage)
	}
	if message.ClientID == "" {
		t.Error("ClientID not assigned for a send without one")
	}
}

func TestSendMessageValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   SendMessageInput
		wantErr error
	}{
		{"empty content", SendMessageInput{Content: ""}, ErrEmptyContent},
		{"whitespace content", SendMessageInput{Content: " \n\t "}, ErrEmptyContent},
		{"content at cap", SendMessageInput{Content: strings.Repeat("a", 2000)}, nil},
		{"content over cap", SendMessageInput{Content: strings.Repeat("a", 2001)}, ErrContentTooLong},
		{"unknown type", SendMessageInput{Content: "hi", Type: "SHOUT"}, ErrInvalidType},
		{"negative page", SendMessageInput{Content: "hi", PageNumber: intPtr(-3)}, ErrInvalidPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, messageRepo, session := newMessageFixture(t)
			createsBefore := messageRepo.createCalls

			_, err := svc.SendMessage(session.ID, 8, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SendMessage error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && messageRepo.createCalls != createsBefore {
				t.Error("invalid message reached the store")
			}
		})
	}
}

func TestSendMessageClientIDDedup(t *testing.T) {
	svc, messageRepo, session := newMessageFixture(t)

	input := SendMessageInput{
		ClientID: "3f2b2a9e-0000-4000-8000-000000000001",
		Content:  "did this go through?",
	}
	first, err := svc.SendMessage(session.ID, 8, input)
	if err != nil {
		t.Fatalf("SendMessage error = %v", err)
	}

	// Retrying the same client ID returns the stored row, not a duplicate.
	second, err := svc.SendMessage(session.ID, 8, input)
	if err != nil {
		t.Fatalf("retried SendMessage error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("retry created row %d, want original %d", second.ID, first.ID)
	}
	if messageRepo.createCalls != 1 {
		t.Errorf("store saw %d creates, want 1", messageRepo.createCalls)
	}
}

func TestSendMessageClientIDLookupFailure(t *testing.T) {
	svc, messageRepo, session := newMessageFixture(t)
	storeErr := errors.New("connection reset")
	messageRepo.clientIDErr = storeErr

	// A store failure on the dedup lookup must surface, not fall through to
	// Create and trip the unique index.
	_, err := svc.SendMessage(session.ID, 8, SendMessageInput{
		ClientID: "3f2b2a9e-0000-4000-8000-000000000002",
		Content:  "retry me",
	})
	if !errors.Is(err, storeErr) {
		t.Fatalf("SendMessage error = %v, want %v", err, storeErr)
	}
	if messageRepo.createCalls != 0 {
		t.Errorf("store saw %d creates after failed dedup lookup, want 0", messageRepo.createCalls)
	}
}

func TestSendMessageGuards(t *testing.T) {
	t.Run("chat disabled", func(t *testing.T) {
		sessionRepo := NewMockSessionRepository()
		participantRepo := NewMockParticipantRepository()
		sessionRepo.participants = participantRepo
		sessions := NewSessionService(sessionRepo, participantRepo)

		noChat := false
		session, err := sessions.CreateSession(7, CreateSessionInput{Title: "Quiet room", AllowChat: &noChat})
		if err != nil {
			t.Fatalf("CreateSession error = %v", err)
		}
		svc := NewMessageService(NewMockSessionMessageRepository(), sessionRepo, participantRepo)

		if _, err := svc.SendMessage(session.ID, 7, SendMessageInput{Content: "hello?"}); !errors.Is(err, ErrChatDisabled) {
			t.Errorf("chat send error = %v, want %v", err, ErrChatDisabled)
		}
		// Non-chat types are still allowed.
		if _, err := svc.SendMessage(session.ID, 7, SendMessageInput{
			Content: "p. 14, second paragraph", Type: models.HighlightMessage,
		}); err != nil {
			t.Errorf("highlight send error = %v, want nil", err)
		}
	})

	t.Run("finished session", func(t *testing.T) {
		svc, _, session := newMessageFixture(t)
		sessions := NewSessionService(svc.sessionRepo.(*MockSessionRepository), svc.participantRepo.(*MockParticipantRepository))
		if _, err := sessions.EndSession(session.ID, 7); err != nil {
			t.Fatalf("EndSession error = %v", err)
		}
		if _, err := svc.SendMessage(session.ID, 8, SendMessageInput{Content: "too late"}); !errors.Is(err, ErrSessionFinished) {
			t.Errorf("send to finished error = %v, want %v", err, ErrSessionFinished)
		}
	})

	t.Run("non-participant", func(t *testing.T) {
		svc, _, session := newMessageFixture(t)
		if _, err := svc.SendMessage(session.ID, 42, SendMessageInput{Content: "lurking"}); !errors.Is(err, ErrNotParticipant) {
			t.Errorf("stranger send error = %v, want %v", err, ErrNotParticipant)
		}
	})
}

func TestSendMessageCountsTotal(t *testing.T) {
	svc, _, session := newMessageFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.SendMessage(session.ID, 8, SendMessageInput{Content: fmt.Sprintf("note %d", i)}); err != nil {
			t.Fatalf("SendMessage error = %v", err)
		}
	}

	refreshed, err := svc.sessionRepo.FindByID(session.ID)
	if err != nil {
		t.Fatalf("FindByID error = %v", err)
	}
	if refreshed.TotalMessages != 3 {
		t.Errorf("TotalMessages = %d, want 3", refreshed.TotalMessages)
	}
}

func TestListMessagesPagination(t *testing.T) {
	svc, _, session := newMessageFixture(t)
	for i := 0; i < 120; i++ {
		if _, err := svc.SendMessage(session.ID, 8, SendMessageInput{Content: fmt.Sprintf("message %d", i)}); err != nil {
			t.Fatalf("SendMessage error = %v", err)
		}
	}

	first, err := svc.ListMessages(session.ID, 0, 50)
	if err != nil {
		t.Fatalf("ListMessages error = %v", err)
	}
	if len(first.Messages) != 50 {
		t.Fatalf("first page has %d messages, want 50", len(first.Messages))
	}
	if !first.HasMore {
		t.Fatal("HasMore = false with 70 older messages remaining")
	}
	for i := 1; i < len(first.Messages); i++ {
		if first.Messages[i].ID >= first.Messages[i-1].ID {
			t.Fatalf("page not newest-first at index %d", i)
		}
	}

	second, err := svc.ListMessages(session.ID, first.NextCursor, 50)
	if err != nil {
		t.Fatalf("ListMessages with cursor error = %v", err)
	}
	if len(second.Messages) != 50 {
		t.Fatalf("second page has %d messages, want 50", len(second.Messages))
	}
	if !second.HasMore {
		t.Error("HasMore = false with 20 older messages remaining")
	}

	seen := map[uint]bool{}
	for _, m := range append(first.Messages, second.Messages...) {
		if seen[m.ID] {
			t.Fatalf("message %d appears on both pages", m.ID)
		}
		seen[m.ID] = true
	}

	third, err := svc.ListMessages(session.ID, second.NextCursor, 50)
	if err != nil {
		t.Fatalf("ListMessages with cursor error = %v", err)
	}
	if len(third.Messages) != 20 {
		t.Errorf("third page has %d messages, want 20", len(third.Messages))
	}
	if third.HasMore {
		t.Error("HasMore = true on the final page")
	}
}

func TestListMessagesSince(t *testing.T) {
	svc, _, session := newMessageFixture(t)

	var watermark time.Time
	for i := 0; i < 6; i++ {
		msg, err := svc.SendMessage(session.ID, 8, SendMessageInput{Content: fmt.Sprintf("message %d", i)})
		if err != nil {
			t.Fatalf("SendMessage error = %v", err)
		}
		if i == 2 {
			watermark = msg.CreatedAt
		}
	}

	page, err := svc.ListMessagesSince(session.ID, watermark, 100)
	if err != nil {
		t.Fatalf("ListMessagesSince error = %v", err)
	}
	if len(page.Messages) != 3 {
		t.Fatalf("got %d messages after watermark, want 3", len(page.Messages))
	}
	if page.HasMore {
		t.Error("HasMore = true with the window fully returned")
	}
	for i, m := range page.Messages {
		if !m.CreatedAt.After(watermark) {
			t.Errorf("message %d created at %v, not after watermark %v", m.ID, m.CreatedAt, watermark)
		}
		if i > 0 && !m.CreatedAt.After(page.Messages[i-1].CreatedAt) {
			t.Errorf("since page not oldest-first at index %d", i)
		}
	}
}

func TestListMessagesSinceBacklogPages(t *testing.T) {
	svc, _, session := newMessageFixture(t)

	first, err := svc.SendMessage(session.ID, 8, SendMessageInput{Content: "watermark"})
	if err != nil {
		t.Fatalf("SendMessage error = %v", err)
	}
	for i := 0; i < 60; i++ {
		if _, err := svc.SendMessage(session.ID, 8, SendMessageInput{Content: fmt.Sprintf("burst %d", i)}); err != nil {
			t.Fatalf("SendMessage error = %v", err)
		}
	}

	// A 60-row backlog drains in two pages; the watermark after each page is
	// the newest row received, so nothing is skipped.
	watermark := first.CreatedAt
	total := 0
	for pages := 0; ; pages++ {
		if pages > 2 {
			t.Fatal("backlog did not drain in two pages")
		}
		page, err := svc.ListMessagesSince(session.ID, watermark, 50)
		if err != nil {
			t.Fatalf("ListMessagesSince error = %v", err)
		}
		total += len(page.Messages)
		if !page.HasMore {
			if len(page.Messages) != 10 {
				t.Errorf("final page has %d messages, want 10", len(page.Messages))
			}
			break
		}
		if len(page.Messages) != 50 {
			t.Fatalf("full page has %d messages, want 50", len(page.Messages))
		}
		watermark = page.Messages[len(page.Messages)-1].CreatedAt
	}
	if total != 60 {
		t.Errorf("drained %d messages, want 60", total)
	}
}

func intPtr(v int) *int { return &v }
