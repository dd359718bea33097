package client

import (
	"testing"
	"time"

	"github.com/yhafez/read-master-sub002/internal/models"
)

func makeMessage(id uint, createdAt time.Time, content string) models.SessionMessageResponse {
	return models.SessionMessageResponse{
		ID:        id,
		SessionID: 1,
		AuthorID:  1,
		Type:      models.ChatMessage,
		Content:   content,
		CreatedAt: createdAt,
	}
}

func TestMergeMessagesDeduplicates(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	existing := []models.SessionMessageResponse{
		makeMessage(1, base, "one"),
		makeMessage(2, base.Add(time.Second), "two"),
	}
	incoming := []models.SessionMessageResponse{
		makeMessage(2, base.Add(time.Second), "two updated"),
		makeMessage(3, base.Add(2*time.Second), "three"),
	}

	result := MergeMessages(existing, incoming)

	if len(result) != 3 {
		t.Fatalf("MergeMessages returned %d messages, want 3", len(result))
	}
	seen := map[uint]int{}
	for _, m := range result {
		seen[m.ID]++
	}
	for id, count := range seen {
		if count != 1 {
			t.Errorf("message %d appears %d times, want 1", id, count)
		}
	}
	// Last-seen value for a duplicated id is retained.
	for _, m := range result {
		if m.ID == 2 && m.Content != "two updated" {
			t.Errorf("duplicate id 2 content = %q, want %q", m.Content, "two updated")
		}
	}
}

func TestMergeMessagesOrder(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	incoming := []models.SessionMessageResponse{
		makeMessage(1, base, "oldest"),
		makeMessage(4, base.Add(3*time.Second), "newest"),
		makeMessage(2, base.Add(time.Second), "mid"),
		// Same timestamp as id 2; id breaks the tie deterministically.
		makeMessage(3, base.Add(time.Second), "mid-tie"),
	}

	result := MergeMessages(nil, incoming)

	wantOrder := []uint{4, 3, 2, 1}
	if len(result) != len(wantOrder) {
		t.Fatalf("MergeMessages returned %d messages, want %d", len(result), len(wantOrder))
	}
	for i, want := range wantOrder {
		if result[i].ID != want {
			t.Errorf("result[%d].ID = %d, want %d", i, result[i].ID, want)
		}
	}
}

func TestMergeMessagesIdempotent(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := []models.SessionMessageResponse{
		makeMessage(1, base, "one"),
		makeMessage(2, base.Add(time.Second), "two"),
	}
	b := []models.SessionMessageResponse{
		makeMessage(3, base.Add(2*time.Second), "three"),
	}

	once := MergeMessages(a, b)
	again := MergeMessages(once, nil)
	withA := MergeMessages(a, once)

	for name, result := range map[string][]models.SessionMessageResponse{
		"merge(merge(a,b), nil)": again,
		"merge(a, merge(a,b))":   withA,
	} {
		if len(result) != len(once) {
			t.Errorf("%s returned %d messages, want %d", name, len(result), len(once))
			continue
		}
		for i := range result {
			if result[i].ID != once[i].ID {
				t.Errorf("%s result[%d].ID = %d, want %d", name, i, result[i].ID, once[i].ID)
			}
		}
	}
}

func TestMergeMessagesCapKeepsNewest(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var incoming []models.SessionMessageResponse
	for i := 1; i <= MessageCacheLimit+50; i++ {
		incoming = append(incoming, makeMessage(uint(i), base.Add(time.Duration(i)*time.Second), "msg"))
	}

	result := MergeMessages(nil, incoming)

	if len(result) != MessageCacheLimit {
		t.Fatalf("MergeMessages returned %d messages, want %d", len(result), MessageCacheLimit)
	}
	// Newest entry survives at the head; the oldest 50 are evicted.
	if result[0].ID != uint(MessageCacheLimit+50) {
		t.Errorf("result[0].ID = %d, want %d", result[0].ID, MessageCacheLimit+50)
	}
	if result[len(result)-1].ID != 51 {
		t.Errorf("oldest kept ID = %d, want 51", result[len(result)-1].ID)
	}
}

func TestRosterScans(t *testing.T) {
	participants := []models.ParticipantResponse{
		{UserID: 1, IsHost: true, IsSynced: true, IsActive: true},
		{UserID: 2, IsHost: false, IsSynced: true, IsActive: true},
		{UserID: 3, IsHost: false, IsSynced: false, IsActive: false},
	}

	tests := []struct {
		name            string
		userID          uint
		wantHost        bool
		wantParticipant bool
		wantSynced      bool
	}{
		{"host", 1, true, true, true},
		{"synced participant", 2, false, true, true},
		{"inactive participant", 3, false, false, false},
		{"absent user", 99, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserHost(participants, tt.userID); got != tt.wantHost {
				t.Errorf("IsUserHost = %v, want %v", got, tt.wantHost)
			}
			if got := IsUserParticipant(participants, tt.userID); got != tt.wantParticipant {
				t.Errorf("IsUserParticipant = %v, want %v", got, tt.wantParticipant)
			}
			if got := UserSyncStatus(participants, tt.userID); got != tt.wantSynced {
				t.Errorf("UserSyncStatus = %v, want %v", got, tt.wantSynced)
			}
		})
	}
}

func TestRosterScansEmptyRoster(t *testing.T) {
	if IsUserHost(nil, 1) {
		t.Error("IsUserHost on empty roster = true, want false")
	}
	if IsUserParticipant(nil, 1) {
		t.Error("IsUserParticipant on empty roster = true, want false")
	}
	if UserSyncStatus(nil, 1) {
		t.Error("UserSyncStatus on empty roster = true, want false")
	}
}
