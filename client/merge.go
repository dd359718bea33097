package client

import (
	"sort"

	"github.com/yhafez/read-master-sub002/internal/models"
)

// MessageCacheLimit caps the in-memory working set; eviction drops the oldest
// entries.
const MessageCacheLimit = 200

// MergeMessages combines cached and freshly fetched messages. Duplicates are
// collapsed by id with the last-seen value retained, the result is ordered
// newest-first (created_at descending, id descending on ties), and the oldest
// entries beyond MessageCacheLimit are evicted. Pure and idempotent:
// re-merging its own output changes nothing.
func MergeMessages(existing, incoming []models.SessionMessageResponse) []models.SessionMessageResponse {
	byID := make(map[uint]models.SessionMessageResponse, len(existing)+len(incoming))
	for _, m := range existing {
		byID[m.ID] = m
	}
	for _, m := range incoming {
		byID[m.ID] = m
	}

	merged := make([]models.SessionMessageResponse, 0, len(byID))
	for _, m := range byID {
		merged = append(merged, m)
	}

	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID > merged[j].ID
	})

	if len(merged) > MessageCacheLimit {
		merged = merged[:MessageCacheLimit]
	}
	return merged
}

// IsUserHost scans the roster for the caller's entry. Rosters stay small
// (bounded by the session's participant cap), so a linear scan per call is
// fine.
func IsUserHost(participants []models.ParticipantResponse, userID uint) bool {
	for _, p := range participants {
		if p.UserID == userID {
			return p.IsHost
		}
	}
	return false
}

// IsUserParticipant reports whether the user has an active roster entry.
// Absent users are simply not participants; this never errors.
func IsUserParticipant(participants []models.ParticipantResponse, userID uint) bool {
	for _, p := range participants {
		if p.UserID == userID {
			return p.IsActive
		}
	}
	return false
}

// UserSyncStatus reports whether the user's roster entry follows the host's
// page. False for absent users.
func UserSyncStatus(participants []models.ParticipantResponse, userID uint) bool {
	for _, p := range participants {
		if p.UserID == userID {
			return p.IsSynced
		}
	}
	return false
}
