package models

// SyncState is the full shared-state snapshot a polling client consumes:
// session page position plus the participant roster. Rosters are bounded by
// MaxParticipants, so the snapshot stays small enough to fetch whole.
type SyncState struct {
	Status           SessionStatus         `json:"status"`
	CurrentPage      int                   `json:"current_page"`
	CurrentSpeed     *float64              `json:"current_speed"`
	SyncEnabled      bool                  `json:"sync_enabled"`
	ParticipantCount int                   `json:"participant_count"`
	Participants     []ParticipantResponse `json:"participants"`
}
