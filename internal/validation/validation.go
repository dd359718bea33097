package validation

import (
	"os"
	"strconv"
	"strings"
)

func MaxMessageLength() int {
	maxStr := os.Getenv("MAX_MESSAGE_LENGTH")
	if maxStr == "" {
		return 2000
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 2000
	}
	return max
}

func MaxSessionParticipants() int {
	maxStr := os.Getenv("MAX_SESSION_PARTICIPANTS")
	if maxStr == "" {
		return 50
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 2 {
		return 50
	}
	return max
}

func NormalizeContent(s string) string {
	return strings.TrimSpace(s)
}

// ValidContent checks message content after trimming: non-empty and within
// the configured length cap. Length is counted in bytes, matching the
// server-side column constraint.
func ValidContent(s string) bool {
	s = NormalizeContent(s)
	return s != "" && len(s) <= MaxMessageLength()
}

func ValidPage(page int) bool {
	return page >= 0
}

func ValidTitle(title string) bool {
	title = strings.TrimSpace(title)
	return title != "" && len(title) <= 200
}
