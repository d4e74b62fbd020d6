package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxAdviceContentRunes bounds the stored commentary length
const MaxAdviceContentRunes = 500

// Advice is one expert-commentary record for a game
type Advice struct {
	ID             string    `json:"id" db:"id"`
	GameID         string    `json:"gameId" db:"game_id"`
	Source         string    `json:"source" db:"source"`
	Content        string    `json:"content" db:"content"`
	Recommendation *string   `json:"recommendation,omitempty" db:"recommendation"`
	CapturedAt     time.Time `json:"capturedAt" db:"captured_at"`
}

// NewAdvice builds an Advice record with a fresh id and bounded content
func NewAdvice(gameID, source, content string, recommendation *string, capturedAt time.Time) Advice {
	return Advice{
		ID:             uuid.NewString(),
		GameID:         gameID,
		Source:         source,
		Content:        TruncateRunes(content, MaxAdviceContentRunes),
		Recommendation: recommendation,
		CapturedAt:     capturedAt,
	}
}

// TruncateRunes cuts s to at most n runes
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
