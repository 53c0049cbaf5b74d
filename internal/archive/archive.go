// Package archive persists and retrieves game results: the top-10 high
// score table plus full game sessions and their answer logs.
package archive

import (
	"context"
	"errors"
	"time"
)

// TopN is how many high scores the archive retains and serves.
const TopN = 10

// ErrDeferred reports that a write could not reach the backing store
// and was parked in the local cache instead. Hosts surface it as a
// warning; it is never fatal to gameplay.
var ErrDeferred = errors.New("result deferred to local cache")

// HighScoreRecord is one row of the high score table.
type HighScoreRecord struct {
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Questions int    `json:"questions"`
	Date      string `json:"date"`
}

// SessionRecord is a finished game as persisted.
type SessionRecord struct {
	PlayerName        string
	FinalScore        int
	QuestionsAnswered int
	LivesRemaining    int
	MaxDifficulty     int
	StartedAt         time.Time
	EndedAt           time.Time
}

// AnswerRecord is one per-question log row belonging to a session.
type AnswerRecord struct {
	CountryCode   string
	CountryName   string
	QuestionType  string
	Difficulty    int
	UserAnswer    string
	CorrectAnswer string
	IsCorrect     bool
	Points        int
}

// Archive is the score collaborator seen by the game host.
type Archive interface {
	// TopScores returns at most TopN records, best score first, ties
	// broken by most recent insertion. No scores yet is an empty
	// slice, not an error.
	TopScores(ctx context.Context) ([]HighScoreRecord, error)
	// Append records a finished game's score.
	Append(ctx context.Context, rec HighScoreRecord) error
}
