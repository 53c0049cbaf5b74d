package server

import (
	"net/http"
	"time"

	"github.com/geoplay/capitalquiz/internal/archive"
	"github.com/geoplay/capitalquiz/internal/game"
)

type SaveSessionRequest struct {
	PlayerName        string     `json:"playerName"`
	FinalScore        int        `json:"finalScore"`
	QuestionsAnswered int        `json:"questionsAnswered"`
	LivesRemaining    int        `json:"livesRemaining"`
	MaxDifficulty     int        `json:"maxDifficultyReached"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	EndedAt           *time.Time `json:"endedAt,omitempty"`
}

type AnswerLogItem struct {
	CountryCode   string `json:"countryCode"`
	CountryName   string `json:"countryName"`
	QuestionType  string `json:"questionType"`
	Difficulty    int    `json:"difficulty"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	PointsEarned  int    `json:"pointsEarned"`
}

type SaveAnswerLogsRequest struct {
	SessionID  int64           `json:"sessionId"`
	AnswerLogs []AnswerLogItem `json:"answerLogs"`
}

type InsertedResponse struct {
	Inserted int `json:"inserted"`
}

// handleSaveSession is the create-only endpoint for game session rows.
// All validation happens before any insert.
func handleSaveSession(store *archive.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveSessionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		name, ok := playerName(req.PlayerName)
		if !ok {
			writeError(w, http.StatusBadRequest, "player name is required")
			return
		}
		if req.FinalScore < 0 {
			writeError(w, http.StatusBadRequest, "score must be non-negative")
			return
		}
		if req.QuestionsAnswered <= 0 {
			writeError(w, http.StatusBadRequest, "questions answered must be positive")
			return
		}
		if req.LivesRemaining < 0 || req.LivesRemaining > game.InitialLives {
			writeError(w, http.StatusBadRequest, "lives remaining must be between 0 and 3")
			return
		}
		if req.MaxDifficulty < 1 || req.MaxDifficulty > game.MaxDifficulty {
			writeError(w, http.StatusBadRequest, "max difficulty must be between 1 and 3")
			return
		}

		now := time.Now()
		started, ended := now, now
		if req.StartedAt != nil {
			started = *req.StartedAt
		}
		if req.EndedAt != nil {
			ended = *req.EndedAt
		}

		id, err := store.InsertGameSession(r.Context(), archive.SessionRecord{
			PlayerName:        name,
			FinalScore:        req.FinalScore,
			QuestionsAnswered: req.QuestionsAnswered,
			LivesRemaining:    req.LivesRemaining,
			MaxDifficulty:     req.MaxDifficulty,
			StartedAt:         started,
			EndedAt:           ended,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
	}
}

// handleSaveAnswerLogs batch-inserts a session's answer trail. The
// whole batch is validated first and written in one transaction.
func handleSaveAnswerLogs(store *archive.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveAnswerLogsRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if req.SessionID <= 0 {
			writeError(w, http.StatusBadRequest, "sessionId is required")
			return
		}
		if len(req.AnswerLogs) == 0 {
			writeError(w, http.StatusBadRequest, "answerLogs must not be empty")
			return
		}

		logs := make([]archive.AnswerRecord, 0, len(req.AnswerLogs))
		for _, l := range req.AnswerLogs {
			if l.CountryCode == "" || l.CountryName == "" || l.QuestionType == "" {
				writeError(w, http.StatusBadRequest, "countryCode, countryName and questionType are required")
				return
			}
			if l.Difficulty < 1 || l.Difficulty > game.MaxDifficulty {
				writeError(w, http.StatusBadRequest, "difficulty must be between 1 and 3")
				return
			}
			if l.PointsEarned < 0 {
				writeError(w, http.StatusBadRequest, "points earned must be non-negative")
				return
			}
			logs = append(logs, archive.AnswerRecord{
				CountryCode:   l.CountryCode,
				CountryName:   l.CountryName,
				QuestionType:  l.QuestionType,
				Difficulty:    l.Difficulty,
				UserAnswer:    l.UserAnswer,
				CorrectAnswer: l.CorrectAnswer,
				IsCorrect:     l.IsCorrect,
				Points:        l.PointsEarned,
			})
		}

		if err := store.InsertAnswerLogs(r.Context(), req.SessionID, logs); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, InsertedResponse{Inserted: len(logs)})
	}
}
