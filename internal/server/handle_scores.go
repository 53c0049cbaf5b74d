package server

import (
	"net/http"
	"strings"

	"github.com/geoplay/capitalquiz/internal/archive"
	"github.com/geoplay/capitalquiz/internal/game"
)

type HighScoresResponse struct {
	HighScores []archive.HighScoreRecord `json:"highScores"`
}

type SaveHighScoreRequest struct {
	PlayerName        string `json:"playerName"`
	Score             int    `json:"score"`
	QuestionsAnswered int    `json:"questionsAnswered"`
}

type CreatedResponse struct {
	ID int64 `json:"id"`
}

func handleGetHighScores(scores archive.Archive) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// TopScores is best-effort by contract and does not fail.
		top, err := scores.TopScores(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if top == nil {
			top = []archive.HighScoreRecord{}
		}
		writeJSON(w, http.StatusOK, HighScoresResponse{HighScores: top})
	}
}

func handleSaveHighScore(store *archive.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveHighScoreRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		name, ok := playerName(req.PlayerName)
		if !ok {
			writeError(w, http.StatusBadRequest, "player name is required")
			return
		}
		if req.Score < 0 {
			writeError(w, http.StatusBadRequest, "score must be non-negative")
			return
		}
		if req.QuestionsAnswered <= 0 {
			writeError(w, http.StatusBadRequest, "questions answered must be positive")
			return
		}

		id, err := store.InsertHighScore(r.Context(), archive.HighScoreRecord{
			Name:      name,
			Score:     req.Score,
			Questions: req.QuestionsAnswered,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, CreatedResponse{ID: id})
	}
}

// playerName trims and length-caps a submitted name; ok is false when
// nothing is left after trimming.
func playerName(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", false
	}
	if r := []rune(name); len(r) > game.MaxPlayerNameLen {
		name = string(r[:game.MaxPlayerNameLen])
	}
	return name, true
}
