package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestGetHighScoresEmpty(t *testing.T) {
	r := testRouter(t, singleCountryPool(), time.Minute)

	w := doJSON(t, r, http.MethodGet, "/api/high-scores", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp HighScoresResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.HighScores == nil {
		t.Error("expected an empty array, not null")
	}
	if len(resp.HighScores) != 0 {
		t.Errorf("expected no records, got %d", len(resp.HighScores))
	}
}

func TestSaveHighScore(t *testing.T) {
	r := testRouter(t, singleCountryPool(), time.Minute)

	w := doJSON(t, r, http.MethodPost, "/api/high-scores", "", SaveHighScoreRequest{
		PlayerName:        "Maria",
		Score:             120,
		QuestionsAnswered: 14,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created CreatedResponse
	json.NewDecoder(w.Body).Decode(&created)
	if created.ID <= 0 {
		t.Errorf("expected a positive row id, got %d", created.ID)
	}

	w = doJSON(t, r, http.MethodGet, "/api/high-scores", "", nil)
	var resp HighScoresResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.HighScores) != 1 || resp.HighScores[0].Name != "Maria" || resp.HighScores[0].Score != 120 {
		t.Errorf("unexpected records: %+v", resp.HighScores)
	}
}

func TestSaveHighScoreValidation(t *testing.T) {
	r := testRouter(t, singleCountryPool(), time.Minute)

	cases := []struct {
		name string
		req  SaveHighScoreRequest
	}{
		{"blank name", SaveHighScoreRequest{PlayerName: "  ", Score: 10, QuestionsAnswered: 1}},
		{"negative score", SaveHighScoreRequest{PlayerName: "Maria", Score: -1, QuestionsAnswered: 1}},
		{"zero questions", SaveHighScoreRequest{PlayerName: "Maria", Score: 10, QuestionsAnswered: 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/high-scores", "", tc.req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestSaveHighScoreCapsName(t *testing.T) {
	r := testRouter(t, singleCountryPool(), time.Minute)

	w := doJSON(t, r, http.MethodPost, "/api/high-scores", "", SaveHighScoreRequest{
		PlayerName:        "abcdefghijklmnopqrstuvwxyz",
		Score:             5,
		QuestionsAnswered: 1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/high-scores", "", nil)
	var resp HighScoresResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if got := resp.HighScores[0].Name; got != "abcdefghijklmnopqrst" {
		t.Errorf("expected name capped at 20 runes, got %q", got)
	}
}

func TestTopScoresRanking(t *testing.T) {
	r := testRouter(t, singleCountryPool(), time.Minute)

	for i := 0; i < 12; i++ {
		w := doJSON(t, r, http.MethodPost, "/api/high-scores", "", SaveHighScoreRequest{
			PlayerName:        fmt.Sprintf("player-%d", i),
			Score:             i * 10,
			QuestionsAnswered: i + 1,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("insert %d: expected 201, got %d", i, w.Code)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/api/high-scores", "", nil)
	var resp HighScoresResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.HighScores) != 10 {
		t.Fatalf("expected list truncated to 10, got %d", len(resp.HighScores))
	}
	if resp.HighScores[0].Score != 110 {
		t.Errorf("expected top score 110, got %d", resp.HighScores[0].Score)
	}
	for i := 1; i < len(resp.HighScores); i++ {
		if resp.HighScores[i].Score > resp.HighScores[i-1].Score {
			t.Fatalf("scores not descending at index %d", i)
		}
	}
}

func TestSaveSessionAndAnswerLogs(t *testing.T) {
	r := testRouter(t, singleCountryPool(), time.Minute)

	w := doJSON(t, r, http.MethodPost, "/api/game-sessions", "", SaveSessionRequest{
		PlayerName:        "Maria",
		FinalScore:        50,
		QuestionsAnswered: 6,
		LivesRemaining:    0,
		MaxDifficulty:     2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("session: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created CreatedResponse
	json.NewDecoder(w.Body).Decode(&created)
	if created.ID <= 0 {
		t.Fatalf("expected a positive session id, got %d", created.ID)
	}

	w = doJSON(t, r, http.MethodPost, "/api/answer-logs", "", SaveAnswerLogsRequest{
		SessionID: created.ID,
		AnswerLogs: []AnswerLogItem{
			{
				CountryCode:   "FR",
				CountryName:   "France",
				QuestionType:  "capital",
				Difficulty:    1,
				UserAnswer:    "Paris",
				CorrectAnswer: "Paris",
				IsCorrect:     true,
				PointsEarned:  10,
			},
			{
				CountryCode:   "JP",
				CountryName:   "Japan",
				QuestionType:  "flag",
				Difficulty:    2,
				UserAnswer:    "China",
				CorrectAnswer: "Japan",
				IsCorrect:     false,
				PointsEarned:  0,
			},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("logs: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var inserted InsertedResponse
	json.NewDecoder(w.Body).Decode(&inserted)
	if inserted.Inserted != 2 {
		t.Errorf("expected 2 inserted, got %d", inserted.Inserted)
	}
}

func TestSaveSessionValidation(t *testing.T) {
	r := testRouter(t, singleCountryPool(), time.Minute)

	valid := SaveSessionRequest{
		PlayerName:        "Maria",
		FinalScore:        50,
		QuestionsAnswered: 6,
		LivesRemaining:    1,
		MaxDifficulty:     2,
	}

	cases := []struct {
		name   string
		mutate func(*SaveSessionRequest)
	}{
		{"blank name", func(r *SaveSessionRequest) { r.PlayerName = " " }},
		{"negative score", func(r *SaveSessionRequest) { r.FinalScore = -1 }},
		{"zero questions", func(r *SaveSessionRequest) { r.QuestionsAnswered = 0 }},
		{"too many lives", func(r *SaveSessionRequest) { r.LivesRemaining = 4 }},
		{"difficulty out of range", func(r *SaveSessionRequest) { r.MaxDifficulty = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			w := doJSON(t, r, http.MethodPost, "/api/game-sessions", "", req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestSaveAnswerLogsValidation(t *testing.T) {
	r := testRouter(t, singleCountryPool(), time.Minute)

	w := doJSON(t, r, http.MethodPost, "/api/answer-logs", "", SaveAnswerLogsRequest{
		SessionID:  0,
		AnswerLogs: []AnswerLogItem{{CountryCode: "FR", CountryName: "France", QuestionType: "capital", Difficulty: 1}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing session id: expected 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/answer-logs", "", SaveAnswerLogsRequest{SessionID: 1})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty batch: expected 400, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/answer-logs", "", SaveAnswerLogsRequest{
		SessionID:  1,
		AnswerLogs: []AnswerLogItem{{CountryCode: "FR", CountryName: "France", QuestionType: "capital", Difficulty: 9}},
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad difficulty: expected 400, got %d", w.Code)
	}
}
