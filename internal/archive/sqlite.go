package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Store is the sqlite-backed archive.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) TopScores(ctx context.Context) ([]HighScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_name, score, questions_answered, DATE(game_date)
		FROM high_scores
		ORDER BY score DESC, created_at DESC, id DESC
		LIMIT ?
	`, TopN)
	if err != nil {
		return nil, fmt.Errorf("querying high scores: %w", err)
	}
	defer rows.Close()

	scores := []HighScoreRecord{}
	for rows.Next() {
		var rec HighScoreRecord
		if err := rows.Scan(&rec.Name, &rec.Score, &rec.Questions, &rec.Date); err != nil {
			return nil, fmt.Errorf("scanning high score: %w", err)
		}
		scores = append(scores, rec)
	}
	return scores, rows.Err()
}

func (s *Store) Append(ctx context.Context, rec HighScoreRecord) error {
	_, err := s.InsertHighScore(ctx, rec)
	return err
}

// InsertHighScore writes one high score row and returns its id. The
// table keeps every insert; TopScores truncates to TopN at read time.
func (s *Store) InsertHighScore(ctx context.Context, rec HighScoreRecord) (int64, error) {
	gameDate := rec.Date
	if gameDate == "" {
		gameDate = time.Now().UTC().Format("2006-01-02 15:04:05")
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO high_scores (player_name, score, questions_answered, game_date)
		VALUES (?, ?, ?, ?)
	`, rec.Name, rec.Score, rec.Questions, gameDate)
	if err != nil {
		return 0, fmt.Errorf("inserting high score: %w", err)
	}
	return res.LastInsertId()
}

// InsertGameSession writes a finished game and returns the session id
// answer logs should reference.
func (s *Store) InsertGameSession(ctx context.Context, rec SessionRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO game_sessions
			(player_name, final_score, questions_answered, lives_remaining,
			 max_difficulty_reached, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.PlayerName, rec.FinalScore, rec.QuestionsAnswered, rec.LivesRemaining,
		rec.MaxDifficulty,
		rec.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		rec.EndedAt.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, fmt.Errorf("inserting game session: %w", err)
	}
	return res.LastInsertId()
}

// InsertAnswerLogs writes a session's answer trail in one transaction.
func (s *Store) InsertAnswerLogs(ctx context.Context, sessionID int64, logs []AnswerRecord) error {
	if len(logs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answer_logs
			(session_id, country_code, country_name, question_type, difficulty,
			 user_answer, correct_answer, is_correct, points_earned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range logs {
		isCorrect := 0
		if l.IsCorrect {
			isCorrect = 1
		}
		if _, err := stmt.ExecContext(ctx, sessionID, l.CountryCode, l.CountryName,
			l.QuestionType, l.Difficulty, l.UserAnswer, l.CorrectAnswer, isCorrect, l.Points); err != nil {
			return fmt.Errorf("inserting answer log: %w", err)
		}
	}
	return tx.Commit()
}
