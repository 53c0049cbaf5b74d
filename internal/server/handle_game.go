package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/geoplay/capitalquiz/internal/archive"
	"github.com/geoplay/capitalquiz/internal/game"
	"github.com/geoplay/capitalquiz/internal/i18n"
)

type StartRequest struct {
	PlayerName string `json:"playerName"`
	Language   string `json:"language,omitempty"`
}

type StartResponse struct {
	Token string        `json:"token"`
	State StateResponse `json:"state"`
}

type QuestionView struct {
	Prompt     string `json:"prompt"`
	Variant    string `json:"variant"`
	Code       string `json:"code"`
	Flag       string `json:"flag"`
	Difficulty int    `json:"difficulty"`
}

type LogView struct {
	Country       string `json:"country"`
	Code          string `json:"code"`
	Flag          string `json:"flag"`
	Variant       string `json:"variant"`
	Difficulty    int    `json:"difficulty"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Points        int    `json:"points"`
}

type StateResponse struct {
	Phase             string        `json:"phase"`
	PlayerName        string        `json:"playerName"`
	Score             int           `json:"score"`
	Lives             int           `json:"lives"`
	QuestionsAnswered int           `json:"questionsAnswered"`
	Difficulty        int           `json:"difficulty"`
	QuestionsLeft     int           `json:"questionsLeft"`
	AwaitingNext      bool          `json:"awaitingNext"`
	Question          *QuestionView `json:"question"`
	AnswerLog         []LogView     `json:"answerLog"`
	Warning           string        `json:"warning,omitempty"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type FeedbackResponse struct {
	IsCorrect     bool   `json:"isCorrect"`
	CorrectAnswer string `json:"correctAnswer"`
	Points        int    `json:"points"`
	Score         int    `json:"score"`
	Lives         int    `json:"lives"`
	Difficulty    int    `json:"difficulty"`
	DifficultyUp  bool   `json:"difficultyUp"`
	Feedback      string `json:"feedback"`
}

func handleGameStart(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		loc := i18n.New(req.Language)
		token := uuid.NewString()

		sess := game.NewSession(game.Config{
			Pool:          deps.Pool,
			FeedbackDelay: deps.FeedbackDelay,
			Notify:        gameNotifier(deps, token, loc),
		})
		if err := sess.Start(req.PlayerName); err != nil {
			writeError(w, http.StatusBadRequest, "player name is required")
			return
		}
		deps.Sessions.Put(token, sess, loc.Language())

		writeJSON(w, http.StatusOK, StartResponse{
			Token: token,
			State: stateResponse(sess.State(), loc, ""),
		})
	}
}

func handleGameState(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := sessionFrom(r)
		loc := i18n.New(deps.Sessions.Lang(sc.token))
		writeJSON(w, http.StatusOK, stateResponse(sc.sess.State(), loc, deps.Sessions.Warning(sc.token)))
	}
}

func handleAnswer(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := sessionFrom(r)

		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		out, err := sc.sess.SubmitAnswer(req.Answer)
		if err != nil {
			writeResolveError(w, err)
			return
		}

		loc := i18n.New(deps.Sessions.Lang(sc.token))
		respondResolved(w, deps, sc.token, out, feedbackMessage(loc, out, false))
	}
}

func handleSkip(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := sessionFrom(r)

		out, err := sc.sess.Skip()
		if err != nil {
			writeResolveError(w, err)
			return
		}

		loc := i18n.New(deps.Sessions.Lang(sc.token))
		respondResolved(w, deps, sc.token, out, feedbackMessage(loc, out, true))
	}
}

func handleMenu(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc := sessionFrom(r)

		if err := sc.sess.ReturnToMenu(); err != nil {
			writeError(w, http.StatusConflict, "game is not over")
			return
		}
		deps.Sessions.Remove(sc.token)

		writeJSON(w, http.StatusOK, map[string]string{"phase": string(game.PhaseMenu)})
	}
}

func writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrEmptyAnswer):
		writeError(w, http.StatusBadRequest, "answer is required")
	case errors.Is(err, game.ErrAwaitingNext):
		writeError(w, http.StatusConflict, "previous question is still resolving")
	case errors.Is(err, game.ErrNoCurrentQuestion):
		writeError(w, http.StatusConflict, "no question in play")
	case errors.Is(err, game.ErrNotPlaying):
		writeError(w, http.StatusConflict, "game is not in progress")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondResolved(w http.ResponseWriter, deps Deps, token string, out game.Outcome, feedback string) {
	isCorrect := out.IsCorrect
	deps.Broker.Publish(token, GameEvent{
		Type:          "answer_resolved",
		IsCorrect:     &isCorrect,
		CorrectAnswer: out.CorrectAnswer,
		Points:        out.Points,
		Score:         out.Score,
		Lives:         out.Lives,
		Difficulty:    out.Difficulty,
		DifficultyUp:  out.DifficultyUp,
	})

	writeJSON(w, http.StatusOK, FeedbackResponse{
		IsCorrect:     out.IsCorrect,
		CorrectAnswer: out.CorrectAnswer,
		Points:        out.Points,
		Score:         out.Score,
		Lives:         out.Lives,
		Difficulty:    out.Difficulty,
		DifficultyUp:  out.DifficultyUp,
		Feedback:      feedback,
	})
}

// gameNotifier handles the session's deferred transitions: the next
// question after the feedback delay, and game over, which persists the
// result before notifying subscribers.
func gameNotifier(deps Deps, token string, loc i18n.Locale) func(game.Event) {
	return func(ev game.Event) {
		switch ev.Type {
		case game.EventNextQuestion:
			deps.Broker.Publish(token, GameEvent{
				Type:    "next_question",
				Prompt:  questionPrompt(loc, *ev.Question),
				Variant: string(ev.Question.Variant),
			})

		case game.EventGameOver:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			warning := persistResult(ctx, deps, *ev.Summary)
			if warning != "" {
				deps.Sessions.SetWarning(token, warning)
			}
			deps.Broker.Publish(token, GameEvent{
				Type:    "game_over",
				Score:   ev.Summary.Score,
				Lives:   ev.Summary.LivesRemaining,
				Warning: warning,
			})
		}
	}
}

// persistResult archives a finished game. Failures never propagate to
// gameplay; the returned warning is surfaced to the presentation layer.
func persistResult(ctx context.Context, deps Deps, sum game.Summary) string {
	warning := ""

	if err := deps.Scores.Append(ctx, archive.HighScoreRecord{
		Name:      sum.PlayerName,
		Score:     sum.Score,
		Questions: sum.QuestionsAnswered,
		Date:      sum.EndedAt.UTC().Format("2006-01-02 15:04:05"),
	}); err != nil {
		deps.Logger.Warn("high score not persisted", "error", err)
		warning = "high score saved locally only"
	}

	sessionID, err := deps.Store.InsertGameSession(ctx, archive.SessionRecord{
		PlayerName:        sum.PlayerName,
		FinalScore:        sum.Score,
		QuestionsAnswered: sum.QuestionsAnswered,
		LivesRemaining:    sum.LivesRemaining,
		MaxDifficulty:     sum.MaxDifficulty,
		StartedAt:         sum.StartedAt,
		EndedAt:           sum.EndedAt,
	})
	if err != nil {
		deps.Logger.Warn("game session not persisted", "error", err)
		return "game result saved locally only"
	}

	// The session log is most-recent-first; store it in play order.
	logs := make([]archive.AnswerRecord, 0, len(sum.Log))
	for i := len(sum.Log) - 1; i >= 0; i-- {
		l := sum.Log[i]
		logs = append(logs, archive.AnswerRecord{
			CountryCode:   l.Code,
			CountryName:   l.Country,
			QuestionType:  string(l.Variant),
			Difficulty:    l.Difficulty,
			UserAnswer:    l.UserAnswer,
			CorrectAnswer: l.CorrectAnswer,
			IsCorrect:     l.IsCorrect,
			Points:        l.Points,
		})
	}
	if err := deps.Store.InsertAnswerLogs(ctx, sessionID, logs); err != nil {
		deps.Logger.Warn("answer logs not persisted", "error", err, "session_id", sessionID)
		if warning == "" {
			warning = "answer log not saved"
		}
	}
	return warning
}

func questionPrompt(loc i18n.Locale, q game.Question) string {
	switch q.Variant {
	case game.VariantCapital:
		return loc.Message("question.capital", q.Country.Name)
	case game.VariantFlag:
		return loc.Message("question.flag", q.Country.FlagEmoji())
	default:
		return loc.Message("question.reverse", q.Country.Capital)
	}
}

func feedbackMessage(loc i18n.Locale, out game.Outcome, skipped bool) string {
	if skipped {
		return loc.Message("feedback.skipped", out.CorrectAnswer)
	}
	if out.IsCorrect {
		msg := loc.Message("feedback.correctPoints", out.Points)
		if out.DifficultyUp {
			msg += " - " + loc.Message("feedback.difficultyIncrease")
		}
		return msg
	}

	q := out.Question
	switch q.Variant {
	case game.VariantCapital:
		return loc.Message("feedback.wrongCapital", q.Country.Name, q.Country.Capital)
	case game.VariantFlag:
		return loc.Message("feedback.wrongFlag", q.Country.Name)
	default:
		return loc.Message("feedback.wrongCountry", q.Country.Capital, q.Country.Name)
	}
}

func stateResponse(st game.State, loc i18n.Locale, warning string) StateResponse {
	resp := StateResponse{
		Phase:             string(st.Phase),
		PlayerName:        st.PlayerName,
		Score:             st.Score,
		Lives:             st.Lives,
		QuestionsAnswered: st.QuestionsAnswered,
		Difficulty:        st.Difficulty,
		QuestionsLeft:     st.QuestionsLeft,
		AwaitingNext:      st.AwaitingNext,
		AnswerLog:         []LogView{},
		Warning:           warning,
	}
	if st.Current != nil {
		resp.Question = &QuestionView{
			Prompt:     questionPrompt(loc, *st.Current),
			Variant:    string(st.Current.Variant),
			Code:       st.Current.Country.Code,
			Flag:       st.Current.Country.FlagEmoji(),
			Difficulty: st.Current.Country.Difficulty,
		}
	}
	for _, l := range st.Log {
		resp.AnswerLog = append(resp.AnswerLog, LogView{
			Country:       l.Country,
			Code:          l.Code,
			Flag:          game.CountryEntry{Code: l.Code}.FlagEmoji(),
			Variant:       string(l.Variant),
			Difficulty:    l.Difficulty,
			UserAnswer:    l.UserAnswer,
			CorrectAnswer: l.CorrectAnswer,
			IsCorrect:     l.IsCorrect,
			Points:        l.Points,
		})
	}
	return resp
}
