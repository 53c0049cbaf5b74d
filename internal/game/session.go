package game

import (
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const (
	InitialLives         = 3
	MaxDifficulty        = 3
	QuestionsPerTier     = 5
	PointsPerDifficulty  = 10
	MaxPlayerNameLen     = 20
	DefaultFeedbackDelay = 2 * time.Second
)

// Phase is the top-level state of a session.
type Phase string

const (
	PhaseMenu     Phase = "menu"
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "gameOver"
)

var (
	ErrNotPlaying         = errors.New("game is not in progress")
	ErrNotGameOver        = errors.New("game is not over")
	ErrAwaitingNext       = errors.New("previous question is still resolving")
	ErrNoCurrentQuestion  = errors.New("no question in play")
	ErrEmptyAnswer        = errors.New("answer is empty")
	ErrPlayerNameRequired = errors.New("player name is required")
)

// EventType identifies a deferred transition the session performed on
// its own, after the feedback delay.
type EventType string

const (
	EventNextQuestion EventType = "next_question"
	EventGameOver     EventType = "game_over"
)

// Event is delivered to the session's Notify hook from the timer
// goroutine, outside the session lock.
type Event struct {
	Type     EventType
	Question *Question // set for EventNextQuestion
	Summary  *Summary  // set for EventGameOver
}

// Outcome is the immediate result of resolving a question via
// SubmitAnswer or Skip. Question is the one that was just resolved,
// kept for feedback rendering; the session has already moved on.
type Outcome struct {
	Question      Question
	IsCorrect     bool
	CorrectAnswer string
	Points        int
	Score         int
	Lives         int
	Difficulty    int
	DifficultyUp  bool
}

// Summary freezes a finished game for archiving.
type Summary struct {
	PlayerName        string
	Score             int
	QuestionsAnswered int
	LivesRemaining    int
	MaxDifficulty     int
	StartedAt         time.Time
	EndedAt           time.Time
	Log               []LogEntry
}

// State is a point-in-time snapshot for rendering.
type State struct {
	Phase             Phase
	PlayerName        string
	Score             int
	Lives             int
	QuestionsAnswered int
	Difficulty        int
	QuestionsLeft     int
	AwaitingNext      bool
	Current           *Question
	Log               []LogEntry
}

// Config tunes a session. Zero values fall back to the game defaults;
// Rand may be seeded for deterministic tests.
type Config struct {
	Pool          Pool
	Lives         int
	FeedbackDelay time.Duration
	Rand          *rand.Rand
	Notify        func(Event)
}

// Session is the game state machine. All transitions are serialized
// under one mutex; the only self-driven transition is the deferred
// advance scheduled after each resolved question, which is cancellable
// and generation-checked so a stale timer can never touch a session
// that was restarted or returned to the menu in the meantime.
type Session struct {
	cfg Config

	mu         sync.Mutex
	gen        uint64
	phase      Phase
	player     string
	score      int
	lives      int
	answered   int
	difficulty int
	used       map[string]struct{}
	log        []LogEntry
	current    *Question
	awaiting   bool
	pending    *time.Timer
	startedAt  time.Time
	endedAt    time.Time
}

// NewSession creates a session at the menu phase.
func NewSession(cfg Config) *Session {
	if cfg.Pool == nil {
		cfg.Pool = DefaultPool()
	}
	if cfg.Lives <= 0 {
		cfg.Lives = InitialLives
	}
	if cfg.FeedbackDelay <= 0 {
		cfg.FeedbackDelay = DefaultFeedbackDelay
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Session{cfg: cfg, phase: PhaseMenu}
}

// Start begins a new game, fully resetting all counters. It is legal
// from any phase; starting over invalidates any pending advance for
// the previous game. An empty pool leaves the session playing with no
// current question.
func (s *Session) Start(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrPlayerNameRequired
	}
	if r := []rune(name); len(r) > MaxPlayerNameLen {
		name = string(r[:MaxPlayerNameLen])
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidateLocked()
	s.phase = PhasePlaying
	s.player = name
	s.score = 0
	s.lives = s.cfg.Lives
	s.answered = 0
	s.difficulty = 1
	s.used = make(map[string]struct{})
	s.log = nil
	s.current = nil
	s.startedAt = time.Now()
	s.endedAt = time.Time{}
	s.drawLocked()
	return nil
}

// SubmitAnswer resolves the current question against input. Empty
// trimmed input is a no-op, not a forfeited turn. Calls while the
// previous answer's feedback delay is running are rejected with
// ErrAwaitingNext.
func (s *Session) SubmitAnswer(input string) (Outcome, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Outcome{}, ErrEmptyAnswer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.resolvableLocked(); err != nil {
		return Outcome{}, err
	}
	return s.resolveLocked(Evaluate(*s.current, trimmed), trimmed), nil
}

// Skip forfeits the current question. It books exactly like a wrong
// answer: one life lost, the question counted and logged, the same
// end-of-life and end-of-pool checks.
func (s *Session) Skip() (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.resolvableLocked(); err != nil {
		return Outcome{}, err
	}
	res := Result{CorrectAnswer: s.current.CorrectAnswer()}
	return s.resolveLocked(res, ""), nil
}

// ForceEnd ends a playing game immediately, emitting the game-over
// event. Used by hosts that expire idle sessions.
func (s *Session) ForceEnd() error {
	s.mu.Lock()
	if s.phase != PhasePlaying {
		s.mu.Unlock()
		return ErrNotPlaying
	}
	summary := s.gameOverLocked()
	s.mu.Unlock()

	s.emit(Event{Type: EventGameOver, Summary: &summary})
	return nil
}

// ReturnToMenu moves a finished game back to the menu and clears the
// player name. Counters are left as-is; Start resets them.
func (s *Session) ReturnToMenu() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseGameOver {
		return ErrNotGameOver
	}
	s.invalidateLocked()
	s.phase = PhaseMenu
	s.player = ""
	return nil
}

// State returns a snapshot safe to render concurrently with play.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Phase:             s.phase,
		PlayerName:        s.player,
		Score:             s.score,
		Lives:             s.lives,
		QuestionsAnswered: s.answered,
		Difficulty:        s.difficulty,
		QuestionsLeft:     s.cfg.Pool.Remaining(s.difficulty, s.used),
		AwaitingNext:      s.awaiting,
		Log:               make([]LogEntry, len(s.log)),
	}
	copy(st.Log, s.log)
	if s.current != nil {
		q := *s.current
		st.Current = &q
	}
	return st
}

// resolvableLocked guards submit/skip: the game must be playing, not
// frozen in the feedback delay, and must have a question in play.
func (s *Session) resolvableLocked() error {
	switch {
	case s.phase != PhasePlaying:
		return ErrNotPlaying
	case s.awaiting:
		return ErrAwaitingNext
	case s.current == nil:
		return ErrNoCurrentQuestion
	}
	return nil
}

// resolveLocked books a resolved question and schedules the deferred
// advance. userAnswer is empty for skips.
func (s *Session) resolveLocked(res Result, userAnswer string) Outcome {
	q := *s.current

	// Selection already marked the country used; this keeps the
	// invariant even if a caller drives the session by hand.
	s.used[q.Country.Name] = struct{}{}

	points := 0
	difficultyUp := false
	if res.IsCorrect {
		points = s.difficulty * PointsPerDifficulty
		s.score += points
		if (s.answered+1)%QuestionsPerTier == 0 && s.difficulty < MaxDifficulty {
			s.difficulty++
			difficultyUp = true
		}
	} else {
		s.lives--
	}
	s.answered++

	// Most-recent-first, append-only.
	s.log = append([]LogEntry{{
		Country:       q.Country.Name,
		Code:          q.Country.Code,
		Variant:       q.Variant,
		Difficulty:    q.Country.Difficulty,
		UserAnswer:    userAnswer,
		CorrectAnswer: res.CorrectAnswer,
		IsCorrect:     res.IsCorrect,
		Points:        points,
	}}, s.log...)

	// Freeze the current question for feedback; the pending timer is
	// the only path forward, and there is never more than one.
	s.awaiting = true
	gen := s.gen
	s.pending = time.AfterFunc(s.cfg.FeedbackDelay, func() { s.advance(gen) })

	return Outcome{
		Question:      q,
		IsCorrect:     res.IsCorrect,
		CorrectAnswer: res.CorrectAnswer,
		Points:        points,
		Score:         s.score,
		Lives:         s.lives,
		Difficulty:    s.difficulty,
		DifficultyUp:  difficultyUp,
	}
}

// advance is the deferred transition: out of lives or out of pool goes
// to game over, otherwise the next question is drawn. A generation
// mismatch means the session was restarted while the timer was
// pending; the timer is stale and does nothing.
func (s *Session) advance(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.phase != PhasePlaying || !s.awaiting {
		s.mu.Unlock()
		return
	}
	s.awaiting = false
	s.pending = nil

	if s.lives <= 0 || !s.drawLocked() {
		summary := s.gameOverLocked()
		s.mu.Unlock()
		s.emit(Event{Type: EventGameOver, Summary: &summary})
		return
	}

	q := *s.current
	s.mu.Unlock()
	s.emit(Event{Type: EventNextQuestion, Question: &q})
}

// drawLocked selects the next question, adopting any difficulty bump,
// and marks the country used at selection time.
func (s *Session) drawLocked() bool {
	q, difficulty, ok := s.cfg.Pool.SelectNext(s.difficulty, s.used, s.cfg.Rand)
	if !ok {
		s.current = nil
		return false
	}
	s.difficulty = difficulty
	s.used[q.Country.Name] = struct{}{}
	s.current = &q
	return true
}

func (s *Session) gameOverLocked() Summary {
	s.invalidateLocked()
	s.phase = PhaseGameOver
	s.endedAt = time.Now()
	s.current = nil

	log := make([]LogEntry, len(s.log))
	copy(log, s.log)
	return Summary{
		PlayerName:        s.player,
		Score:             s.score,
		QuestionsAnswered: s.answered,
		LivesRemaining:    s.lives,
		MaxDifficulty:     s.difficulty,
		StartedAt:         s.startedAt,
		EndedAt:           s.endedAt,
		Log:               log,
	}
}

// invalidateLocked cancels any pending advance and bumps the
// generation so an already-fired timer finds itself stale.
func (s *Session) invalidateLocked() {
	s.gen++
	s.awaiting = false
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

func (s *Session) emit(ev Event) {
	if s.cfg.Notify != nil {
		s.cfg.Notify(ev)
	}
}
