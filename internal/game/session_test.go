package game

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDelay = 5 * time.Millisecond

// newTestSession wires a session to an event channel so tests can wait
// for the deferred advance instead of sleeping.
func newTestSession(t *testing.T, pool Pool, delay time.Duration) (*Session, chan Event) {
	t.Helper()
	events := make(chan Event, 32)
	sess := NewSession(Config{
		Pool:          pool,
		FeedbackDelay: delay,
		Rand:          testRand(42),
		Notify:        func(ev Event) { events <- ev },
	})
	return sess, events
}

func waitEvent(t *testing.T, events chan Event) Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session event")
		return Event{}
	}
}

func TestStartResetsState(t *testing.T) {
	sess, _ := newTestSession(t, DefaultPool(), testDelay)

	require.NoError(t, sess.Start("  Maria  "))

	st := sess.State()
	assert.Equal(t, PhasePlaying, st.Phase)
	assert.Equal(t, "Maria", st.PlayerName, "name is trimmed")
	assert.Equal(t, 0, st.Score)
	assert.Equal(t, InitialLives, st.Lives)
	assert.Equal(t, 0, st.QuestionsAnswered)
	assert.Equal(t, 1, st.Difficulty)
	assert.False(t, st.AwaitingNext)
	assert.Empty(t, st.Log)
	require.NotNil(t, st.Current)
	assert.Equal(t, 1, st.Current.Country.Difficulty, "first question is tier 1")

	want := DefaultPool().Remaining(1, map[string]struct{}{st.Current.Country.Name: {}})
	assert.Equal(t, want, st.QuestionsLeft, "tier-1 entries minus the one in play")
}

func TestStartRejectsBlankName(t *testing.T) {
	sess, _ := newTestSession(t, DefaultPool(), testDelay)

	assert.ErrorIs(t, sess.Start("   "), ErrPlayerNameRequired)
	assert.Equal(t, PhaseMenu, sess.State().Phase)
}

func TestStartCapsPlayerName(t *testing.T) {
	sess, _ := newTestSession(t, DefaultPool(), testDelay)

	require.NoError(t, sess.Start(strings.Repeat("x", 30)))
	assert.Len(t, sess.State().PlayerName, MaxPlayerNameLen)
}

func TestSingleCountryRoundTrip(t *testing.T) {
	pool := Pool{{Name: "France", Capital: "Paris", Code: "FR", Difficulty: 1}}
	sess, events := newTestSession(t, pool, testDelay)
	require.NoError(t, sess.Start("Maria"))

	st := sess.State()
	q := st.Current
	require.NotNil(t, q)
	assert.Equal(t, 0, st.QuestionsLeft, "the only country is in play")

	// Uppercase with padding still counts: trim + case fold.
	out, err := sess.SubmitAnswer("  " + strings.ToUpper(q.CorrectAnswer()) + "  ")
	require.NoError(t, err)
	assert.True(t, out.IsCorrect)
	assert.Equal(t, 10, out.Points)
	assert.Equal(t, 10, out.Score)
	assert.Equal(t, InitialLives, out.Lives)

	// Pool of one is now exhausted even after the difficulty widens,
	// so the deferred advance ends the game.
	ev := waitEvent(t, events)
	require.Equal(t, EventGameOver, ev.Type)
	require.NotNil(t, ev.Summary)
	assert.Equal(t, 10, ev.Summary.Score)
	assert.Equal(t, 1, ev.Summary.QuestionsAnswered)
	assert.Equal(t, PhaseGameOver, sess.State().Phase)
}

func TestThreeWrongAnswersEndGame(t *testing.T) {
	sess, events := newTestSession(t, DefaultPool(), testDelay)
	require.NoError(t, sess.Start("Maria"))

	for i := 1; i <= 3; i++ {
		out, err := sess.SubmitAnswer("definitely wrong")
		require.NoError(t, err)
		assert.False(t, out.IsCorrect)
		assert.Equal(t, InitialLives-i, out.Lives)
		assert.Equal(t, 0, out.Score, "score never decreases below start")

		ev := waitEvent(t, events)
		if i < 3 {
			assert.Equal(t, EventNextQuestion, ev.Type)
		} else {
			require.Equal(t, EventGameOver, ev.Type)
			require.NotNil(t, ev.Summary)
			assert.Equal(t, 3, ev.Summary.QuestionsAnswered)
			assert.Equal(t, 0, ev.Summary.LivesRemaining)
		}
	}

	assert.Equal(t, PhaseGameOver, sess.State().Phase)
}

func TestDifficultyRaisesEveryFifthResolved(t *testing.T) {
	// Plenty of tier-1 entries so the selector never forces a bump.
	pool := Pool{
		{Name: "A", Capital: "a", Code: "AA", Difficulty: 1},
		{Name: "B", Capital: "b", Code: "BB", Difficulty: 1},
		{Name: "C", Capital: "c", Code: "CC", Difficulty: 1},
		{Name: "D", Capital: "d", Code: "DD", Difficulty: 1},
		{Name: "E", Capital: "e", Code: "EE", Difficulty: 1},
		{Name: "F", Capital: "f", Code: "FF", Difficulty: 1},
		{Name: "G", Capital: "g", Code: "GG", Difficulty: 1},
		{Name: "H", Capital: "h", Code: "HH", Difficulty: 2},
	}
	sess, events := newTestSession(t, pool, testDelay)
	require.NoError(t, sess.Start("Maria"))

	for i := 1; i <= 5; i++ {
		q := sess.State().Current
		require.NotNil(t, q)

		out, err := sess.SubmitAnswer(q.CorrectAnswer())
		require.NoError(t, err)
		require.True(t, out.IsCorrect)

		if i < 5 {
			assert.Equal(t, 1, out.Difficulty, "question %d", i)
			assert.False(t, out.DifficultyUp, "question %d", i)
		} else {
			// Exactly at the transition of questionsAnswered 4 → 5.
			assert.Equal(t, 2, out.Difficulty)
			assert.True(t, out.DifficultyUp)
		}

		ev := waitEvent(t, events)
		require.Equal(t, EventNextQuestion, ev.Type)
	}

	assert.Equal(t, 5, sess.State().QuestionsAnswered)
	assert.Equal(t, 2, sess.State().Difficulty)
}

func TestSubmitWhileAwaitingNextRejected(t *testing.T) {
	sess, _ := newTestSession(t, DefaultPool(), time.Minute)
	require.NoError(t, sess.Start("Maria"))

	_, err := sess.SubmitAnswer("whatever")
	require.NoError(t, err)

	_, err = sess.SubmitAnswer("again")
	assert.ErrorIs(t, err, ErrAwaitingNext)
	_, err = sess.Skip()
	assert.ErrorIs(t, err, ErrAwaitingNext)

	assert.Equal(t, 1, sess.State().QuestionsAnswered, "rejected calls mutate nothing")
}

func TestEmptyAnswerIsNoOp(t *testing.T) {
	sess, _ := newTestSession(t, DefaultPool(), testDelay)
	require.NoError(t, sess.Start("Maria"))

	_, err := sess.SubmitAnswer("   ")
	assert.ErrorIs(t, err, ErrEmptyAnswer)

	st := sess.State()
	assert.Equal(t, 0, st.QuestionsAnswered, "not a forfeited turn")
	assert.Equal(t, InitialLives, st.Lives)
	assert.False(t, st.AwaitingNext)
}

func TestSkipBooksLikeWrongAnswer(t *testing.T) {
	sess, _ := newTestSession(t, DefaultPool(), time.Minute)
	require.NoError(t, sess.Start("Maria"))

	q := sess.State().Current
	require.NotNil(t, q)

	out, err := sess.Skip()
	require.NoError(t, err)
	assert.False(t, out.IsCorrect)
	assert.Equal(t, InitialLives-1, out.Lives)
	assert.Equal(t, 0, out.Points)
	assert.Equal(t, q.CorrectAnswer(), out.CorrectAnswer)

	st := sess.State()
	assert.Equal(t, 1, st.QuestionsAnswered)
	require.Len(t, st.Log, 1)
	assert.Empty(t, st.Log[0].UserAnswer)
	assert.False(t, st.Log[0].IsCorrect)
}

func TestRestartInvalidatesPendingAdvance(t *testing.T) {
	sess, events := newTestSession(t, DefaultPool(), 20*time.Millisecond)
	require.NoError(t, sess.Start("Maria"))

	_, err := sess.SubmitAnswer("wrong")
	require.NoError(t, err)

	// Restart before the pending advance fires; the stale timer must
	// not touch the new game.
	require.NoError(t, sess.Start("Maria"))

	select {
	case ev := <-events:
		t.Fatalf("stale timer fired after restart: %v", ev.Type)
	case <-time.After(100 * time.Millisecond):
	}

	st := sess.State()
	assert.Equal(t, PhasePlaying, st.Phase)
	assert.Equal(t, 0, st.QuestionsAnswered)
	assert.Equal(t, InitialLives, st.Lives)
	assert.False(t, st.AwaitingNext)
}

func TestWrongPhaseCallsAreRejected(t *testing.T) {
	sess, events := newTestSession(t, Pool{{Name: "France", Capital: "Paris", Code: "FR", Difficulty: 1}}, testDelay)

	_, err := sess.SubmitAnswer("Paris")
	assert.ErrorIs(t, err, ErrNotPlaying)
	_, err = sess.Skip()
	assert.ErrorIs(t, err, ErrNotPlaying)
	assert.ErrorIs(t, sess.ReturnToMenu(), ErrNotGameOver)
	assert.ErrorIs(t, sess.ForceEnd(), ErrNotPlaying)

	require.NoError(t, sess.Start("Maria"))
	assert.ErrorIs(t, sess.ReturnToMenu(), ErrNotGameOver)

	_, err = sess.SubmitAnswer("Paris")
	require.NoError(t, err)
	require.Equal(t, EventGameOver, waitEvent(t, events).Type)

	_, err = sess.SubmitAnswer("Paris")
	assert.ErrorIs(t, err, ErrNotPlaying)

	require.NoError(t, sess.ReturnToMenu())
	st := sess.State()
	assert.Equal(t, PhaseMenu, st.Phase)
	assert.Empty(t, st.PlayerName)
}

func TestFullDrainNeverRepeatsAndLogMatches(t *testing.T) {
	pool := DefaultPool()
	sess, events := newTestSession(t, pool, testDelay)
	require.NoError(t, sess.Start("Maria"))

	for {
		st := sess.State()
		if st.Phase != PhasePlaying {
			break
		}
		require.NotNil(t, st.Current)

		_, err := sess.SubmitAnswer(st.Current.CorrectAnswer())
		require.NoError(t, err)

		if waitEvent(t, events).Type == EventGameOver {
			break
		}
	}

	st := sess.State()
	require.Equal(t, PhaseGameOver, st.Phase)
	assert.Equal(t, len(pool), st.QuestionsAnswered, "every country resolved exactly once")
	require.Len(t, st.Log, len(pool))

	seen := make(map[string]struct{})
	for _, l := range st.Log {
		_, dup := seen[l.Country]
		assert.False(t, dup, "%s appears twice in the log", l.Country)
		seen[l.Country] = struct{}{}
	}
	assert.Equal(t, MaxDifficulty, st.Difficulty, "difficulty never exceeds max")
	assert.Equal(t, InitialLives, st.Lives, "all-correct run loses no lives")
}

func TestEmptyPoolEntersPlayingWithoutQuestion(t *testing.T) {
	sess, _ := newTestSession(t, Pool{}, testDelay)

	require.NoError(t, sess.Start("Maria"))

	st := sess.State()
	assert.Equal(t, PhasePlaying, st.Phase)
	assert.Nil(t, st.Current)

	_, err := sess.SubmitAnswer("anything")
	assert.ErrorIs(t, err, ErrNoCurrentQuestion)
	_, err = sess.Skip()
	assert.ErrorIs(t, err, ErrNoCurrentQuestion)
}

func TestForceEnd(t *testing.T) {
	sess, events := newTestSession(t, DefaultPool(), time.Minute)
	require.NoError(t, sess.Start("Maria"))

	q := sess.State().Current
	require.NotNil(t, q)
	_, err := sess.SubmitAnswer(q.CorrectAnswer())
	require.NoError(t, err)

	require.NoError(t, sess.ForceEnd())

	ev := waitEvent(t, events)
	require.Equal(t, EventGameOver, ev.Type)
	require.NotNil(t, ev.Summary)
	assert.Equal(t, 10, ev.Summary.Score)
	assert.Equal(t, 1, ev.Summary.QuestionsAnswered)
	assert.Equal(t, PhaseGameOver, sess.State().Phase)
}
