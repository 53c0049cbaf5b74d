package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "CapitalQuiz API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the capital cities quiz game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/game/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/game/start")
	postStart.SetSummary("Start a game")
	postStart.SetDescription("Starts a new game session for the named player. Returns the session token.")
	postStart.AddReqStructure(StartRequest{})
	postStart.AddRespStructure(StartResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postStart)

	// GET /api/game/state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/game/state")
	getState.SetSummary("Get game state")
	getState.SetDescription("Returns the full session state. Requires Bearer token.")
	getState.AddRespStructure(StateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getState.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getState)

	// POST /api/game/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/game/answer")
	postAnswer.SetSummary("Submit an answer")
	postAnswer.SetDescription("Resolves the current question against the submitted answer. Requires Bearer token.")
	postAnswer.AddReqStructure(AnswerRequest{})
	postAnswer.AddRespStructure(FeedbackResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// POST /api/game/skip
	postSkip, _ := r.NewOperationContext(http.MethodPost, "/api/game/skip")
	postSkip.SetSummary("Skip the current question")
	postSkip.SetDescription("Forfeits the current question at the cost of a life. Requires Bearer token.")
	postSkip.AddRespStructure(FeedbackResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSkip.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postSkip)

	// POST /api/game/menu
	postMenu, _ := r.NewOperationContext(http.MethodPost, "/api/game/menu")
	postMenu.SetSummary("Return to menu")
	postMenu.SetDescription("Moves a finished game back to the menu and releases the session. Requires Bearer token.")
	postMenu.AddRespStructure(map[string]string{}, openapi.WithHTTPStatus(http.StatusOK))
	postMenu.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postMenu)

	// GET /api/game/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/game/events")
	getEvents.SetSummary("Game event stream")
	getEvents.SetDescription("Server-sent events for the session: answers resolved, next question, game over.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/high-scores
	getScores, _ := r.NewOperationContext(http.MethodGet, "/api/high-scores")
	getScores.SetSummary("Top high scores")
	getScores.SetDescription("Returns the top 10 scores, best first. Empty list when no scores exist.")
	getScores.AddRespStructure(HighScoresResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getScores)

	// POST /api/high-scores
	postScore, _ := r.NewOperationContext(http.MethodPost, "/api/high-scores")
	postScore.SetSummary("Save a high score")
	postScore.AddReqStructure(SaveHighScoreRequest{})
	postScore.AddRespStructure(CreatedResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postScore.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postScore)

	// POST /api/game-sessions
	postSession, _ := r.NewOperationContext(http.MethodPost, "/api/game-sessions")
	postSession.SetSummary("Save a game session")
	postSession.AddReqStructure(SaveSessionRequest{})
	postSession.AddRespStructure(CreatedResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postSession)

	// POST /api/answer-logs
	postLogs, _ := r.NewOperationContext(http.MethodPost, "/api/answer-logs")
	postLogs.SetSummary("Save answer logs")
	postLogs.SetDescription("Batch-inserts the answer trail of a stored game session.")
	postLogs.AddReqStructure(SaveAnswerLogsRequest{})
	postLogs.AddRespStructure(InsertedResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postLogs.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(postLogs)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		json.NewEncoder(w).Encode(spec)
	}
}
