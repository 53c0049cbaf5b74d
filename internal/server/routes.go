package server

import (
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("CapitalQuiz API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(deps.Logger, deps.DB, deps.Redis))

	// Game session: token minted at start, carried as a Bearer token.
	r.Post("/api/game/start", handleGameStart(deps))
	r.Route("/api/game", func(r chi.Router) {
		r.Use(sessionMiddleware(deps.Sessions))
		r.Get("/state", handleGameState(deps))
		r.Post("/answer", handleAnswer(deps))
		r.Post("/skip", handleSkip(deps))
		r.Post("/menu", handleMenu(deps))
		r.Get("/events", handleEvents(deps.Broker))
	})

	// Score archive.
	r.Get("/api/high-scores", handleGetHighScores(deps.Scores))
	r.Post("/api/high-scores", handleSaveHighScore(deps.Store))
	r.Post("/api/game-sessions", handleSaveSession(deps.Store))
	r.Post("/api/answer-logs", handleSaveAnswerLogs(deps.Store))

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			deps.Logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
