package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/promptarena/prompt-arena/handlers"
	"github.com/promptarena/prompt-arena/middleware"
	"github.com/promptarena/prompt-arena/models"
	"github.com/promptarena/prompt-arena/telemetry"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	competitionHandler *handlers.CompetitionHandler,
	challengeHandler *handlers.ChallengeHandler,
	submissionHandler *handlers.SubmissionHandler,
	judgeHandler *handlers.JudgeHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	adminHandler *handlers.AdminHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(telemetry.RequestMetrics)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate(jwtSecret)
	adminOnly := middleware.Authorize(string(models.RoleAdmin), string(models.RoleSuperAdmin))
	judgeOnly := middleware.Authorize(string(models.RoleJudge))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", telemetry.Handler())

	// Публичные маршруты
	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/competitions", func(r chi.Router) {
		r.Get("/", competitionHandler.List)
		r.Get("/{competitionID}", competitionHandler.GetByID)
		r.Get("/{competitionID}/challenges", challengeHandler.ListByCompetition)
		r.Get("/{competitionID}/leaderboard", leaderboardHandler.GetPage)
		r.Get("/{competitionID}/live", webSocketHandler.ServeCompetition)

		// Участники
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/{competitionID}/submissions/my", submissionHandler.ListMine)
			r.Get("/{competitionID}/progress", submissionHandler.GetProgress)
			r.Get("/{competitionID}/leaderboard/me", leaderboardHandler.GetMyEntry)
		})

		// Судьи
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/{competitionID}/judges/{judgeID}/assignments", judgeHandler.GetAssignments)
		})

		// Администраторы
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)

			r.Post("/", competitionHandler.Create)
			r.Patch("/{competitionID}", competitionHandler.Update)
			r.Patch("/{competitionID}/lock", competitionHandler.SetLocked)
			r.Post("/{competitionID}/judging-complete", competitionHandler.MarkJudgingComplete)
			r.Post("/{competitionID}/max-score/recompute", competitionHandler.RecomputeMaxScore)

			r.Post("/{competitionID}/challenges", challengeHandler.Create)

			r.Post("/{competitionID}/assignments/distribute", adminHandler.DistributeAssignments)
			r.Get("/{competitionID}/assignments", adminHandler.ListAssignments)

			r.Get("/{competitionID}/submissions", adminHandler.ListSubmissions)
			r.Post("/{competitionID}/evaluate-pending", adminHandler.EvaluatePending)

			r.Post("/{competitionID}/leaderboard/rebuild", leaderboardHandler.Rebuild)

			r.Get("/{competitionID}/exports/participants", adminHandler.ExportParticipants)
			r.Get("/{competitionID}/exports/submissions", adminHandler.ExportSubmissions)
		})
	})

	router.Route("/challenges", func(r chi.Router) {
		r.Get("/{challengeID}", challengeHandler.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{challengeID}/submissions", submissionHandler.Submit)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Patch("/{challengeID}", challengeHandler.Update)
			r.Delete("/{challengeID}", challengeHandler.Delete)
		})
	})

	router.Route("/submissions", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(judgeOnly)
			r.Get("/{submissionID}/for-review", judgeHandler.GetAssignedSubmission)
			r.Patch("/{submissionID}/review", judgeHandler.SubmitReview)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Get("/{submissionID}", submissionHandler.GetByID)
			r.Post("/{submissionID}/evaluate", adminHandler.EvaluateSubmission)
			r.Post("/{submissionID}/manual-review", adminHandler.MarkForManualReview)
		})
	})

	router.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", userHandler.GetMe)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(adminOnly)
			r.Get("/judges", userHandler.ListJudges)
			r.Patch("/{userID}/role", adminHandler.UpdateUserRole)
		})
	})
}
