package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	api "github.com/Teboho02/BA-Exams-Backend/internal/api/http"
	"github.com/Teboho02/BA-Exams-Backend/internal/assessment"
	auth "github.com/Teboho02/BA-Exams-Backend/internal/auth/middleware"
	"github.com/Teboho02/BA-Exams-Backend/internal/config"
	"github.com/Teboho02/BA-Exams-Backend/internal/db"
	"github.com/Teboho02/BA-Exams-Backend/internal/logging"
	"github.com/Teboho02/BA-Exams-Backend/internal/rbac"
	"github.com/Teboho02/BA-Exams-Backend/internal/storage"
)

func main() {
	cfg := config.FromEnv()
	log := logging.New(cfg.Mode == config.ModeRelease)
	defer func() { _ = log.Sync() }()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}
	if err := seedAdmin(ctx, dbh, cfg); err != nil {
		log.Warn("admin seed failed", zap.Error(err))
	}

	store := assessment.NewSQLStore(dbh)
	svc := assessment.NewService(store, assessment.NewAuditLog(dbh), log,
		assessment.WithHeuristicDefault(cfg.HeuristicShortAnswerKeys))

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatal("blob store", zap.Error(err))
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Authoring (staff)
		pr.With(rbac.Require("assignment:create")).
			Post("/assignments", api.CreateAssignmentHandler(svc))
		pr.With(rbac.Require("assignment:create")).
			Put("/assignments/{assignmentID}/questions", api.ReplaceQuestionsHandler(svc))
		pr.With(rbac.Require("assignment:publish")).
			Post("/assignments/{assignmentID}/publish", api.PublishAssignmentHandler(svc))

		// Assignment views
		pr.With(rbac.Require("assignment:view")).
			Get("/assignments", api.ListAssignmentsHandler(store))
		pr.With(rbac.Require("assignment:view")).
			Get("/assignments/{assignmentID}", api.GetAssignmentHandler(store))
		pr.With(rbac.Require("assignment:view")).
			Get("/assignments/{assignmentID}/status", api.AssignmentStatusHandler(svc))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/assignments/{assignmentID}/best", api.BestSubmissionHandler(svc))

		// Student attempt flow
		pr.With(rbac.Require("attempt:start")).
			Post("/attempts", api.StartAttemptHandler(svc))
		pr.With(rbac.Require("attempt:save")).
			Post("/attempts/{submissionID}/answers", api.SaveAnswersHandler(svc))
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{submissionID}/submit", api.SubmitAttemptHandler(svc))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{submissionID}", api.GetAttemptHandler(svc))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(store))

		// File-upload answers
		pr.With(rbac.Require("upload:answer")).
			Post("/attempts/{submissionID}/files/{questionID}", api.UploadAnswerFileHandler(svc, bs))
		pr.With(rbac.RequireAny("upload:answer", "attempt:grade")).
			Get("/attempts/{submissionID}/files/{questionID}", api.GetAnswerFileHandler(svc, bs))

		// Manual grading (staff)
		pr.With(rbac.Require("attempt:grade")).
			Get("/attempts/{submissionID}/grading", api.GetAttemptGradingHandler(svc))
		pr.With(rbac.Require("attempt:grade")).
			Post("/attempts/{submissionID}/grading", api.ApplyAttemptGradingHandler(svc))
		pr.With(rbac.Require("attempt:regrade")).
			Post("/attempts/{submissionID}/regrade", api.RegradeAttemptHandler(svc))

		// Admin
		pr.With(rbac.Require("users:manage")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:manage")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("audit:view")).
			Get("/admin/audit", api.AuditSearchHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("mode", string(cfg.Mode)),
		zap.String("db", cfg.DBDriver))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}

// seedAdmin creates the bootstrap admin for a fresh database. The hash comes
// pre-computed from the environment so the plaintext never touches the config.
func seedAdmin(ctx context.Context, dbh *sql.DB, cfg config.Config) error {
	if cfg.AdminPassHash == "" {
		return nil
	}
	_, err := dbh.ExecContext(ctx,
		`INSERT INTO users (id, role, password_hash, created_at) VALUES ($1,'admin',$2,$3)
		 ON CONFLICT (id) DO NOTHING`,
		cfg.AdminUser, cfg.AdminPassHash, time.Now().Unix())
	return err
}
