package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/kambaz-edu/kambaz-server/internal/api/http"
	"github.com/kambaz-edu/kambaz-server/internal/auth"
	"github.com/kambaz-edu/kambaz-server/internal/config"
	"github.com/kambaz-edu/kambaz-server/internal/db"
	"github.com/kambaz-edu/kambaz-server/internal/quiz"
	"github.com/kambaz-edu/kambaz-server/internal/rbac"
	"github.com/kambaz-edu/kambaz-server/pkg/cache"
)

func main() {
	cfg := config.Load()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// --- Quiz store (+ optional Redis read-through cache) ---
	var store quiz.Store = quiz.NewSQLStore(dbh)
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cfg.RedisAddr, time.Hour)
		if err := rc.Ping(ctx); err != nil {
			log.Printf("redis unreachable, caching disabled: %v", err)
		} else {
			store = quiz.NewCachedStore(store, rc)
		}
	}
	quizzes := quiz.NewService(store)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret, time.Duration(cfg.SessionHours)*time.Hour)

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

	r.Post("/api/users/signup", api.SignupHandler(dbh, authSvc))
	r.Post("/api/users/signin", api.SigninHandler(dbh, authSvc))

	// Protected API (JWT → subject+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Users
		pr.Post("/api/users/signout", api.SignoutHandler())
		pr.Get("/api/users/profile", api.ProfileHandler(dbh))
		pr.With(rbac.Require("users:list")).Get("/api/users", api.ListUsersHandler(dbh))
		pr.Get("/api/users/{userID}", api.GetUserHandler(dbh))
		pr.Put("/api/users/{userID}", api.UpdateUserHandler(dbh))
		pr.With(rbac.Require("users:delete")).Delete("/api/users/{userID}", api.DeleteUserHandler(dbh))
		pr.With(rbac.RequireAny("enrollment:self", "enrollment:manage")).
			Get("/api/users/{userID}/courses", api.ListCoursesForUserHandler(dbh))

		// Courses
		pr.With(rbac.Require("course:view")).Get("/api/courses", api.ListCoursesHandler(dbh))
		pr.With(rbac.Require("course:create")).Post("/api/courses", api.CreateCourseHandler(dbh))
		pr.With(rbac.Require("course:view")).Get("/api/courses/{courseID}", api.GetCourseHandler(dbh))
		pr.With(rbac.Require("course:update")).Put("/api/courses/{courseID}", api.UpdateCourseHandler(dbh))
		pr.With(rbac.Require("course:delete")).Delete("/api/courses/{courseID}", api.DeleteCourseHandler(dbh))

		// Enrollments
		pr.With(rbac.RequireAny("enrollment:self", "enrollment:manage")).
			Post("/api/courses/{courseID}/enrollments", api.EnrollHandler(dbh))
		pr.With(rbac.RequireAny("enrollment:self", "enrollment:manage")).
			Delete("/api/courses/{courseID}/enrollments/{userID}", api.UnenrollHandler(dbh))
		pr.With(rbac.Require("course:view")).
			Get("/api/courses/{courseID}/users", api.ListUsersForCourseHandler(dbh))

		// Modules
		pr.With(rbac.Require("module:view")).
			Get("/api/courses/{courseID}/modules", api.ListModulesHandler(dbh))
		pr.With(rbac.Require("module:create")).
			Post("/api/courses/{courseID}/modules", api.CreateModuleHandler(dbh))
		pr.With(rbac.Require("module:update")).Put("/api/modules/{moduleID}", api.UpdateModuleHandler(dbh))
		pr.With(rbac.Require("module:delete")).Delete("/api/modules/{moduleID}", api.DeleteModuleHandler(dbh))

		// Assignments
		pr.With(rbac.Require("assignment:view")).
			Get("/api/courses/{courseID}/assignments", api.ListAssignmentsHandler(dbh))
		pr.With(rbac.Require("assignment:create")).
			Post("/api/courses/{courseID}/assignments", api.CreateAssignmentHandler(dbh))
		pr.With(rbac.Require("assignment:view")).
			Get("/api/assignments/{assignmentID}", api.GetAssignmentHandler(dbh))
		pr.With(rbac.Require("assignment:update")).
			Put("/api/assignments/{assignmentID}", api.UpdateAssignmentHandler(dbh))
		pr.With(rbac.Require("assignment:delete")).
			Delete("/api/assignments/{assignmentID}", api.DeleteAssignmentHandler(dbh))

		// Quizzes
		pr.With(rbac.Require("quiz:view")).
			Get("/api/courses/{courseID}/quizzes", api.ListQuizzesHandler(quizzes))
		pr.With(rbac.Require("quiz:create")).
			Post("/api/courses/{courseID}/quizzes", api.CreateQuizHandler(quizzes))
		pr.With(rbac.Require("quiz:view")).Get("/api/quizzes/{quizID}", api.GetQuizHandler(quizzes))
		pr.With(rbac.Require("quiz:update")).Put("/api/quizzes/{quizID}", api.UpdateQuizHandler(quizzes))
		pr.With(rbac.Require("quiz:delete")).Delete("/api/quizzes/{quizID}", api.DeleteQuizHandler(quizzes))
		pr.With(rbac.Require("quiz:publish")).
			Post("/api/quizzes/{quizID}/publish", api.PublishQuizHandler(quizzes))
		pr.With(rbac.Require("quiz:publish")).
			Post("/api/quizzes/{quizID}/unpublish", api.UnpublishQuizHandler(quizzes))

		// Attempts
		pr.With(rbac.Require("attempt:submit")).
			Post("/api/quizzes/{quizID}/attempts", api.SubmitAttemptHandler(quizzes))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/api/quizzes/{quizID}/attempts", api.ListAttemptsHandler(quizzes))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/api/quizzes/{quizID}/attempts/{attemptID}", api.GetAttemptHandler(quizzes))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
