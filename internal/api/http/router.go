package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	auth "github.com/mind-engage/quizboard/internal/auth/middleware"
	"github.com/mind-engage/quizboard/internal/exam"
	"github.com/mind-engage/quizboard/internal/rbac"
)

type RouterConfig struct {
	Store       exam.Store
	Auth        *auth.AuthService
	Credentials auth.Credentials
	LocalLogin  bool
	CORSOrigins []string
	DB          Pinger
}

// NewRouter mounts the public and JWT-protected routes.
func NewRouter(rc RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, RequestLogger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rc.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if rc.LocalLogin {
		r.Post("/auth/login", auth.LoginHandler(rc.Auth, rc.Credentials))
	}

	store := rc.Store
	locks := &AttemptLocks{}
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(rc.Auth))

		pr.With(rbac.Require("exam:create")).
			Post("/exams", UploadExamHandler(store))
		pr.With(rbac.Require("exam:view")).
			Get("/exams/{examID}", GetExamHandler(store))

		pr.With(rbac.Require("attempt:create")).
			Post("/attempts", CreateAttemptHandler(store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}", GetAttemptHandler(store))
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{attemptID}/submit", SubmitAttemptHandler(store, locks))

		pr.Route("/attempts/{attemptID}/questions/{questionID}", func(qr chi.Router) {
			qr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
				Get("/board", BoardHandler(store))
			qr.With(rbac.Require("attempt:drag")).
				Post("/drag", DragHandler(store, locks))
			qr.With(rbac.RequireAny("attempt:review-own", "attempt:review")).
				Get("/review", ReviewHandler(store))
		})
	})

	r.Get("/healthz", HealthzHandler())
	r.Get("/readyz", ReadyzHandler(rc.DB))
	return r
}
