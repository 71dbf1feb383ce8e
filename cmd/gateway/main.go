package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	api "github.com/mind-engage/quizboard/internal/api/http"
	auth "github.com/mind-engage/quizboard/internal/auth/middleware"
	"github.com/mind-engage/quizboard/internal/config"
	"github.com/mind-engage/quizboard/internal/db"
	"github.com/mind-engage/quizboard/internal/exam"
	"github.com/mind-engage/quizboard/internal/logger"
	syncx "github.com/mind-engage/quizboard/internal/sync"
)

func main() {
	cfg := config.FromEnv()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db open failed")
	}
	events := syncx.NewEventRepo(dbh, cfg.SiteID)
	store := exam.NewSQLStore(dbh, cfg.DBDriver, events)

	// --- Auth (local JWT for offline/dev) ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	r := api.NewRouter(api.RouterConfig{
		Store: store,
		Auth:  authSvc,
		Credentials: auth.Credentials{
			AdminUser:     cfg.AdminUser,
			AdminPassHash: cfg.AdminPassHash,
		},
		LocalLogin:  cfg.EnableLocalAuth,
		CORSOrigins: cfg.CORSOrigins(),
		DB:          dbh,
	})

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("mode", string(cfg.Mode)).
		Str("db", cfg.DBDriver).
		Msg("listening")
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
