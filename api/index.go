package api

import (
	"context"
	"net/http"
	"storefront/app"
	"storefront/config"
	_ "storefront/docs"
	"storefront/libs"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var (
	application *app.App
	initErr     error
	once        sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)
		cfg := config.LoadConfig()
		logger := libs.NewLogger(cfg.AppEnv)
		application, initErr = app.New(context.Background(), cfg, logger)
		if initErr != nil {
			log.Error().Err(initErr).Msg("failed to initialize application")
		}
	})
}

// Handler is the serverless entry point.
func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		http.Error(w, `{"success":false,"message":"service unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	application.Router.ServeHTTP(w, r)
}
