package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/harsha33983/harshaflix/api"
	"github.com/harsha33983/harshaflix/config"
	"github.com/harsha33983/harshaflix/handlers"
	"github.com/harsha33983/harshaflix/services/accounts"
	"github.com/harsha33983/harshaflix/services/catalog"
	"github.com/harsha33983/harshaflix/services/details"
	"github.com/harsha33983/harshaflix/services/sessions"
	"github.com/harsha33983/harshaflix/services/videomatch"
	"github.com/harsha33983/harshaflix/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}

	setupLogging(cfg.LogFile)

	catalogClient := catalog.NewClient(cfg.Catalog, nil)
	catalogClient.EnableCache(afero.NewOsFs(), filepath.Join(cfg.DataDir, "cache"), cfg.CacheTTLHours)

	videoResolver := videomatch.NewResolver(cfg.VideoSearch, nil)
	if cfg.VideoSearch.APIKey == "" {
		log.Printf("[main] video search key not set, full-movie matching disabled")
	}

	aggregator := details.NewAggregator(catalogClient, videoResolver)

	accountsSvc, err := accounts.NewService(cfg.DataDir)
	if err != nil {
		log.Fatalf("[main] accounts: %v", err)
	}
	sessionsSvc, err := sessions.NewService(cfg.DataDir, time.Duration(cfg.SessionTTLHours)*time.Hour)
	if err != nil {
		log.Fatalf("[main] sessions: %v", err)
	}

	authHandler := handlers.NewAuthHandler(accountsSvc, sessionsSvc)
	catalogHandler := handlers.NewCatalogHandler(catalogClient)
	detailsHandler := handlers.NewDetailsHandler(aggregator)

	router := utils.NewRouter(cfg.AllowedOrigins)

	// 5 credential attempts per minute per IP.
	loginLimiter := api.NewIPRateLimiter(rate.Every(12*time.Second), 5)

	authRouter := router.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/login", api.RateLimitHandlerFunc(loginLimiter, authHandler.Login)).Methods(http.MethodPost, http.MethodOptions)
	authRouter.HandleFunc("/signup", api.RateLimitHandlerFunc(loginLimiter, authHandler.Signup)).Methods(http.MethodPost, http.MethodOptions)
	authRouter.HandleFunc("/reset-password", api.RateLimitHandlerFunc(loginLimiter, authHandler.ResetPassword)).Methods(http.MethodPost, http.MethodOptions)
	authRouter.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost, http.MethodOptions)
	authRouter.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet, http.MethodOptions)
	authRouter.HandleFunc("/refresh", authHandler.Refresh).Methods(http.MethodPost, http.MethodOptions)
	authRouter.HandleFunc("/change-password", authHandler.ChangePassword).Methods(http.MethodPost, http.MethodOptions)

	browseRouter := router.PathPrefix("/api").Subrouter()
	browseRouter.HandleFunc("/trending", catalogHandler.Trending).Methods(http.MethodGet, http.MethodOptions)
	browseRouter.HandleFunc("/search", catalogHandler.Search).Methods(http.MethodGet, http.MethodOptions)

	// Detail pages require a signed-in account.
	detailsRouter := router.PathPrefix("/api/details").Subrouter()
	detailsRouter.Use(api.AccountAuthMiddleware(sessionsSvc))
	detailsRouter.HandleFunc("/{kind}/{id}", detailsHandler.Get).Methods(http.MethodGet, http.MethodOptions)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}

// setupLogging mirrors logs to stderr and a size-rotated file when one is
// configured.
func setupLogging(path string) {
	if path == "" {
		return
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    20, // MB
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
}
