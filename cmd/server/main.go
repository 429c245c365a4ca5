package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jelajah/config"
	"jelajah/internal/database"
	"jelajah/internal/router"
	"jelajah/pkg/cloudinary"
	"jelajah/pkg/gemini"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.Server.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	log := logger.Sugar()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalw("database connect failed", "error", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalw("migrate failed", "error", err)
	}
	database.SeedAdmin(db)

	cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		log.Fatalw("cloudinary init failed", "error", err)
	}

	var gem gemini.Client
	if cfg.GenAI.APIKey != "" {
		gem, err = gemini.New(context.Background(), cfg.GenAI.APIKey, cfg.GenAI.Model)
		if err != nil {
			log.Warnw("gemini init failed, planner disabled", "error", err)
			gem = nil
		}
	} else {
		log.Infow("GEMINI_API_KEY not set, planner disabled")
	}

	engine := router.Setup(cfg, db, cloud, gem)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Infow("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server shutdown failed", "error", err)
	}
	log.Infow("server stopped")
}
