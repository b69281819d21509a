package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"campaign-caller-go/internal/analyzer"
	"campaign-caller-go/internal/calllog"
	"campaign-caller-go/internal/config"
	"campaign-caller-go/internal/gateway"
	"campaign-caller-go/internal/logger"
	"campaign-caller-go/internal/server"
	"campaign-caller-go/internal/session"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "campaign-caller-go").Info("starting service")

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	var store calllog.Store
	switch cfg.CallLogBackend {
	case "sqlite":
		s, err := calllog.OpenSQLite(cfg.CallLogPath)
		if err != nil {
			log.WithError(err).Fatal("failed to open call log store")
		}
		defer s.Close()
		store = s
	default:
		store = calllog.NewFileStore(cfg.CallLogPath)
	}
	log.WithField("backend", cfg.CallLogBackend).WithField("path", cfg.CallLogPath).Info("call log store ready")

	gw := gateway.NewClient(cfg.VoiceBaseURL, cfg.VoiceAPIKey)
	ev := analyzer.NewEvaluator(analyzer.Config{
		APIKey: cfg.LLMAPIKey,
		URL:    cfg.LLMURL,
		Model:  cfg.LLMModel,
	})
	sessions := session.NewManager(cfg.AllowedEmailDomain)

	mux := http.NewServeMux()
	server.NewRouter(cfg, store, gw, ev, sessions).Register(mux)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}
