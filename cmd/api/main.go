package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Yuvaramesh/sales-agent-frontend/internal/catalog"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/config"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/handler"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/service/advisor"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/service/conversation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file, using system environment only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	store, err := catalog.Open(cfg.Store.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("failed to open catalog store")
	}
	defer store.Close()

	// The advisor degrades to scripted replies when no model is configured,
	// so the search/select/order flow keeps working without credentials.
	var gen advisor.Generator
	var summarizer conversation.Summarizer
	if cfg.AI.Enabled() {
		llm, err := advisor.NewLLM(ctx, cfg.AI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize chat model, continuing with scripted replies")
		} else {
			gen = llm
			summarizer = llm
			log.Info().Str("model", cfg.AI.Model).Msg("chat model initialized")
		}
	} else {
		log.Info().Msg("model credentials not configured, using scripted replies")
	}

	conv := conversation.NewService(store, summarizer, cfg.Chat.QuestionLimit)
	adv := advisor.New(store, conv, gen)
	router := handler.NewRouter(conv, adv)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("sales agent listening")
	if err := runServer(ctx, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
