package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Yuvaramesh/sales-agent-frontend/internal/config"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/widget"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/widget/tui"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Stderr belongs to the UI while the program runs, so the log goes to a
	// file when one is configured and is dropped otherwise.
	logger, closeLog, err := newLogger(cfg.Widget.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	client := widget.NewClient(cfg.Widget.ServerURL, logger)
	controller := widget.NewController(client, logger)

	logger.Info().Str("server", cfg.Widget.ServerURL).Msg("widget starting")
	if err := tui.Run(controller, logger); err != nil {
		fmt.Fprintf(os.Stderr, "widget error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(path string) (zerolog.Logger, func(), error) {
	if path == "" {
		return zerolog.New(io.Discard), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Logger{}, nil, err
	}
	logger := zerolog.New(f).With().Timestamp().Logger()
	return logger, func() { _ = f.Close() }, nil
}
