package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"log/slog"

	"github.com/HenTyna/foot-auto-poll-bot/core/bootstrap"
	"github.com/HenTyna/foot-auto-poll-bot/core/logger"
	"github.com/HenTyna/foot-auto-poll-bot/internal/bot"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := bot.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Config,
		Database: cfg.Database,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer logger.Shutdown()
	defer res.DB.Close()

	app, err := bot.New(cfg, res.DB)
	if err != nil {
		logger.L.Error("app init failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		logger.L.Error("bot stopped", slog.String("err", err.Error()))
		os.Exit(1)
	}
	logger.L.Info("bot stopped", slog.String("event", "shutdown"))
}
