package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lucasmenendez/agentpanelbot/agentapi"
	"github.com/lucasmenendez/agentpanelbot/bot"
	"github.com/lucasmenendez/agentpanelbot/config"
	"github.com/lucasmenendez/agentpanelbot/deposit"
	"github.com/lucasmenendez/agentpanelbot/logging"
	"github.com/lucasmenendez/agentpanelbot/metrics"
	"github.com/lucasmenendez/agentpanelbot/report"
)

const cleanInterval = time.Minute

func main() {
	// a local .env file is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	// metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metrics.Router(registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", "addr", cfg.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	// upstream agent panel
	client, err := agentapi.New(agentapi.Config{
		APIURL:   cfg.AgentAPIURL,
		PanelURL: cfg.AgentPanelURL,
		Origin:   cfg.AgentOrigin,
		Currency: cfg.Currency,
		PageSize: cfg.MemberPageSize,
		Timeout:  cfg.HTTPTimeout,
		Logger:   logger,
		Metrics:  appMetrics,
	})
	if err != nil {
		logger.Error("failed to create agent api client", "error", err)
		os.Exit(1)
	}
	creds := agentapi.Credentials{Username: cfg.AgentUsername, Password: cfg.AgentPassword}
	machine, err := deposit.New(deposit.Config{
		Auth:              client,
		Directory:         client,
		Executor:          client,
		Credentials:       creds,
		AuthorizationCode: cfg.DepositPasscode,
		Currency:          client.Currency(),
		TTL:               cfg.ConversationTTL,
		Logger:            logger,
		Metrics:           appMetrics,
	})
	if err != nil {
		logger.Error("failed to create deposit workflow", "error", err)
		os.Exit(1)
	}
	reports, err := report.NewService(report.Config{
		Client:      client,
		Credentials: creds,
		Location:    cfg.ReportLocation,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to create report service", "error", err)
		os.Exit(1)
	}

	// create and start the bot
	b := bot.New(context.Background(), bot.BotConfig{
		Token:       cfg.TelegramToken,
		AuthManager: newStaffAuth(cfg.Admins(), cfg.AllowedUserIDs),
		Logger:      logger,
	})
	a := &app{deposits: machine, reports: reports, logger: logger}
	a.register(b)
	if err := b.Start(); err != nil {
		logger.Error("failed to start bot", "error", err)
		os.Exit(1)
	}
	go a.cleanConversations(b.Context(), b, cleanInterval)
	if cfg.ReportChatID != 0 {
		scheduler, err := report.NewScheduler(report.SchedulerConfig{
			At:       cfg.ReportAt,
			Location: cfg.ReportLocation,
			Run:      a.dailyReport(b, cfg.ReportChatID),
			Logger:   logger,
		})
		if err != nil {
			logger.Error("failed to create report scheduler", "error", err)
			os.Exit(1)
		}
		go scheduler.Start(b.Context())
	}
	logger.Info("bot started", "currency", client.Currency())

	// wait until an interrupt received
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Info("received SIGTERM, exiting", "at", time.Now().Format(time.RFC850))
	// stop the bot
	b.Stop()
	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Error("metrics server shutdown failed", "error", err)
		}
	}
}
