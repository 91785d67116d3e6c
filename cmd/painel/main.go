package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"painel/internal/amqp"
	"painel/internal/cli"
	"painel/internal/clock"
	"painel/internal/config"
	apphttp "painel/internal/http"
	applog "painel/internal/log"
	"painel/internal/services"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentApp, (*config.Config).Validate)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	result := cli.MustOpenStore(ctx, logger, cfg)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	}()

	clk := clock.New(cfg.TZOffsetMinutes, clock.WithWeekStart(cfg.WeekStartDay()))

	// A nil interface keeps the services from publishing at all.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		events = client
		logger.Info("Event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Event publishing disabled - no AMQP_URL provided")
	}

	week := services.NewWeekBucketizer(result.Store, clk, services.WeekConfig{
		Days:   cfg.WeekDays,
		Source: services.WeekSource(cfg.WeekSource),
	}, logger)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Entries:      services.NewEntryService(result.Store, clk, events, logger),
		Goals:        services.NewAggregator(result.Store, clk, events, logger),
		Week:         week,
		Storage:      result.Store,
		PublicDir:    cfg.PublicDir,
		RateLimitRPM: cfg.RateLimitRPM,
		Logger:       logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting painel server",
			applog.FieldOperation, applog.OpStartup,
			"port", cfg.Port,
			"backend", cfg.StoreBackend,
			"tz_offset_minutes", cfg.TZOffsetMinutes,
			"week_start", clk.WeekStart().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", applog.FieldOperation, applog.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
