package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/smartslip/internal/api"
	"github.com/yourusername/smartslip/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := loadConfigWithSecrets(ctx, configFile)
	if err != nil {
		return err
	}
	rt, err := buildRuntime(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	checks := map[string]api.Pinger{"database": rt.db}
	if rt.redis != nil {
		checks["redis"] = api.PingFunc(func(ctx context.Context) error {
			return rt.redis.Ping(ctx).Err()
		})
	}

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	server := api.NewServer(api.Config{
		ServiceName:    cfg.App.Name,
		Version:        Version,
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Timeout:        time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		MetricsPath:    metricsPath,
		Logger:         rt.logger,
		Analyzer:       rt.analyzer,
		Cache:          rt.cache,
		Checks:         checks,
	})
	// Shutdown is driven below so readiness drops before the listener closes
	if err := server.Start(context.Background()); err != nil {
		return err
	}

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewScheduler(rt.cache, rt.logger)
		if err := sched.SchedulePurge(cfg.Scheduler.PurgeSchedule); err != nil {
			return err
		}
		if cfg.Scheduler.InvalidateDaily != "" {
			if err := sched.ScheduleInvalidate(cfg.Scheduler.InvalidateDaily); err != nil {
				return err
			}
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	server.SetReady(true)
	rt.logger.WithField("port", cfg.Server.Port).Info("smartslip is serving")

	<-ctx.Done()
	server.SetReady(false)
	return server.Shutdown()
}
