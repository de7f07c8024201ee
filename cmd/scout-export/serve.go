package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go-scout-export/internal/api"
	"go-scout-export/internal/api/handler"
	"go-scout-export/internal/pipeline"
	"go-scout-export/pkg/router"
)

var serveFlags struct {
	listenAddress string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the export API and run scheduled exports",
	Long: `Serve the HTTP API for starting, inspecting and stopping exports, plus
Prometheus metrics on /metrics and API docs on /swagger/.

When server.schedule is set, every team is exported on that cron schedule.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(globals)
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Schedule != "" {
		scheduler, err := startSchedule(ctx, a, cfg.Server.Schedule, cfg.Server.ScheduleJSON)
		if err != nil {
			return err
		}
		defer func() { <-scheduler.Stop().Done() }()
	}

	r := router.New(a.logger)
	api.RegisterRoutes(r, &handler.ExportHandler{Service: a.service, Jobs: a.jobs, Logger: a.logger}, a.registry)

	return r.Start(ctx, cfg.Server.ListenAddress)
}

// startSchedule submits an all-teams export on every tick of schedule.
func startSchedule(ctx context.Context, a *app, schedule string, asJSON bool) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		handle, err := a.service.Submit(ctx, pipeline.Request{JSON: asJSON})
		if err != nil {
			a.logger.Error("scheduled export failed to start", zap.Error(err))
			return
		}
		a.logger.Info("scheduled export started", zap.String("job_id", handle.ID))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	c.Start()
	a.logger.Info("export schedule started", zap.String("schedule", schedule), zap.Bool("json", asJSON))
	return c, nil
}
