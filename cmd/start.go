package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"cohort-indexer/core/loader"
	"cohort-indexer/core/logger"
	"cohort-indexer/core/middleware/auth"
	"cohort-indexer/core/middleware/rayid"
	"cohort-indexer/feature/hierarchy"
	"cohort-indexer/feature/portals"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the API server and crawl scheduler",
	Long: `Starts the HTTP server serving portal records and crawl status. When
crawl.interval_minutes is set, crawls run on that schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		zap.ReplaceGlobals(a.logger)
		logg := a.logger

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		crawls := hierarchy.NewService(a.resolver(), a.cfg.Crawl.Interval(), logg)

		mgr := loader.NewManager()
		mgr.Register(portals.NewFeature(a.sink, a.cfg.Output.Dir, logg))
		mgr.Register(hierarchy.NewFeature(crawls))

		// RayID first so every log line can be traced
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Debug("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Public endpoints
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey, Public: []string{"/health", "/metrics"}}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}
		for _, f := range mgr.Features() {
			logg.Info("Feature registered", zap.String("feature", f.Name()), zap.Bool("enabled", f.IsEnabled()))
		}

		crawls.Start(ctx)

		serveErr := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			serveErr <- app.Listen(a.cfg.Server.Addr())
		}()

		select {
		case err := <-serveErr:
			return err
		case <-ctx.Done():
		}

		logg.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(a.cfg.Server.ShutdownTimeout()); err != nil {
			logg.Warn("Server shutdown incomplete", zap.Error(err))
		}

		waitCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout())
		defer cancel()
		done := make(chan struct{})
		go func() {
			crawls.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-waitCtx.Done():
			logg.Warn("Crawl still running at shutdown")
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
