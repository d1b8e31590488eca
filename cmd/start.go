package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"forecast-recon/core/loader"
	"forecast-recon/core/logger"
	"forecast-recon/core/middleware/auth"
	"forecast-recon/core/middleware/rayid"
	"forecast-recon/feature/integrity"
	"forecast-recon/feature/reconciliation"
	"forecast-recon/feature/reconciliation/store"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "forecast-recon/docs/swagger"
)

var migrateOnStart bool

// @title Forecast Reconciliation API
// @version 1.0
// @description Reconciles order forecasts against general-ledger entries.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reconciliation server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		logg := a.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if migrateOnStart {
			if err := store.Migrate(a.db); err != nil {
				return err
			}
			logg.Info("Schema migrated")
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			JSONEncoder:           json.Marshal,
			JSONDecoder:           json.Unmarshal,
			ReadTimeout:           a.cfg.Server.ReadTimeout(),
			WriteTimeout:          a.cfg.Server.WriteTimeout(),
		})

		mgr := loader.NewManager(logg)
		mgr.Register(reconciliation.NewFeature(a.service))
		mgr.Register(integrity.NewFeature(a.store, a.client, a.cfg.Storage.Bucket, logg))

		// RayID first so every later log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
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

		// Swagger stays public
		app.Get("/swagger/*", swagger.HandlerDefault)

		if !a.cfg.Server.AuthEnabled() {
			logg.Warn("API key not configured, requests are not authenticated")
		}
		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			errCh <- app.Listen(":" + a.cfg.Server.Port)
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-c:
		}
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	startCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Migrate the schema before serving")
	RootCmd.AddCommand(startCmd)
}
