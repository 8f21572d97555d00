package cmd

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zone-mirror/core/config"
	"zone-mirror/core/database"
	"zone-mirror/core/loader"
	"zone-mirror/core/logger"
	"zone-mirror/core/middleware/auth"
	"zone-mirror/core/middleware/rayid"
	"zone-mirror/core/secrets"
	"zone-mirror/feature/mirror"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mirror HTTP server",
	Long: `Starts the HTTP server, applies pending schema migrations and, when a
sync interval is configured, schedules periodic reconciliation runs.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := buildLogger(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		cfPath := cfg.Sync.CloudflareConfig
		if cloudflareConfigFlag != "" {
			cfPath = cloudflareConfigFlag
		}
		dbPath := cfg.Sync.MyDNSConfig
		if mydnsConfigFlag != "" {
			dbPath = mydnsConfigFlag
		}

		// 3. Connect to Database (Required)
		dbCfg, err := config.LoadDatabaseConfig(dbPath)
		if err != nil {
			logg.Fatal("Failed to load database config", zap.Error(err))
		}
		db, err := database.Connect(*dbCfg, logg)
		if err != nil {
			logg.Fatal("Database connection failed", zap.Error(err))
		}

		// 4. Apply Migrations
		if err := database.Migrate(db); err != nil {
			logg.Fatal("Failed to apply migrations", zap.Error(err))
		}

		var cipher *secrets.Cipher
		if cfg.Sync.EncryptionKey != "" {
			cipher, err = secrets.NewCipher(cfg.Sync.EncryptionKey)
			if err != nil {
				logg.Fatal("Invalid encryption key", zap.Error(err))
			}
		} else {
			logg.Warn("No encryption key configured, user credentials will not sync")
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()
		feat := mirror.NewFeature(db, logg, cfg.Cloudflare, cfPath, cipher)
		mgr.Register(feat)

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
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

		// 2.5 Health Check (Public)
		app.Get("/healthz", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Periodic Sync Scheduler
		stopScheduler := make(chan struct{})
		if cfg.Sync.IntervalSeconds > 0 {
			interval := time.Duration(cfg.Sync.IntervalSeconds) * time.Second
			logg.Info("Starting sync scheduler", zap.Duration("interval", interval))
			go runScheduler(feat.Service(), interval, stopScheduler, logg)
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		close(stopScheduler)
		_ = app.Shutdown()
	},
}

// runScheduler triggers a background sync run on every tick. A tick that
// lands while a run is still active is skipped, never queued.
func runScheduler(svc *mirror.Service, interval time.Duration, stop <-chan struct{}, logg *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := svc.TriggerSync(); err != nil {
				if errors.Is(err, mirror.ErrSyncInFlight) {
					logg.Warn("Skipping scheduled sync, previous run still active")
					continue
				}
				logg.Error("Failed to trigger scheduled sync", zap.Error(err))
			}
		}
	}
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
