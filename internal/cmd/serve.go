package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/notiva/notiva/internal/config"
	"github.com/notiva/notiva/internal/core"
	"github.com/notiva/notiva/internal/core/engine"
	"github.com/notiva/notiva/internal/core/mailer"
	"github.com/notiva/notiva/internal/core/store"
	"github.com/notiva/notiva/internal/core/wordpress"
	apperrors "github.com/notiva/notiva/internal/errors"
	"github.com/notiva/notiva/internal/observability"
	"github.com/notiva/notiva/internal/server"
	"github.com/notiva/notiva/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Ctrl+C (SIGINT) or SIGTERM triggers a graceful shutdown: in-flight
requests get the configured shutdown timeout to finish, then the store
connection is closed and logs are flushed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		observability.InitServerLogger("notiva", cfg.Logging.Level, cfg.Logging.Format)
		logger := observability.ServerLogger

		logger.Info("initializing server",
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("metrics", cfg.Metrics.Enabled))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return apperrors.WrapDatabaseError(err, "store open failed")
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		if err := db.Migrate(ctx); err != nil {
			return apperrors.WrapDatabaseError(err, "store migration failed")
		}

		rewriter := wordpress.NewURLRewriter(cfg.WordPress.APIURL, cfg.WordPress.PublicURL)
		cms := wordpress.NewClient(cfg.WordPress.APIURL, rewriter, logger)
		if cfg.WordPress.Timeout > 0 {
			cms.HTTP.Timeout = cfg.WordPress.Timeout
		}

		searchEngine := engine.NewSearchEngine(cms, logger, engine.SearchOptions{
			CacheTTL:       cfg.Search.CacheTTL,
			CacheSize:      cfg.Search.CacheSize,
			PopularitySize: cfg.Search.PopularitySize,
			Timeout:        cfg.Search.Timeout,
		})
		scorer := &engine.RelatedScorer{Logger: logger}

		limiter := engine.NewLimiter(limiterClasses(cfg.RateLimit.Classes))
		gate := engine.NewGate(limiter, nil, logger)
		go limiter.StartSweeper(ctx, cfg.RateLimit.SweepInterval)

		captcha := &mailer.CaptchaVerifier{
			VerifyURL: cfg.Captcha.VerifyURL,
			Secret:    cfg.Captcha.Secret,
			Logger:    logger,
		}
		mail := mailer.NewMailer(cfg.Mail.APIURL, cfg.Mail.APIKey, cfg.Mail.From, logger)

		api := &handlers.API{
			Search:      searchEngine,
			Scorer:      scorer,
			CMS:         cms,
			Views:       db,
			Subscribers: db,
			Captcha:     captcha,
			Mailer:      mail,
			Gate:        gate,
			Logger:      logger,
			Debug:       cfg.Debug.Enabled,
			AdminToken:  cfg.Debug.AdminToken,
		}

		health := handlers.NewHealthManager(versionInfo.Version)
		health.RegisterChecker("store", handlers.HealthCheckFunc(func(ctx context.Context) error {
			return db.DB.PingContext(ctx)
		}))
		health.RegisterChecker("cms", handlers.HealthCheckFunc(func(ctx context.Context) error {
			_, err := cms.RecentPosts(ctx, 1, 0)
			return err
		}))

		srv := server.New(server.Options{
			Host:           cfg.Server.Host,
			Port:           cfg.Server.Port,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			IdleTimeout:    cfg.Server.IdleTimeout,
			MetricsEnabled: cfg.Metrics.Enabled,
		}, api, health)

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		select {
		case err := <-errChan:
			return apperrors.WrapInternal(err, "server error")
		case <-ctx.Done():
		}

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return apperrors.WrapInternal(err, "server shutdown failed")
		}

		logger.Info("HTTP server stopped gracefully")
		// Sync errors are often benign (stdout/stderr already closed)
		_ = logger.Sync()
		return nil
	},
}

// limiterClasses merges config overrides over the built-in class table.
func limiterClasses(overrides map[string]config.RateLimitClassConfig) map[string]engine.ClassConfig {
	classes := make(map[string]engine.ClassConfig, len(engine.DefaultClasses))
	for name, cfg := range engine.DefaultClasses {
		classes[name] = cfg
	}

	for name, override := range overrides {
		cfg, ok := classes[name]
		if !ok {
			cfg = engine.ClassConfig{Window: time.Minute, MaxRequests: 30, Block: 5 * time.Minute}
		}
		if override.Window > 0 {
			cfg.Window = override.Window
		}
		if override.MaxRequests > 0 {
			cfg.MaxRequests = override.MaxRequests
		}
		if override.Block > 0 {
			cfg.Block = override.Block
		}
		switch override.OnError {
		case "open":
			cfg.OnError = core.FailOpen
		case "closed":
			cfg.OnError = core.FailClosed
		}
		classes[name] = cfg
	}

	return classes
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
