package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Zachkp/design-portfolio/internal/auth"
	rediscache "github.com/Zachkp/design-portfolio/internal/cache/redis"
	"github.com/Zachkp/design-portfolio/internal/catalog"
	"github.com/Zachkp/design-portfolio/internal/config"
	"github.com/Zachkp/design-portfolio/internal/contact"
	"github.com/Zachkp/design-portfolio/internal/domain"
	"github.com/Zachkp/design-portfolio/internal/media"
	"github.com/Zachkp/design-portfolio/internal/repository/pg"
	"github.com/Zachkp/design-portfolio/internal/repository/sqlite"
	"github.com/Zachkp/design-portfolio/internal/storage"
	"github.com/Zachkp/design-portfolio/internal/visits"
	"github.com/Zachkp/design-portfolio/internal/web"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Design portfolio site with an admin media manager",
		Long: `portfolio serves a designer's one-page portfolio and the /admin media manager
used to attach images, videos and PDFs to the projects of the catalog.

Settings come from the environment (a .env file is read automatically);
flags override them.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newServeCmd(), newCreateAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE:  serve,
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	if cfg.Release() {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	slog.SetDefault(log)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()
	log.Info("database ready", "type", cfg.DatabaseType)

	var tracker *visits.Tracker
	if cfg.TrackVisits {
		hasher, err := visits.NewHasher()
		if err != nil {
			return err
		}
		tracker = visits.NewTracker(repos.visits, hasher, cfg.VisitRetention, log)
		defer tracker.Wait()
		go tracker.RunCleanup(ctx, 24*time.Hour)
		log.Info("visitor tracking enabled", "retention", cfg.VisitRetention)
	}

	store, local, closeStore, err := openObjectStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info("object store ready", "backend", cfg.StorageBackend, "bucket", cfg.StorageBucket)

	tokens, closeTokens, err := openTokenStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeTokens()

	authSvc := auth.NewService(repos.users, tokens, auth.NewBroker(), auth.Options{AllowSignUp: cfg.AllowSignUp}, log)
	mediaSvc := media.NewService(repos.media, store, cat, log)
	mailer := contact.NewMailer(contact.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		To:   cfg.ToEmail,
	}, log)

	sessionKey := []byte(cfg.SessionKey)
	if len(sessionKey) == 0 {
		sessionKey = make([]byte, 32)
		if _, err := rand.Read(sessionKey); err != nil {
			return err
		}
		log.Warn("SESSION_KEY not set, cookies will not survive a restart")
	}

	site, err := web.New(web.Deps{
		Media:        mediaSvc,
		Auth:         authSvc,
		Catalog:      cat,
		Mailer:       mailer,
		Local:        local,
		Visits:       tracker,
		Log:          log,
		SessionKey:   sessionKey,
		SecureCookie: strings.HasPrefix(cfg.BaseURL, "https://"),
		AllowSignUp:  cfg.AllowSignUp,
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           site.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Requests end with the process so open event streams do not hold up shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown", "error", err)
		}
	}()

	log.Info("listening", "addr", cfg.Addr(), "base_url", cfg.BaseURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info("server closed")
	return nil
}

func loadCatalog(cfg config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(cfg.CatalogPath)
}

type repositories struct {
	media  domain.MediaRepository
	users  domain.UserRepository
	visits domain.VisitRepository
	close  func()
}

func openRepositories(ctx context.Context, cfg config.Config) (*repositories, error) {
	switch cfg.DatabaseType {
	case "postgres":
		pool, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &repositories{
			media:  pg.NewMediaPostgresRepository(pool),
			users:  pg.NewUserPostgresRepository(pool),
			visits: pg.NewVisitPostgresRepository(pool),
			close:  pool.Close,
		}, nil
	default:
		db, err := sqlite.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &repositories{
			media:  sqlite.NewMediaRepository(db),
			users:  sqlite.NewUserRepository(db),
			visits: sqlite.NewVisitRepository(db),
			close:  func() { db.Close() },
		}, nil
	}
}

// openObjectStore also returns the local store, if any, so the web server can serve it.
func openObjectStore(ctx context.Context, cfg config.Config) (storage.ObjectStore, *storage.Local, func(), error) {
	if cfg.StorageBackend == "gcs" {
		gcs, err := storage.NewGCS(ctx, cfg.StorageBucket, cfg.GCSCredentials)
		if err != nil {
			return nil, nil, nil, err
		}
		return gcs, nil, func() { gcs.Close() }, nil
	}
	local, err := storage.NewLocal(cfg.StorageDir, cfg.BaseURL, cfg.StorageBucket)
	if err != nil {
		return nil, nil, nil, err
	}
	return local, local, func() {}, nil
}

func openTokenStore(ctx context.Context, cfg config.Config, log *slog.Logger) (auth.TokenStore, func(), error) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, keeping sessions in memory")
		return auth.NewMemoryTokenStore(cfg.SessionTTL), func() {}, nil
	}
	rdb, err := rediscache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
	if err != nil {
		return nil, nil, err
	}
	return rediscache.NewTokenStore(rdb, cfg.SessionTTL), func() { rdb.Close() }, nil
}
