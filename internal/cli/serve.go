package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/namgaylhamo24/quick-post-02240350/internal/auth"
	"github.com/namgaylhamo24/quick-post-02240350/internal/bookmarks"
	"github.com/namgaylhamo24/quick-post-02240350/internal/config"
	"github.com/namgaylhamo24/quick-post-02240350/internal/feed"
	"github.com/namgaylhamo24/quick-post-02240350/internal/logger"
	"github.com/namgaylhamo24/quick-post-02240350/internal/notify"
	"github.com/namgaylhamo24/quick-post-02240350/internal/scheduler"
	"github.com/namgaylhamo24/quick-post-02240350/internal/seed"
	"github.com/namgaylhamo24/quick-post-02240350/internal/token"
	"github.com/namgaylhamo24/quick-post-02240350/server"
)

const (
	notifyQueueSize = 100
	notifyTimeout   = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		logger.Info("Migrations applied")
		cmd.Println("✅ Database is up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample users and bookmarks",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		data, err := seed.Default()
		if err != nil {
			return err
		}
		res, err := seed.Load(cmd.Context(), st, data)
		if err != nil {
			return err
		}

		cmd.Printf("🌱 Seeded %d users and %d bookmarks\n", res.Users, res.Bookmarks)
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired magic link tokens once",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		svc := auth.NewService(st, token.NewSigner(cfg.Auth.JWTSecret), notify.NewLogNotifier(nil), authOptions(cfg))
		n, err := svc.SweepExpired(cmd.Context())
		if err != nil {
			return err
		}

		cmd.Printf("🧹 Removed %d expired tokens\n", n)
		return nil
	},
}

func authOptions(c *config.Config) auth.Options {
	return auth.Options{
		FrontendURL:       c.FrontendURL,
		MagicLinkTTL:      c.Auth.MagicLinkTTL,
		AccessTokenTTL:    c.Auth.AccessTokenTTL,
		SingleActiveToken: c.Auth.SingleActiveToken,
	}
}

func newNotifier(c *config.Config) notify.Notifier {
	if c.Mail.Driver == "smtp" {
		return notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     c.Mail.Host,
			Port:     c.Mail.Port,
			Username: c.Mail.Username,
			Password: c.Mail.Password,
			From:     c.Mail.From,
		})
	}
	return notify.NewLogNotifier(nil)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	signer := token.NewSigner(cfg.Auth.JWTSecret)
	mailer := notify.NewAsync(newNotifier(cfg), notifyQueueSize, notifyTimeout)
	authSvc := auth.NewService(st, signer, mailer, authOptions(cfg))

	srv := server.New(server.Deps{
		Config:    cfg,
		Auth:      authSvc,
		Guard:     auth.NewGuard(signer, st.Users()),
		Bookmarks: bookmarks.NewService(st.Bookmarks()),
		Feed: feed.NewClient(feed.Config{
			BaseURL:   cfg.Feed.BaseURL,
			UserAgent: cfg.Feed.UserAgent,
			Timeout:   cfg.Feed.Timeout,
		}),
	})

	sched := scheduler.New(ctx, authSvc, cfg.Scheduler.TokenSweep)
	if err := sched.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Quick-Post server starting",
			logger.F("addr", cfg.Server.Addr),
			logger.F("environment", cfg.Environment),
		)
		if err := srv.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		sched.Stop()
		err := srv.Shutdown(shutdownCtx)
		if cerr := mailer.Close(shutdownCtx); cerr != nil {
			logger.Warn("Pending magic links were not delivered", logger.F("error", cerr.Error()))
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", logger.F("error", err.Error()))
		return err
	}

	logger.Info("Server stopped")
	return nil
}
