package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/terraconstructs/sandaran/cmd/cmdutil"
	"github.com/terraconstructs/sandaran/internal/authz"
	"github.com/terraconstructs/sandaran/internal/filter"
	"github.com/terraconstructs/sandaran/internal/middleware"
	"github.com/terraconstructs/sandaran/internal/repository"
	"github.com/terraconstructs/sandaran/internal/server"
	"github.com/terraconstructs/sandaran/internal/services/comment"
	"github.com/terraconstructs/sandaran/internal/services/document"
	"github.com/terraconstructs/sandaran/internal/services/emergency"
	"github.com/terraconstructs/sandaran/internal/services/iam"
	"github.com/terraconstructs/sandaran/internal/services/logistic"
	"github.com/terraconstructs/sandaran/internal/services/project"
	"github.com/terraconstructs/sandaran/internal/services/report"
	"github.com/terraconstructs/sandaran/internal/services/upload"
	"github.com/terraconstructs/sandaran/internal/services/user"
	"github.com/terraconstructs/sandaran/internal/services/validation"
	"github.com/terraconstructs/sandaran/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Sandaran API server",
	Long:  `Starts the HTTP server exposing the REST API, health and metrics endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdownTracing, err := telemetry.Init(ctx, cfg.Observability, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownTracing(sctx); err != nil {
				logger.WithError(err).Warn("tracing shutdown failed")
			}
		}()

		bundle, err := cmdutil.NewIAMServiceBundle(ctx, cfg, cmdutil.IAMServiceOptions{
			RequireSecret: true,
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		defer bundle.Close()
		logger.WithField("session_store", cfg.Session.Store).Info("connected to database")

		db := bundle.DB
		members := repository.NewBunMemberRepository(db)
		reports := repository.NewBunReportRepository(db)
		funds := repository.NewBunEmergencyRepository(db)
		metrics := telemetry.NewMetrics(nil)

		validator, err := validation.NewPayloadValidator(0)
		if err != nil {
			return fmt.Errorf("failed to compile payload schemas: %w", err)
		}
		filters, err := filter.New(0)
		if err != nil {
			return err
		}

		services := server.Services{
			IAM:       bundle.Service,
			Users:     user.NewService(bundle.Users, bundle.Service),
			Projects:  project.NewService(repository.NewBunProjectRepository(db), members, bundle.Users, funds),
			Reports:   report.NewService(reports),
			Comments:  comment.NewService(repository.NewBunCommentRepository(db), reports),
			Documents: document.NewService(repository.NewBunDocumentRepository(db)),
			Emergency: emergency.NewService(funds, metrics),
			Logistics: logistic.NewService(repository.NewBunLogisticRepository(db)),
		}
		if cfg.Upload.Enabled() {
			uploads, err := upload.NewS3Service(ctx, cfg.Upload)
			if err != nil {
				return fmt.Errorf("failed to configure uploads: %w", err)
			}
			services.Uploads = uploads
			services.Reports = services.Reports.WithObjectStore(uploads, logger)
			services.Documents = services.Documents.WithObjectStore(uploads, logger)
			logger.WithField("bucket", cfg.Upload.Bucket).Info("uploads enabled")
		} else {
			logger.Warn("UPLOAD_BUCKET not set, upload endpoints are disabled")
		}

		limiter, err := middleware.NewRateLimiter(cfg.LoginRateLimit, middleware.DefaultLimiterCacheSize, logger)
		if err != nil {
			return err
		}
		corsOpts := server.CORSOptionsFor(cfg.CORS.AllowedOrigins)

		if cfg.Session.PurgeSchedule != "" {
			purger, err := iam.NewSessionPurger(bundle.Service, cfg.Session.PurgeSchedule, logger, metrics)
			if err != nil {
				return err
			}
			purger.Start()
			defer purger.Stop()
			logger.WithFields(logrus.Fields{
				"schedule":          cfg.Session.PurgeSchedule,
				"database_sessions": bundle.UsesDatabaseSessions(),
			}).Info("session purge scheduled")
		}

		handler := server.NewH2CHandler(server.RouterOptions{
			Services:     services,
			Authorizer:   authz.NewAuthorizer(members, authz.WithLogger(logger), authz.WithRecorder(metrics)),
			Validator:    validator,
			Filter:       filters,
			Logger:       logger,
			Metrics:      metrics,
			LoginLimiter: limiter,
			CORSOptions:  &corsOpts,
			SecureCookie: cfg.Session.SecureCookie,
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.WithFields(logrus.Fields{
				"addr": cfg.ServerAddr,
				"url":  cfg.ServerURL,
			}).Info("starting server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down gracefully")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
			logger.Info("server stopped")
			return nil
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
