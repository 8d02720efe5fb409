package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/audit"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/config"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/controller"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/db"
	logger "github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/logging"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/engine"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/pdp/matrix"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/router"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/service"
	"github.com/ygfuyfffdf-max/v0-crypto-dashboard-design-sub016/util"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the decision API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.GetConfig()
		defer logger.Sync()

		loc, err := loadLocation(cfg.Engine.Timezone)
		if err != nil {
			return err
		}

		logger.Info("Loading permission matrix", zap.String("file", cfg.Engine.MatrixFile))
		manager, err := matrix.NewManager(cfg.Engine.MatrixFile)
		if err != nil {
			return fmt.Errorf("loading permission matrix: %w", err)
		}

		aggregator, err := newAggregator(cfg.Risk, loc)
		if err != nil {
			return fmt.Errorf("building risk model: %w", err)
		}

		eventBus := util.NewEventBus()
		notificationService := util.NewNotificationService()

		var checks []controller.HealthCheck
		alertSinks := audit.MultiAlertSink{audit.NewBusAlertSink(eventBus)}
		if cfg.Redis.Enabled {
			if err := db.InitRedis(cfg.Redis); err != nil {
				return err
			}
			defer db.CloseRedis()
			alertSinks = append(alertSinks, audit.NewRedisAlertSink(db.RedisClient, cfg.Audit.AlertChannel))
			checks = append(checks, controller.HealthCheck{Name: "redis", Check: db.Ping})
		}

		auditOpts := []audit.Option{
			audit.WithCapacity(cfg.Audit.Capacity),
			audit.WithAlertCeiling(cfg.Audit.AlertCeiling),
			audit.WithAlertSink(alertSinks),
		}
		var repos []audit.NamedRepository
		var searcher audit.Searcher
		if cfg.Elasticsearch.Enabled {
			es, err := audit.NewElasticsearchRepository(cfg.Elasticsearch.URL, cfg.Elasticsearch.Index)
			if err != nil {
				return fmt.Errorf("creating elasticsearch client: %w", err)
			}
			repos = append(repos, audit.NamedRepository{Name: "elasticsearch", Repo: es})
			searcher = es
		}
		if cfg.Audit.File != "" {
			file, err := audit.NewFileRepository(cfg.Audit.File)
			if err != nil {
				return err
			}
			defer file.Close()
			repos = append(repos, audit.NamedRepository{Name: "file", Repo: file})
			if searcher == nil {
				searcher = file
			}
		}
		persister := audit.NewPersister(cfg.Audit.FlushInterval, cfg.Audit.BatchSize, repos...)
		if len(repos) > 0 {
			auditOpts = append(auditOpts, audit.WithPersister(persister))
		} else {
			logger.Warn("No audit repository configured, the trail is kept in memory only")
		}
		if searcher != nil {
			auditOpts = append(auditOpts, audit.WithSearcher(searcher))
		}
		recorder := audit.NewRecorder(auditOpts...)

		decisionEngine := engine.NewEngine(manager, aggregator, engineConfig(cfg.Engine, loc), engine.WithRecorder(recorder))

		services, err := service.InitializeServices(
			decisionEngine,
			recorder,
			nil,
			util.NewValidationUtil(),
			notificationService,
			eventBus,
			service.SessionConfig{
				Timeout:                   cfg.Session.Timeout,
				RiskCeiling:               cfg.Session.RiskCeiling,
				MinVerificationConfidence: cfg.Session.MinVerificationConfidence,
				TombstoneCapacity:         cfg.Session.TombstoneCapacity,
			},
		)
		if err != nil {
			return fmt.Errorf("initializing services: %w", err)
		}

		routerOpts := router.Options{
			JWTSecret:         []byte(cfg.Auth.JWTSecret),
			AdminGroups:       cfg.Auth.Groups,
			RateLimitRequests: cfg.RateLimit.Requests,
			RateLimitWindow:   cfg.RateLimit.Window,
		}
		if db.Enabled() {
			routerOpts.RateLimit = db.RateLimit
		}

		gin.SetMode(gin.ReleaseMode)
		server := &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
			Handler: router.SetupRouter(controller.InitializeControllers(services, checks...), routerOpts),
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		eventBus.Start(ctx)

		// the persister outlives the server so shutdown entries are stored
		persistCtx, stopPersister := context.WithCancel(context.WithoutCancel(ctx))
		defer stopPersister()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return persister.Run(persistCtx)
		})
		g.Go(func() error {
			logger.Info("Starting server",
				zap.String("port", cfg.Server.Port),
				zap.String("matrixVersion", decisionEngine.Registry().Version()))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server crashed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("Shutting down server...")
			defer stopPersister()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			err := server.Shutdown(shutdownCtx)
			services.Shutdown(shutdownCtx)
			if alertErr := recorder.Close(shutdownCtx); alertErr != nil {
				logger.Warn("Pending risk alerts were not delivered", zap.Error(alertErr))
			}
			if err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			return nil
		})

		err = g.Wait()
		eventBus.Wait()
		logger.Info("Server exited")
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
