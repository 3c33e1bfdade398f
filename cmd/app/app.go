package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bodegaapp/bodega-api/internal/api"
	"github.com/bodegaapp/bodega-api/internal/config"
	"github.com/bodegaapp/bodega-api/internal/db"
	"github.com/bodegaapp/bodega-api/internal/logger"
	"github.com/bodegaapp/bodega-api/internal/notification/email"
	"github.com/bodegaapp/bodega-api/internal/notification/whatsapp"
	"github.com/bodegaapp/bodega-api/internal/pkg/idgen"
	"github.com/bodegaapp/bodega-api/internal/repository/dao"
	"github.com/bodegaapp/bodega-api/internal/scheduler"
)

const configPath = "./cmd/app/config.yml"

func Start() error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment, conf.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}
	defer zap.L().Sync() //nolint:errcheck

	// Only the log level is applied without a restart.
	err = config.Watch(configPath, func(c *config.AppConfig) {
		if err := logger.SetLevel(c.Logger.Level); err != nil {
			zap.L().Warn("invalid log level in reloaded config", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to watch config -> %w", err)
	}

	loc, err := time.LoadLocation(conf.Sales.Location)
	if err != nil {
		return fmt.Errorf("failed to load location %q -> %w", conf.Sales.Location, err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = dao.InitTables(postgresDB); err != nil {
		return fmt.Errorf("failed to migrate database -> %w", err)
	}

	ids, err := idgen.New(conf.Sales.NodeID)
	if err != nil {
		return fmt.Errorf("failed to initialize id generator -> %w", err)
	}

	pool, err := ants.NewPool(conf.WhatsApp.Workers)
	if err != nil {
		return fmt.Errorf("failed to initialize worker pool -> %w", err)
	}
	defer pool.Release()

	s := api.NewServer(conf, postgresDB, api.Deps{
		WhatsApp: whatsapp.NewService(whatsapp.NewSender(conf.WhatsApp)),
		Mailer:   email.NewService(email.NewMailer(conf.Email)),
		Pool:     pool,
		IDs:      ids,
		Location: loc,
	})

	sched := scheduler.New(loc)
	if conf.Reminders.Enabled {
		if err = sched.AddOverdueReminders(conf.Reminders.Schedule, s.Credits); err != nil {
			return fmt.Errorf("failed to schedule reminders -> %w", err)
		}
	}
	sched.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + s.Config.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
	case <-ctx.Done():
		zap.L().Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.API.ShutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}
	sched.Stop(shutdownCtx)

	return nil
}
