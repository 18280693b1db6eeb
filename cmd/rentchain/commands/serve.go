package commands

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/totegamma/rentchain/internal/clock"
	"github.com/totegamma/rentchain/internal/infra/database"
	"github.com/totegamma/rentchain/internal/infra/repository"
	"github.com/totegamma/rentchain/internal/infra/tracing"
	"github.com/totegamma/rentchain/internal/present/rest"
	restmw "github.com/totegamma/rentchain/internal/present/rest/middleware"
	"github.com/totegamma/rentchain/internal/service"
	"github.com/totegamma/rentchain/internal/usecase"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	if conf.Engine.Operator == "" {
		slog.Warn("no operator key configured, user registration is disabled", slog.String("module", "main"))
	}

	shutdown, err := tracing.Setup(ctx, "rentchain", conf.Server.TraceEndpoint, conf.Server.EnableTrace)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			slog.Error("tracer shutdown", slog.String("error", err.Error()), slog.String("module", "main"))
		}
	}()

	db, err := openDatabase(conf)
	if err != nil {
		return err
	}
	err = database.Migrate(db)
	if err != nil {
		return err
	}

	var mc *memcache.Client
	if conf.Server.MemcachedAddr != "" {
		mc = database.NewMemcached(conf.Server.MemcachedAddr)
	}

	deps := usecase.Deps{
		Store:  repository.NewStore(db, mc),
		Clock:  clock.System{},
		Config: conf.Domain(),
	}

	var signals *service.SignalService
	if conf.Server.RedisAddr != "" {
		rdb, err := database.NewRedis(ctx, conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		signals = service.NewSignalService(rdb)
		deps.Publisher = signals
	}

	if conf.Server.AuditSchedule != "" {
		audit := service.NewAuditService(usecase.NewAuditUsecase(deps))
		err = audit.Start(conf.Server.AuditSchedule)
		if err != nil {
			return err
		}
		defer audit.Stop()
	}

	handler := rest.NewHandler(
		conf.Domain(),
		usecase.NewUserUsecase(deps),
		usecase.NewPropertyUsecase(deps),
		usecase.NewAgreementUsecase(deps),
		usecase.NewEventUsecase(deps),
		signals,
	)
	auth := restmw.NewAuthMiddleware(service.NewAuthService(conf.Domain(), clock.System{}))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(otelecho.Middleware("rentchain"))
	e.Use(auth.IdentifyIdentity)
	handler.RegisterRoutes(e)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", slog.String("addr", conf.Server.Listen), slog.String("fqdn", conf.Engine.FQDN), slog.String("module", "main"))
		errCh <- e.Start(conf.Server.Listen)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
