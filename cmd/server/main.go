// Command server runs the distribution service: operator API, public
// token endpoints, and the notification dispatcher.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	accesshandler "rfdist/internal/access/handler"
	disthandler "rfdist/internal/distribution/handler"
	distmetrics "rfdist/internal/distribution/metrics"
	distservice "rfdist/internal/distribution/service"
	diststore "rfdist/internal/distribution/store"
	jwttoken "rfdist/internal/jwt_token"
	"rfdist/internal/notify"
	ophandler "rfdist/internal/operator/handler"
	opservice "rfdist/internal/operator/service"
	opstore "rfdist/internal/operator/store"
	"rfdist/internal/platform/config"
	"rfdist/internal/platform/httpserver"
	"rfdist/internal/platform/logger"
	"rfdist/internal/platform/middleware"
	"rfdist/internal/platform/postgres"
	platformredis "rfdist/internal/platform/redis"
	proghandler "rfdist/internal/program/handler"
	progservice "rfdist/internal/program/service"
	progstore "rfdist/internal/program/store"
	httptransport "rfdist/internal/transport/http"
	userhandler "rfdist/internal/user/handler"
	userservice "rfdist/internal/user/service"
	userstore "rfdist/internal/user/store"
	"rfdist/pkg/platform/sentinel"
)

const (
	jwtIssuer   = "rfdist"
	jwtAudience = "rfdist-admin"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	var (
		operators     opservice.Store
		users         userservice.Store
		programs      progservice.Store
		distributions distservice.DistributionStore
	)
	if db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			cancel()
			log.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		cancel()
		operators = opstore.NewPostgres(db)
		users = userstore.NewPostgres(db)
		programs = progstore.NewPostgres(db)
		distributions = diststore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		operators = opstore.NewInMemoryStore()
		users = userstore.NewInMemoryStore()
		programs = progstore.NewInMemoryStore()
		distributions = diststore.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var notifier notify.Notifier = notify.Noop{}
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		notifier = notify.NewRedisDispatcher(redisClient.Client)
		log.Info("notification dispatch via redis")
	} else {
		log.Warn("REDIS_URL not set, notifications disabled")
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, jwtIssuer, jwtAudience)

	operatorService := opservice.New(operators, jwtService, opservice.WithLogger(log))
	userService := userservice.New(users, userservice.WithLogger(log))
	programService := progservice.New(programs, progservice.WithLogger(log))
	distributionService := distservice.New(distributions, programs, users,
		distservice.WithLogger(log),
		distservice.WithNotifier(notifier),
		distservice.WithMetrics(distmetrics.New()),
	)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := operatorService.Seed(seedCtx, cfg.BootstrapOperator, cfg.BootstrapPassword); err != nil {
		seedCancel()
		log.Error("failed to seed bootstrap operator", "error", err)
		os.Exit(1)
	}
	seedCancel()

	healthCheck := func(ctx context.Context) error {
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("%w: postgres: %v", sentinel.ErrUnavailable, err)
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				return fmt.Errorf("%w: redis: %v", sentinel.ErrUnavailable, err)
			}
		}
		return nil
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Access:        accesshandler.New(distributionService, log),
		Distributions: disthandler.New(distributionService, log),
		Programs:      proghandler.New(programService, log),
		Users:         userhandler.New(userService, log),
		Operators:     ophandler.New(operatorService, log),
		Redirect:      httptransport.NewRedirect(log),
		Auth:          middleware.RequireAuth(jwttoken.NewMiddlewareAdapter(jwtService), log),
		Health:        healthCheck,
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
	log.Info("server stopped")
}
