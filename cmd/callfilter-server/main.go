package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kardianos/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpadapter "github.com/shalev396/Call-Filter/internal/adapter/http"
	"github.com/shalev396/Call-Filter/internal/adapter/jsonfile"
	"github.com/shalev396/Call-Filter/internal/adapter/rediscache"
	"github.com/shalev396/Call-Filter/internal/adapter/sqlite"
	"github.com/shalev396/Call-Filter/internal/config"
	"github.com/shalev396/Call-Filter/internal/metrics"
	"github.com/shalev396/Call-Filter/internal/port"
	"github.com/shalev396/Call-Filter/internal/usecase/screening"
)

const serviceName = "CallFilter"

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	fs := flag.NewFlagSet("callfilter-server", flag.ExitOnError)
	cfgPath := fs.String("config", os.Getenv("CALLFILTER_CONFIG"), "path to YAML config")
	args := os.Args[1:]
	action := ""
	if len(args) > 0 && (args[0] == "install" || args[0] == "uninstall" || args[0] == "run") {
		action, args = args[0], args[1:]
	}
	fs.Parse(args)

	absCfg := *cfgPath
	if absCfg != "" {
		if p, err := filepath.Abs(absCfg); err == nil {
			absCfg = p
		}
	}

	prg := &program{cfgPath: absCfg, logger: logger}
	svcConfig := &service.Config{
		Name:        serviceName,
		DisplayName: "Call Filter",
		Description: "Screens inbound calls against a whitelist and weekly schedule.",
	}
	if absCfg != "" {
		svcConfig.Arguments = []string{"run", "-config", absCfg}
	} else {
		svcConfig.Arguments = []string{"run"}
	}

	s, err := service.New(prg, svcConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("service init failed")
	}

	switch action {
	case "install", "uninstall":
		if err := service.Control(s, action); err != nil {
			logger.Fatal().Err(err).Str("action", action).Msg("service control failed")
		}
		fmt.Printf("%s: %s done\n", serviceName, action)
		return
	case "run":
		if err := s.Run(); err != nil {
			logger.Fatal().Err(err).Msg("service run failed")
		}
		return
	}

	// Foreground mode.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, absCfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

// program adapts run to the service manager.
type program struct {
	cfgPath string
	logger  zerolog.Logger
	cancel  context.CancelFunc
	done    chan struct{}
}

func (p *program) Start(s service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go func() {
		defer close(p.done)
		if err := run(ctx, p.cfgPath, p.logger); err != nil {
			p.logger.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
	return nil
}

func run(ctx context.Context, cfgPath string, logger zerolog.Logger) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.EnsureStorageDir(); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer closeRepo()
	logger.Info().Str("driver", cfg.Storage.Driver).Str("path", cfg.Storage.Path).Msg("storage opened")

	opts := []screening.Option{}
	if cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		cache := rediscache.New(rdb, cfg.RedisTTL(), logger)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := cache.Ping(pingCtx); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Address).Msg("redis unavailable, cache misses until it recovers")
		}
		cancel()
		opts = append(opts, screening.WithCache(cache))
	}

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		startMetricsServer(ctx, cfg.Monitoring.PrometheusAddr, logger)
	}

	svc := screening.NewService(repo, cfg.Policy(), logger, opts...)
	handler := httpadapter.NewHandler(svc, logger,
		httpadapter.WithRateLimit(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst))

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openRepository(cfg *config.Config) (port.ConfigRepository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		repo, err := sqlite.New(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return repo, func() { repo.Close() }, nil
	default:
		repo, err := jsonfile.New(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open jsonfile: %w", err)
		}
		return repo, func() {}, nil
	}
}

func startMetricsServer(ctx context.Context, addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	go func() {
		logger.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()
}
