package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Adv1cer/infirmary/internal/core/service"
	"github.com/Adv1cer/infirmary/internal/infra/buildinfo"
	"github.com/Adv1cer/infirmary/internal/infra/confloader"
	"github.com/Adv1cer/infirmary/internal/infra/shutdown"
	"github.com/Adv1cer/infirmary/internal/server/config"
	"github.com/Adv1cer/infirmary/internal/server/httpserver"
	"github.com/Adv1cer/infirmary/internal/storage"
	"github.com/Adv1cer/infirmary/internal/storage/memory"
	"github.com/Adv1cer/infirmary/internal/storage/redisstore"
	"github.com/Adv1cer/infirmary/internal/telemetry/logger"
	"github.com/Adv1cer/infirmary/internal/telemetry/metric"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 30 * time.Second

// defaultUnitTypes seeds the in-memory unit repository.
var defaultUnitTypes = []string{"tablet", "capsule", "bottle", "tube"}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("csrfguard-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting csrfguard-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", *configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	ctx := context.Background()

	engine, err := initStorage(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	registry := metric.NewRegistry()

	secret, dev := cfg.CSRF.ResolveSecret()
	if dev {
		log.Warn("CSRF_SECRET is not set, using the development default; set a secret before deploying")
	}
	guard, err := service.NewGuardService(engine.Store(), &service.GuardConfig{
		Secret: []byte(secret),
		TTL:    cfg.CSRF.TTL,
	}, service.WithObserver(registry))
	if err != nil {
		_ = engine.Close()
		return fmt.Errorf("init guard: %w", err)
	}
	registry.MustRegister(metric.NewCollector(guard.Count))

	sweeper := service.NewSweeper(guard, cfg.CSRF.SweepInterval, log)
	units := service.NewUnitService(memory.NewUnitStore(defaultUnitTypes...))

	routerCfg := &httpserver.RouterConfig{
		Guard:             guard,
		Units:             units,
		Ready:             engine.Ping,
		Backend:           engine.Backend(),
		Logger:            log,
		CSRFHeader:        cfg.CSRF.Header,
		RateLimitRPS:      cfg.Security.RateLimit.RPS,
		RateLimitBurst:    cfg.Security.RateLimit.Burst,
		AdminAllowList:    cfg.Security.AdminAllowList,
		AllowedOrigins:    cfg.Security.AllowedOrigins,
		TrustProxyHeaders: cfg.Security.TrustProxyHeaders,
	}
	if cfg.Telemetry.MetricsEnabled {
		routerCfg.Metrics = registry
	}

	httpCfg := cfg.Server.HTTP
	server := httpserver.New(httpCfg.Address, httpserver.NewRouter(routerCfg),
		httpserver.WithTimeouts(httpCfg.ReadTimeout, httpCfg.WriteTimeout),
		httpserver.WithLogger(log),
	)

	shutdownHandler := shutdown.NewHandler(shutdownTimeout, logger.Slog(log))

	// Hooks run in reverse order: server first, storage last.
	shutdownHandler.OnShutdown("storage", func(context.Context) error {
		return engine.Close()
	})
	shutdownHandler.OnShutdown("sweeper", func(context.Context) error {
		sweeper.Stop()
		return nil
	})
	shutdownHandler.OnShutdown("http", server.Shutdown)

	if *configFile != "" {
		watcher, err := watchLogLevel(*configFile, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config-watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	sweeper.Start()

	go func() {
		log.Info("HTTP server listening",
			"addr", httpCfg.Address,
			"tls", httpCfg.TLSCertFile != "",
			"storage", engine.Backend(),
			"token_ttl", guard.TTL().String())

		if err := server.Start(httpCfg.TLSCertFile, httpCfg.TLSKeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger("http server failed")
		}
	}()

	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{
		confloader.WithEnvAlias("CSRF_SECRET", "csrf.secret"),
	}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger builds the redacting logger and installs it as default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
		Attrs:  []any{"service", "csrfguard-server"},
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// initStorage opens the configured token store.
func initStorage(ctx context.Context, cfg *config.ServerConfig, log logger.Logger) (*storage.Engine, error) {
	storageCfg := storage.DefaultConfig()
	storageCfg.Backend = cfg.Storage.Backend
	storageCfg.Logger = logger.Slog(log)
	storageCfg.Redis = redisstore.Config{
		Address:     cfg.Storage.Redis.Address,
		Password:    cfg.Storage.Redis.Password,
		DB:          cfg.Storage.Redis.DB,
		KeyPrefix:   cfg.Storage.Redis.KeyPrefix,
		DialTimeout: redisstore.DefaultDialTimeout,
		ExpiryGrace: redisstore.DefaultExpiryGrace,
	}
	return storage.New(ctx, storageCfg)
}

// watchLogLevel reloads log.level whenever the config file changes.
func watchLogLevel(path string, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.Slog(log)))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(path)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w, nil
}
