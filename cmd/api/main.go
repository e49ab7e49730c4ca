package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/henriquesergio1/it-asset-360-sub000/internal/auth"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/config"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/db"
	internalhttp "github.com/henriquesergio1/it-asset-360-sub000/internal/http"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/inventory"
	"github.com/henriquesergio1/it-asset-360-sub000/internal/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	var store inventory.Store
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn().Msg("STORE_DRIVER=memory: dados não serão persistidos")
		store = inventory.NewMemoryStore()
	default:
		pool, err := db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		store = inventory.NewPostgresStore(pool)
	}

	var (
		redisClient *redis.Client
		cache       inventory.Cache
	)
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis parse: %w", err)
		}
		redisClient = redis.NewClient(redisOpts)
		defer redisClient.Close()
		cache = redisClient
	}

	uploader, err := newUploader(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	inventoryLogger := log.With().Str("component", "inventory").Logger()
	service := inventory.NewService(store, cache, cfg.LookupCacheTTL, inventory.NewMetrics(registry), inventoryLogger)

	operators := make(map[string]string, len(cfg.Operators))
	for _, op := range cfg.Operators {
		operators[op.Name] = op.PasswordHash
	}
	if len(operators) == 0 {
		log.Warn().Msg("OPERATORS vazio: nenhum operador conseguirá autenticar")
	}
	directory := auth.NewDirectory(operators)
	if weak := directory.Weak(); len(weak) > 0 {
		log.Warn().Strs("operators", weak).Msg("hash de operador fraco ou ilegível: gere novamente com hashpass")
	}

	handler := internalhttp.NewRouter(internalhttp.Deps{
		Config:    cfg,
		Service:   service,
		Storage:   uploader,
		JWT:       auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL),
		Operators: directory,
		Redis:     redisClient,
		Registry:  registry,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("store", cfg.StoreDriver).Str("storage", cfg.Storage.Provider).Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newUploader(ctx context.Context, sc config.StorageConfig) (storage.Uploader, error) {
	if sc.Provider != config.ProviderS3 {
		return storage.NoopUploader{}, nil
	}
	return storage.NewS3Uploader(ctx, storage.S3Config{
		Endpoint:     sc.Endpoint,
		Region:       sc.Region,
		Bucket:       sc.Bucket,
		AccessKey:    sc.AccessKey,
		SecretKey:    sc.SecretKey,
		UsePathStyle: sc.UsePathStyle,
	})
}
