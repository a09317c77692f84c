package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/examprep/internal/backend"
	"github.com/abhisek/examprep/internal/cache"
	"github.com/abhisek/examprep/internal/catalog"
	"github.com/abhisek/examprep/internal/itemgen"
	"github.com/abhisek/examprep/internal/llm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the generation backend HTTP server",
	Long: `Serve POST /api/generate and GET /health.

Batches are generated by the configured LLM provider, or by the offline
synthesizer with --offline. Responses are cached in Redis when
EXAMPREP_REDIS_ADDRESS is set and in memory otherwise.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from EXAMPREP_LISTEN_ADDR)")
	serveCmd.Flags().Bool("offline", false, "Generate batches from the embedded catalogue instead of an LLM")
}

func runServe(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Backend.ListenAddr
	}
	offline, _ := cmd.Flags().GetBool("offline")

	initCtx, initCancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer initCancel()

	var synth itemgen.Synthesizer
	if offline {
		synth = itemgen.NewOffline(catalog.Default(), itemgen.OfflineOptions{})
		slog.Info("using offline synthesizer")
	} else {
		provider, err := llm.NewProviderFromEnv(initCtx, st.EventRepo())
		if err != nil {
			return fmt.Errorf("LLM provider not configured (use --offline): %w", err)
		}
		synth = itemgen.New(provider, itemgen.DefaultConfig())
		slog.Info("using LLM synthesizer", "model", provider.ModelID())
	}

	opts := []backend.Option{
		backend.WithLogger(slog.Default()),
		backend.WithTimeout(cfg.Backend.RequestTimeout),
		backend.WithRateLimiter(backend.NewClientLimiter(cfg.Backend.RatePerSecond, cfg.Backend.RateBurst)),
		backend.WithHealthCheck("database", backend.PingerFunc(st.DB().PingContext)),
	}
	if cfg.Redis.Address != "" {
		client, err := cache.NewRedisClient(initCtx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		rc := cache.NewRedisCache(client, cache.DefaultPrefix)
		opts = append(opts, backend.WithCache(rc, cfg.Cache.TTL), backend.WithHealthCheck("redis", rc))
		slog.Info("redis cache connected", "address", cfg.Redis.Address)
	} else {
		opts = append(opts, backend.WithCache(cache.NewMemoryCache(nil), cfg.Cache.TTL))
	}

	srv := backend.NewServer(synth, opts...)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("HTTP server: %w", err)
	}

	slog.Info("shutting down gracefully...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
