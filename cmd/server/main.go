package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/config"
	persistlog "github.com/konrad-jamrozik/game-ts-sub002/internal/persistence/log"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/persistence/snapshot"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/persistence/store"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/game"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/tuning"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/transport/ws"
)

func main() {
	var cfg config.Server
	if err := config.ParseEnv(&cfg); err != nil {
		config.NewLogger(os.Stderr, slog.LevelError).Error("config", "err", err)
		os.Exit(2)
	}
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "http listen address")
	flag.StringVar(&cfg.DataDir, "data", cfg.DataDir, "runtime data directory")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed (used only when starting a fresh game)")
	flag.StringVar(&cfg.TuningPath, "tuning", cfg.TuningPath, "path to tuning.yaml (default: embedded)")
	flag.DurationVar(&cfg.Debounce, "save_debounce", cfg.Debounce, "snapshot write debounce")
	flag.BoolVar(&cfg.AllowDebug, "allow_debug", cfg.AllowDebug, "accept debug commands from clients")
	flag.Parse()

	logger := config.NewLogger(os.Stdout, cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, logger *slog.Logger) error {
	tune := tuning.Defaults()
	if cfg.TuningPath != "" {
		t, err := tuning.Load(cfg.TuningPath)
		if err != nil {
			return err
		}
		tune = t
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	st, err := store.OpenSQLite(filepath.Join(cfg.DataDir, "game.db"))
	if err != nil {
		return err
	}
	defer st.Close()

	var resume *snapshot.Snapshot
	snap, err := st.Get(context.Background(), snapshot.MainID, tune.Persistence.Version)
	switch {
	case err == nil:
		resume = &snap
	case errors.Is(err, snapshot.ErrVersionMismatch):
		logger.Warn("discarded snapshot from another version", "err", err)
	case errors.Is(err, store.ErrNotFound):
	default:
		return err
	}

	writer := store.NewWriter(st, cfg.Debounce, logger)
	defer writer.Close()
	turns := persistlog.NewTurnLogger(cfg.DataDir)
	defer turns.Close()

	opts := ws.Options{AllowDebug: cfg.AllowDebug, Log: logger}
	if cfg.AuditLog {
		audit := persistlog.NewAuditLogger(cfg.DataDir)
		defer audit.Close()
		opts.Audit = audit
	}

	eng, err := game.New(game.Config{
		Seed:    cfg.Seed,
		Tuning:  &tune,
		Log:     logger,
		Sink:    writer,
		TurnLog: turns,
		Resume:  resume,
	})
	if err != nil {
		return err
	}
	srv, err := ws.NewServer(eng, opts)
	if err != nil {
		return err
	}
	defer srv.Do(func(e *game.Engine) {
		if err := e.Close(); err != nil {
			logger.Error("close engine", "err", err)
		}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/v1/snapshot", func(rw http.ResponseWriter, r *http.Request) {
		var snap snapshot.Snapshot
		srv.Do(func(e *game.Engine) { snap = e.Snapshot() })
		rw.Header().Set("Content-Type", "application/zstd")
		if err := snapshot.Encode(rw, snap); err != nil {
			logger.Warn("snapshot export failed", "err", err)
		}
	})
	mux.HandleFunc("/v1/ws", srv.Handler())

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(ctx2)
	}()

	logger.Info("listening", "addr", cfg.Addr, "turn", eng.GameState().Turn, "resumed", resume != nil)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
