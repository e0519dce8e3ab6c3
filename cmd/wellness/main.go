package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/autosync"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/config"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/ingest/apple"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/mcp"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/objectstore"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/scheduler"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/server"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("Wellness starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Run migrations
	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Connect database
	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	// Lab document storage is optional
	var objects *objectstore.Client
	if cfg.Storage.Bucket != "" {
		objects, err = objectstore.New(ctx, cfg.Storage.Region, cfg.Storage.Bucket)
		if err != nil {
			log.Error("failed to init object storage", "error", err)
			os.Exit(1)
		}
		log.Info("object storage ready", "bucket", cfg.Storage.Bucket)
	}

	// Ingest provider and background auto-sync
	appleProvider := apple.NewProvider(db, log)
	runner := autosync.NewRunner(db, appleProvider, log)

	sched := scheduler.New(time.Duration(cfg.Sync.Tick())*time.Second, log)
	sched.Schedule(autosync.TaskID,
		time.Duration(cfg.Sync.AutoSyncInterval())*time.Minute, runner.Run)
	sched.Start(ctx)
	defer sched.Stop()

	// HTTP server with MCP transport mounted
	srv := server.New(db, appleProvider, objects, cfg.Auth.APIKey, log)

	mcpSrv := mcp.New(db, Version, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return mcp.WithUserID(ctx, r.Header.Get("X-User-ID"))
		}),
	))

	// Start server, tsnet or plain HTTP
	var listener net.Listener
	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
