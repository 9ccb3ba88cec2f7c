package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"world-conquest/internal/config"
	"world-conquest/internal/logs"
	"world-conquest/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Config file (default: configs/server.yaml, then built-in)")
	port := flag.String("port", "", "Server port, overrides the config")
	dbPath := flag.String("db", "", "Database path, overrides the config")
	bitmap := flag.String("map", "", "Province bitmap (PNG or BMP), overrides the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *port != "" {
		cfg.Server.Addr = ":" + *port
	}
	if *dbPath != "" {
		cfg.Server.DBPath = *dbPath
	}
	if *bitmap != "" {
		cfg.Map.Bitmap = *bitmap
	}

	// Use PORT env var if set (required for Render.com and similar platforms)
	if envPort := os.Getenv("PORT"); envPort != "" {
		cfg.Server.Addr = ":" + envPort
	}
	// Use DB_PATH env var if set, for cloud deployments with persistent disks
	if envDBPath := os.Getenv("DB_PATH"); envDBPath != "" {
		cfg.Server.DBPath = envDBPath
	}

	log := logs.New("server", cfg.Log)
	defer log.Sync()

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Fatal("failed to create server", zap.Error(err))
	}

	// Handle shutdown gracefully
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			log.Error("server error", zap.Error(err))
			done <- syscall.SIGTERM
		}
	}()

	<-done
	log.Info("shutting down server")

	if err := srv.Stop(); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("server stopped")
}
