package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"sqldeck/internal/db"
	_ "sqldeck/internal/db/engines"
	"sqldeck/internal/logger"
	"sqldeck/pkg/config"
)

var defaultPort = 8080

func main() {
	// flags
	cfgPath := flag.String("config", filepath.Join(".", "configs", "example.yaml"), "path to config YAML")
	port := flag.Int("port", 0, "http port (overrides config, default"+fmt.Sprintf(" %d)", defaultPort))
	timeout := flag.Int("timeout", 10, "per-request db timeout seconds")
	flag.Parse()

	// attempt to load config file (optional)
	var appCfg config.AppConfig
	if *cfgPath != "" {
		logger.Info("config file %s", *cfgPath)
		if c, err := config.LoadFile(*cfgPath); err == nil {
			appCfg = c
		} else {
			logger.Warn("error reading config file: %v", err)
		}
	}

	reg := db.NewRegistry()
	svc := db.NewService(reg)

	// open preconfigured connections; a bad entry is logged, not fatal
	for _, cc := range appCfg.Connections {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeout)*time.Second)
		info, err := svc.Connect(ctx, cc)
		cancel()
		if err != nil {
			logger.Error("preconfigured connection %q: %v", cc.Name, err)
			continue
		}
		logger.Info("preconfigured connection %q ready as %s", cc.Name, info.ID)
	}

	// equivalent of cmp.Or(*port, appCfg.Server.Port, defaultPort); cmp.Or needs go1.22+
	if *port == 0 {
		*port = appCfg.Server.Port
	}
	if *port == 0 {
		*port = defaultPort
	}

	a := &api{svc: svc, timeout: time.Duration(*timeout) * time.Second}
	addr := fmt.Sprintf(":%d", *port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      a.routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown: %v", err)
		}
	}()

	logger.Info("listening on %s", addr)
	logger.Info("registered engines: %v", db.RegisteredEngines())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("%v", err)
	}

	// every open handle gets a close attempt, failures included
	if err := svc.CloseAll(); err != nil {
		logger.Error("closing connections: %v", err)
	}
}
