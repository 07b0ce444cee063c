package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"player-controller/backend/internal/config"
	"player-controller/backend/internal/logger"
	"player-controller/backend/internal/physics/dynamics"
	"player-controller/backend/internal/transport/ws"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации")
	addr := flag.String("addr", "", "адрес HTTP сервера (перекрывает server.addr)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Ошибка загрузки конфигурации: %v", err)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Ошибка создания логгера: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting player-controller server",
		zap.String("addr", cfg.Server.Addr),
		zap.Int("target_tps", cfg.Scene.TargetTPS),
		zap.String("physics", dynamics.RuntimeName),
	)

	wsServer := ws.NewServer(cfg, dynamics.New(), logger.StdLog(zapLogger, "ws"))

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsServer.HandleWS)

	// Статистика циклов кадров всех сессий
	mux.HandleFunc("/debug/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(wsServer.Stats()); err != nil {
			zapLogger.Warn("stats encode failed", zap.Error(err))
		}
	})

	if _, err := os.Stat(cfg.Server.StaticDir); os.IsNotExist(err) {
		zapLogger.Warn("static directory does not exist", zap.String("dir", cfg.Server.StaticDir))
	}
	mux.Handle("/", http.FileServer(http.Dir(cfg.Server.StaticDir)))

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
