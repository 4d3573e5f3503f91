package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sir_venger/multipart_lite/internal/app/resthttp"
	"github.com/sir_venger/multipart_lite/internal/config"
	"github.com/sir_venger/multipart_lite/internal/usecase/uploadsvc"
)

// main инициализирует REST HTTP-сервис и обеспечивает корректное завершение по сигналу.
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// run поднимает сервис и блокируется до остановки; отложенная очистка выполняется
// и при ошибке запуска слушателя.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return err
	}

	handler, srv, err := resthttp.NewServer(cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	stopGC := uploadsvc.StartGC(cfg.UploadDir, cfg.GCTTL, cfg.GCInterval, logger)
	defer stopGC()

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Сценарий graceful shutdown при получении SIGTERM/SIGINT.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("REST shutdown error", "err", err)
		}
	}()

	logger.Info("REST listening", "addr", cfg.ListenAddr, "upload_dir", cfg.UploadDir)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("REST server failed", "err", err)
		return err
	}
	return nil
}
