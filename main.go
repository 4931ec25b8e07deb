package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/thenewhumanitarian/chat-service/api"
	"github.com/thenewhumanitarian/chat-service/chat"
	"github.com/thenewhumanitarian/chat-service/config"
	"github.com/thenewhumanitarian/chat-service/retrieval"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if err := godotenv.Load(); err != nil {
		logger.Println("no .env file found, using process environment")
	}

	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := retrieval.NewStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("vector store setup: %v", err)
	}
	if store == nil {
		logger.Println("no vector store configured, retrieval disabled")
	}

	svc := chat.NewService(cfg, store, logger)
	server := api.New(cfg, svc, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}()

	logger.Printf("listening on :%s (provider %s, environment %s)", cfg.Port, cfg.Provider, cfg.Environment)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server error: %v", err)
	}
}
