package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"financas/internal/amqp"
	"financas/internal/cli"
	apphttp "financas/internal/http"
	"financas/internal/log"
	"financas/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadConfig(logger)

	store, cleanup := cli.OpenStateStore(cfg, logger)
	defer func() {
		if cleanup != nil {
			if err := cleanup(); err != nil {
				logger.Error("state backend cleanup failed", log.FieldError, err)
			}
		}
	}()

	// Audit publishing is optional; the ledger works without a broker.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("amqp connection failed", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		events = client
		logger.Info("audit publishing enabled", "exchange", cfg.AMQPExchange)
	}

	svc := services.New(store, events, logger.WithComponent(log.ComponentLedger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := svc.Restore(ctx); err != nil {
		logger.Error("state restore failed", log.FieldError, err)
		os.Exit(1)
	}
	if u := svc.CurrentUser(); u != nil {
		logger.Info("session restored", log.FieldUserID, u.ID)
	}

	srv := apphttp.NewServer(cfg.Addr(), svc, logger.WithComponent(log.ComponentHTTP))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			log.FieldOperation, log.OpStartup,
			"addr", cfg.Addr(),
			log.FieldBackend, cfg.Backend.String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("server stopped", log.FieldOperation, log.OpShutdown)
}
