package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"expns/internal/backend"
	"expns/internal/cli"
	apphttp "expns/internal/http"
	"expns/internal/log"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx := cli.GracefulShutdown(logger)

	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, res.Service, logger)
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expns server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			log.FieldSession, res.Service.Session())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	exitCode := 0
	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		exitCode = 1
	}

	if err := res.Cleanup(); err != nil {
		logger.Error("Backend cleanup failed", log.FieldError, err.Error())
	}
	logger.Info("Server stopped gracefully")
	os.Exit(exitCode)
}
