package main

import (
	"os"

	"expns/internal/cli"
	"expns/internal/config"
	"expns/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	ctx := cli.GracefulShutdown(log.New(log.Config{Output: os.Stderr, Level: log.ParseLevel(cfg.LogLevel)}))
	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
