// Command bankmt is a terminal client for the bank. It talks to the ledger
// store directly and keeps the logged-in account in a local cache file, so a
// session survives between invocations until logout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benx421/bankmt/internal/advice"
	"github.com/benx421/bankmt/internal/cache"
	"github.com/benx421/bankmt/internal/config"
	"github.com/benx421/bankmt/internal/models"
	"github.com/benx421/bankmt/internal/repository"
	"github.com/benx421/bankmt/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: bankmt [flags] [command] [args]\n\n%s\n\nFlags:\n", usage)
		flag.PrintDefaults()
	}
	cachePath := flag.String("cache", "", "session cache file (default from SESSION_CACHE_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		return 1
	}
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Logger.Level = "warn"
	}
	if *cachePath != "" {
		cfg.Cache.Path = *cachePath
	}

	// stdout belongs to the user; logs go to stderr
	logger := cfg.Logger.NewLoggerTo(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := repository.OpenBackend(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open ledger store:", err)
		return 1
	}
	defer backend.Close() //nolint:errcheck // process is exiting

	initialBalance, err := models.ToCents(cfg.Account.InitialBalance)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid initial balance:", err)
		return 1
	}
	numbers, err := service.NewSnowflakeNumbers(cfg.Account.NodeID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	session := service.NewSessionManager(
		backend.Ledger,
		service.NewBcryptHasher(cfg.Account.BcryptCost),
		numbers,
		cache.NewFileSlot(cfg.Cache.Path),
		service.SessionConfig{InitialBalanceCents: initialBalance, StoreTimeout: cfg.Ledger.Timeout},
		logger,
	)
	session.Resume()

	processor := service.NewTransactionProcessor(backend.Ledger, service.ProcessorConfig{
		StoreTimeout: cfg.Ledger.Timeout,
		MaxAttempts:  cfg.Ledger.MaxUpdateAttempts,
	}, logger)

	var requester service.AdviceRequester
	if cfg.Advice.URL != "" {
		requester = advice.NewClient(cfg.Advice.URL, cfg.Advice.APIKey, cfg.Advice.Timeout, logger)
	}
	advisor := service.NewAdviceService(requester, cfg.Advice.Timeout, logger)

	c := newCLI(session, processor, advisor, os.Stdin, os.Stdout)
	if err := c.run(ctx, flag.Args()); err != nil {
		c.printError(err)
		return 1
	}
	return 0
}
