package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"finitefield.org/pen-checkout/internal/di"
	"finitefield.org/pen-checkout/internal/platform/config"
	"finitefield.org/pen-checkout/internal/platform/observability"
)

func main() {
	app := newApp(os.Stdin, os.Stdout)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "checkout: %v\n", err)
		os.Exit(1)
	}
}

func newApp(in io.Reader, out io.Writer) *cli.App {
	return &cli.App{
		Name:      "checkout",
		Usage:     "interactive checkout for the pen shop",
		Reader:    in,
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "receipt",
				Aliases: []string{"r"},
				Usage:   "receipt destination: a local file path or gs://bucket/prefix",
			},
			&cli.StringFlag{
				Name:  "seed",
				Usage: "YAML file with the customer directory and opening stock",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file with CHECKOUT_* overrides",
			},
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, c, in, out)
		},
	}
}

func run(ctx context.Context, c *cli.Context, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(config.WithEnvFile(c.String("env-file")))
	if err != nil {
		return err
	}
	if c.IsSet("receipt") {
		dest := strings.TrimSpace(c.String("receipt"))
		if dest == "" {
			return fmt.Errorf("--receipt cannot be empty")
		}
		cfg.Receipt.Destination = dest
	}
	if c.IsSet("seed") {
		cfg.Store.SeedFile = c.String("seed")
	}

	baseLogger, err := observability.NewLogger(cfg.Logging.OutputPaths...)
	if err != nil {
		return fmt.Errorf("initialise logger: %w", err)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("checkout")
	ctx = observability.WithLogger(ctx, logger)

	container, err := di.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			logger.Warn("failed to close container", zap.Error(err))
		}
	}()

	logger.Info("checkout started", zap.String("currency", cfg.Store.Currency), zap.String("receipt", cfg.Receipt.Destination))
	return newShop(in, out, container.Checkout, container.Receipts, cfg.Session.RestoreStockOnAbandon, logger).run(ctx)
}
