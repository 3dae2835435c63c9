package di

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"finitefield.org/pen-checkout/internal/platform/config"
	"finitefield.org/pen-checkout/internal/platform/observability"
	"finitefield.org/pen-checkout/internal/platform/seed"
	"finitefield.org/pen-checkout/internal/platform/storage"
	"finitefield.org/pen-checkout/internal/receipt"
	"finitefield.org/pen-checkout/internal/services"
)

var (
	storageClientFactory = gcs.NewClient
	receiptWriterFactory = storage.NewReceiptWriter
	closeStorageClient   = (*gcs.Client).Close
)

// Container wires the catalog, customer directory and checkout services for one shop process.
type Container struct {
	Config    config.Config
	Logger    *zap.Logger
	Catalog   *services.Catalog
	Directory *services.CustomerDirectory
	Checkout  *services.CheckoutService
	Receipts  *receipt.Issuer

	storageClient *gcs.Client
}

// NewContainer loads the seed named by cfg and assembles the runtime dependencies.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := seed.Load(cfg.Store.SeedFile)
	if err != nil {
		return nil, err
	}

	catalog, err := services.NewCatalog(services.CatalogDeps{
		Stock:  data.Stock,
		Logger: observability.EventLogger(logger.Named("catalog")),
	})
	if err != nil {
		return nil, err
	}
	directory := services.NewCustomerDirectory(services.CustomerDirectoryDeps{
		Customers: data.Customers,
		Logger:    observability.EventLogger(logger.Named("customers")),
	})

	checkoutLogger := observability.EventLogger(logger.Named("checkout"))
	checkout, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Catalog:   catalog,
		Directory: directory,
		Shipping:  services.NewShippingCalculator(services.ShippingCalculatorDeps{Logger: checkoutLogger}),
		Pricing:   services.NewPricingEngine(services.PricingEngineDeps{Logger: checkoutLogger}),
		Currency:  cfg.Store.Currency,
		Logger:    checkoutLogger,
		Tracer:    observability.Tracer(),
		Meter:     observability.Meter(),
	})
	if err != nil {
		return nil, err
	}

	container := &Container{
		Config:    cfg,
		Logger:    logger,
		Catalog:   catalog,
		Directory: directory,
		Checkout:  checkout,
	}

	sink, err := container.buildSink(ctx)
	if err != nil {
		_ = container.Close()
		return nil, err
	}
	issuer, err := receipt.NewIssuer(receipt.IssuerDeps{
		Formatter: receipt.NewFormatter(receipt.FormatterOptions{
			Locale:   cfg.Store.Locale,
			Location: cfg.Receipt.Location,
			Currency: cfg.Store.Currency,
		}),
		Sink:   sink,
		Logger: observability.EventLogger(logger.Named("receipt")),
	})
	if err != nil {
		_ = container.Close()
		return nil, err
	}
	container.Receipts = issuer
	return container, nil
}

func (c *Container) buildSink(ctx context.Context) (receipt.Sink, error) {
	target := c.Config.Receipt.ReceiptTarget()
	if !target.IsCloudStorage() {
		return receipt.NewFileSink(target.Path)
	}

	var opts []option.ClientOption
	if endpoint := c.Config.Storage.Endpoint; endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}
	client, err := storageClientFactory(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("di: create storage client: %w", err)
	}
	c.storageClient = client
	c.Logger.Info("receipts stored in cloud storage", zap.String("bucket", target.Bucket), zap.String("prefix", target.Prefix))
	writer, err := receiptWriterFactory(client, target.Bucket, target.Prefix)
	if err != nil {
		return nil, fmt.Errorf("di: create receipt writer: %w", err)
	}
	return writer, nil
}

// Close releases the storage client when one was created.
func (c *Container) Close() error {
	if c == nil || c.storageClient == nil {
		return nil
	}
	client := c.storageClient
	c.storageClient = nil
	return closeStorageClient(client)
}
