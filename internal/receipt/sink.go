package receipt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	domain "finitefield.org/pen-checkout/internal/domain"
)

// Sink persists a rendered receipt and reports where it was stored.
type Sink interface {
	Write(ctx context.Context, order domain.Order, body []byte) (string, error)
}

// FileSink writes receipts to a local file, replacing any previous receipt at that path.
type FileSink struct {
	path string
}

// NewFileSink returns a sink writing to path. Missing parent directories are created on write.
func NewFileSink(path string) (*FileSink, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("receipt: file path is required")
	}
	return &FileSink{path: path}, nil
}

func (s *FileSink) Write(_ context.Context, _ domain.Order, body []byte) (string, error) {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("receipt: create directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, body, 0o644); err != nil {
		return "", fmt.Errorf("receipt: write file: %w", err)
	}
	return s.path, nil
}

// Issuer renders an order and hands it to a sink.
type Issuer struct {
	formatter *Formatter
	sink      Sink
	logger    func(context.Context, string, map[string]any)
}

// IssuerDeps configures an Issuer. Sink is required.
type IssuerDeps struct {
	Formatter *Formatter
	Sink      Sink
	Logger    func(context.Context, string, map[string]any)
}

// NewIssuer builds an issuer, defaulting the formatter and logger when unset.
func NewIssuer(deps IssuerDeps) (*Issuer, error) {
	if deps.Sink == nil {
		return nil, errors.New("receipt issuer: sink is required")
	}
	formatter := deps.Formatter
	if formatter == nil {
		formatter = NewFormatter(FormatterOptions{})
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &Issuer{formatter: formatter, sink: deps.Sink, logger: logger}, nil
}

// Formatter exposes the formatter so callers render summaries consistently with the receipt.
func (i *Issuer) Formatter() *Formatter { return i.formatter }

// Issue renders the receipt and stores it, returning the location reported by the sink.
func (i *Issuer) Issue(ctx context.Context, order domain.Order) (string, error) {
	body := i.formatter.Render(order)
	location, err := i.sink.Write(ctx, order, []byte(body))
	if err != nil {
		return "", err
	}
	i.logger(ctx, "receipt_issued", map[string]any{"orderId": order.ID, "location": location, "bytes": len(body)})
	return location, nil
}
