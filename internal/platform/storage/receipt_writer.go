package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	gcs "cloud.google.com/go/storage"

	domain "finitefield.org/pen-checkout/internal/domain"
)

const receiptContentType = "text/plain; charset=utf-8"

var errInvalidBucket = errors.New("storage: bucket name is required")

type objectOpener func(ctx context.Context, bucket, object, contentType string) io.WriteCloser

// ReceiptWriter uploads rendered receipts to a Cloud Storage bucket.
type ReceiptWriter struct {
	bucket string
	prefix string
	open   objectOpener
}

// NewReceiptWriter constructs a ReceiptWriter backed by the provided Cloud Storage client.
func NewReceiptWriter(client *gcs.Client, bucket, prefix string) (*ReceiptWriter, error) {
	if client == nil {
		return nil, errors.New("storage receipt writer: client is required")
	}
	return newReceiptWriter(bucket, prefix, func(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = contentType
		return w
	})
}

func newReceiptWriter(bucket, prefix string, open objectOpener) (*ReceiptWriter, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errInvalidBucket
	}
	return &ReceiptWriter{bucket: bucket, prefix: prefix, open: open}, nil
}

// Write uploads body and returns the gs:// URL of the stored object.
func (w *ReceiptWriter) Write(ctx context.Context, order domain.Order, body []byte) (string, error) {
	object, err := BuildReceiptPath(ReceiptPathParams{
		Prefix:       w.prefix,
		CustomerName: order.Customer.Name,
		OrderID:      order.ID,
	})
	if err != nil {
		return "", err
	}

	writer := w.open(ctx, w.bucket, object, receiptContentType)
	if _, err := writer.Write(body); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("storage: write receipt %s: %w", object, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("storage: finalise receipt %s: %w", object, err)
	}
	return fmt.Sprintf("gs://%s/%s", w.bucket, object), nil
}
