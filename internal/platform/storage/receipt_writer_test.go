package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	domain "finitefield.org/pen-checkout/internal/domain"
)

type memoryObject struct {
	bytes.Buffer
	bucket, object, contentType string
	closed                      bool
	closeErr                    error
}

func (m *memoryObject) Close() error {
	m.closed = true
	return m.closeErr
}

func TestReceiptWriterUploadsObject(t *testing.T) {
	var opened *memoryObject
	writer, err := newReceiptWriter("pen-receipts", "loja", func(_ context.Context, bucket, object, contentType string) io.WriteCloser {
		opened = &memoryObject{bucket: bucket, object: object, contentType: contentType}
		return opened
	})
	if err != nil {
		t.Fatalf("newReceiptWriter error: %v", err)
	}

	order := domain.Order{ID: "order1", Customer: domain.Customer{Name: "Carla Dias"}}
	location, err := writer.Write(context.Background(), order, []byte("=== RECIBO DE COMPRA ===\n"))
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if location != "gs://pen-receipts/loja/receipts/carla-dias/order1.txt" {
		t.Fatalf("unexpected location %s", location)
	}
	if opened.bucket != "pen-receipts" || opened.object != "loja/receipts/carla-dias/order1.txt" {
		t.Fatalf("unexpected object %s/%s", opened.bucket, opened.object)
	}
	if opened.contentType != receiptContentType || !opened.closed {
		t.Fatalf("expected closed text object, got %+v", opened)
	}
	if opened.String() != "=== RECIBO DE COMPRA ===\n" {
		t.Fatalf("unexpected body %q", opened.String())
	}
}

func TestReceiptWriterReportsCloseFailure(t *testing.T) {
	writer, _ := newReceiptWriter("bucket", "", func(context.Context, string, string, string) io.WriteCloser {
		return &memoryObject{closeErr: errors.New("upload rejected")}
	})
	if _, err := writer.Write(context.Background(), domain.Order{ID: "o1"}, []byte("x")); err == nil {
		t.Fatalf("expected close failure to be reported")
	}
}

func TestReceiptWriterValidation(t *testing.T) {
	if _, err := NewReceiptWriter(nil, "bucket", ""); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := newReceiptWriter(" ", "", nil); !errors.Is(err, errInvalidBucket) {
		t.Fatalf("expected invalid bucket, got %v", err)
	}
	writer, _ := newReceiptWriter("bucket", "", func(context.Context, string, string, string) io.WriteCloser {
		t.Fatalf("object must not be opened for an invalid order")
		return nil
	})
	if _, err := writer.Write(context.Background(), domain.Order{}, nil); err == nil {
		t.Fatalf("expected error for missing order id")
	}
}
