package storage

import (
	"fmt"
	"path"
	"strings"

	"finitefield.org/pen-checkout/internal/platform/textutil"
)

const anonymousCustomerSegment = "cliente"

// ReceiptPathParams identify the receipt object for a placed order.
type ReceiptPathParams struct {
	Prefix       string
	CustomerName string
	OrderID      string
}

// BuildReceiptPath composes `<prefix>/receipts/<customer-slug>/<order-id>.txt`.
func BuildReceiptPath(params ReceiptPathParams) (string, error) {
	orderID, err := validateSegment("orderID", params.OrderID)
	if err != nil {
		return "", err
	}
	customer := textutil.Slug(params.CustomerName)
	if customer == "" {
		customer = anonymousCustomerSegment
	}
	fileName, err := validateFileName(orderID + ".txt")
	if err != nil {
		return "", err
	}

	object := fmt.Sprintf("receipts/%s/%s", customer, fileName)
	prefix := strings.Trim(strings.TrimSpace(params.Prefix), "/")
	if prefix == "" {
		return object, nil
	}
	if strings.Contains(prefix, "..") {
		return "", fmt.Errorf("storage: prefix contains invalid traversal sequence")
	}
	return path.Join(prefix, object), nil
}

func validateSegment(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("storage: %s is required", name)
	}
	if strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("storage: %s contains invalid path characters", name)
	}
	if strings.Contains(value, "..") {
		return "", fmt.Errorf("storage: %s contains invalid traversal sequence", name)
	}
	return value, nil
}

func validateFileName(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("storage: fileName is required")
	}
	if strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("storage: fileName contains invalid path characters")
	}
	return value, nil
}
