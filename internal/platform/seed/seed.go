package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	domain "finitefield.org/pen-checkout/internal/domain"
)

//go:embed default.yaml
var defaultSeed []byte

// ErrInvalidSeed indicates the seed document could not be accepted.
var ErrInvalidSeed = errors.New("seed: invalid document")

// Data holds the initial customers and stock levels for a shop process.
type Data struct {
	Customers []domain.Customer
	Stock     map[domain.Variant]int
}

type document struct {
	Customers []struct {
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
	} `yaml:"customers"`
	Stock map[string]int `yaml:"stock"`
}

// Default returns the embedded seed.
func Default() (Data, error) {
	return Parse(defaultSeed)
}

// Load reads the seed file at path. An empty path yields the embedded seed.
func Load(path string) (Data, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes a YAML seed document. Variants missing from the stock section keep the
// embedded defaults; unknown variants and negative stock are rejected.
func Parse(raw []byte) (Data, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Data{}, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	data := Data{Stock: make(map[domain.Variant]int, len(doc.Stock))}
	for idx, c := range doc.Customers {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return Data{}, fmt.Errorf("%w: customer %d has no name", ErrInvalidSeed, idx+1)
		}
		data.Customers = append(data.Customers, domain.Customer{Name: name, Email: strings.TrimSpace(c.Email)})
	}
	for key, qty := range doc.Stock {
		variant, err := domain.ParseVariant(key)
		if err != nil {
			return Data{}, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
		}
		if qty < 0 {
			return Data{}, fmt.Errorf("%w: stock for %s cannot be negative", ErrInvalidSeed, variant)
		}
		data.Stock[variant] = qty
	}
	return data, nil
}
