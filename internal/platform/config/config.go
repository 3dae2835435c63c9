package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/language"
)

const (
	defaultEnvFile            = ".env"
	defaultCurrency           = "BRL"
	defaultLocale             = "pt-BR"
	defaultTimezone           = "America/Recife"
	defaultReceiptDestination = "recibo_compra.txt"
	defaultLogOutput          = "stderr"
	gcsScheme                 = "gs://"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Store   StoreConfig
	Receipt ReceiptConfig
	Storage StorageConfig
	Session SessionConfig
	Logging LoggingConfig
}

// StoreConfig describes the shop presentation and seed data.
type StoreConfig struct {
	Currency string
	Locale   language.Tag
	SeedFile string
}

// ReceiptConfig controls receipt rendering and persistence.
type ReceiptConfig struct {
	Destination string
	Location    *time.Location
}

// StorageConfig configures the Cloud Storage client used for gs:// receipt destinations.
type StorageConfig struct {
	Endpoint string
}

// SessionConfig toggles checkout session behaviour.
type SessionConfig struct {
	RestoreStockOnAbandon bool
}

// LoggingConfig selects where structured logs are written.
type LoggingConfig struct {
	OutputPaths []string
}

// ReceiptTarget is the parsed receipt destination.
type ReceiptTarget struct {
	Bucket string
	Prefix string
	Path   string
}

// IsCloudStorage reports whether the receipt should be uploaded to a bucket.
func (t ReceiptTarget) IsCloudStorage() bool {
	return t.Bucket != ""
}

// ReceiptTarget splits the destination into a bucket/prefix pair or a local path.
func (c ReceiptConfig) ReceiptTarget() ReceiptTarget {
	dest := strings.TrimSpace(c.Destination)
	if !strings.HasPrefix(dest, gcsScheme) {
		return ReceiptTarget{Path: dest}
	}
	rest := strings.TrimPrefix(dest, gcsScheme)
	bucket, prefix, _ := strings.Cut(rest, "/")
	return ReceiptTarget{Bucket: bucket, Prefix: strings.Trim(prefix, "/")}
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration by combining defaults, .env overrides and environment variables.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	var invalid []string

	localeRaw := stringWithDefault(lookup, "CHECKOUT_LOCALE", defaultLocale)
	locale, err := language.Parse(localeRaw)
	if err != nil {
		invalid = append(invalid, "Store.Locale")
	}

	tzName := stringWithDefault(lookup, "CHECKOUT_TIMEZONE", defaultTimezone)
	location, err := time.LoadLocation(tzName)
	if err != nil {
		invalid = append(invalid, "Receipt.Location")
	}

	cfg := Config{
		Store: StoreConfig{
			Currency: strings.ToUpper(stringWithDefault(lookup, "CHECKOUT_CURRENCY", defaultCurrency)),
			Locale:   locale,
			SeedFile: stringWithDefault(lookup, "CHECKOUT_SEED_FILE", ""),
		},
		Receipt: ReceiptConfig{
			Destination: stringWithDefault(lookup, "CHECKOUT_RECEIPT_DESTINATION", defaultReceiptDestination),
			Location:    location,
		},
		Storage: StorageConfig{
			Endpoint: stringWithDefault(lookup, "CHECKOUT_STORAGE_ENDPOINT", ""),
		},
		Session: SessionConfig{
			RestoreStockOnAbandon: boolWithDefault(lookup, "CHECKOUT_RESTORE_STOCK_ON_ABANDON", true),
		},
		Logging: LoggingConfig{
			OutputPaths: csvWithDefault(lookup, "CHECKOUT_LOG_OUTPUT"),
		},
	}
	if len(cfg.Logging.OutputPaths) == 0 {
		cfg.Logging.OutputPaths = []string{defaultLogOutput}
	}

	if err := validateConfig(cfg, invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, invalid []string) error {
	missing := append([]string(nil), invalid...)

	if !isCurrencyCode(cfg.Store.Currency) {
		missing = append(missing, "Store.Currency")
	}
	target := cfg.Receipt.ReceiptTarget()
	if strings.HasPrefix(strings.TrimSpace(cfg.Receipt.Destination), gcsScheme) {
		if target.Bucket == "" {
			missing = append(missing, "Receipt.Destination")
		}
	} else if target.Path == "" {
		missing = append(missing, "Receipt.Destination")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
