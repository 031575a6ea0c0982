package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	pkgconfig "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/config"
)

// ShopperPrefix namespaces the shopper CLI's environment variables.
const ShopperPrefix = "SHOPPER_"

// Profile storage backends for the shopper CLI.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

// ShopperConfig configures the shopper CLI. Variables are read with the
// SHOPPER_ prefix, e.g. SHOPPER_API_URL.
type ShopperConfig struct {
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"warn"`
	APIURL         string        `env:"API_URL" envDefault:"http://localhost:8080"`
	Storage        string        `env:"STORAGE" envDefault:"file"`
	StoragePath    string        `env:"STORAGE_PATH"`
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"15s"`
	CircuitBreaker bool          `env:"CIRCUIT_BREAKER" envDefault:"true"`
	ReturnURL      string        `env:"RETURN_URL" envDefault:"http://localhost:3000/checkout/retorno"`
}

// LoadShopper reads the shopper configuration.
func LoadShopper() (*ShopperConfig, error) {
	cfg := &ShopperConfig{}
	if err := pkgconfig.LoadWithPrefix(cfg, ShopperPrefix); err != nil {
		return nil, fmt.Errorf("load shopper config: %w", err)
	}
	if cfg.StoragePath == "" {
		cfg.StoragePath = defaultProfilePath(cfg.Storage)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ShopperConfig) validate() error {
	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SHOPPER_API_URL must be an absolute URL, got %q", c.APIURL)
	}
	if c.Storage != StorageFile && c.Storage != StorageSQLite {
		return fmt.Errorf("SHOPPER_STORAGE must be file or sqlite, got %q", c.Storage)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("SHOPPER_TIMEOUT must be positive")
	}
	return nil
}

func defaultProfilePath(backend string) string {
	name := "profile.json"
	if backend == StorageSQLite {
		name = "profile.db"
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "storefront", name)
}
