// Command shopper is a terminal storefront: it browses the catalog through
// the REST API and keeps a cart and wishlist in a local profile.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/apiclient"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/cart"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/config"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage/file"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage/sqlite"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/wishlist"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/httpclient"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/logger"
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadShopper()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	log := logger.NewWithWriter("shopper", cfg.LogLevel, stderr)

	store, closeStore, err := openProfile(cfg)
	if err != nil {
		log.Error("failed to open profile", slog.String("path", cfg.StoragePath), slog.String("error", err.Error()))
		return 1
	}
	defer closeStore()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s := newShopper(ctx, cfg, store, stdout, log)
	if err := s.run(ctx, args); err != nil {
		return reportError(stderr, err)
	}
	return 0
}

func newShopper(ctx context.Context, cfg *config.ShopperConfig, store storage.Storage, out io.Writer, log *slog.Logger) *shopper {
	httpCfg := apiclient.DefaultHTTPConfig()
	httpCfg.Timeout = cfg.Timeout
	var doer apiclient.Doer = httpclient.New(httpCfg)
	if cfg.CircuitBreaker {
		doer = httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), httpclient.DefaultCircuitBreakerConfig("storefront-api"), log)
	}

	api := apiclient.New(cfg.APIURL, store, apiclient.WithDoer(doer), apiclient.WithLogger(log))
	c := cart.New(ctx, store,
		cart.WithLogger(log),
		cart.WithHooks(cart.UIHooks{
			ShowToast: func(msg string) { fmt.Fprintln(out, msg) },
		}),
	)
	w := wishlist.New(ctx, store, wishlist.WithLogger(log))

	return &shopper{api: api, cart: c, wishlist: w, out: out, returnURL: cfg.ReturnURL}
}

func openProfile(cfg *config.ShopperConfig) (storage.Storage, func(), error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create profile dir: %w", err)
		}
		s, err := sqlite.Open(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		s, err := file.Open(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}

// reportError prints the user-facing message and maps it to an exit code.
func reportError(w io.Writer, err error) int {
	if errors.Is(err, errUsage) {
		fmt.Fprintln(w, err)
		return 2
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		fmt.Fprintln(w, appErr.Message)
		return 1
	}
	fmt.Fprintln(w, err)
	return 1
}
