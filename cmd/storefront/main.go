package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"WestMarket/internal/catalog"
	"WestMarket/internal/ledger"
	"WestMarket/internal/shop"
	"WestMarket/pkg/kit"
)

func main() {
	service := "storefront"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8080")
	driver := getenv("STORE_DRIVER", "csv")

	cat, led, err := buildStores(driver)
	if err != nil {
		log.Fatal("store init", zap.Error(err))
	}
	log.Info("stores ready", zap.String("driver", driver))

	s := &shop.Server{
		Catalog: cat,
		Ledger:  led,
		Log:     log,
		AdminLimiter: kit.NewIPRateLimiter(
			atoienv("ADMIN_RATE_LIMIT", 30),
			atoienv("ADMIN_RATE_WINDOW_SECONDS", 60),
		),
	}

	h := shop.NewHandler(s, shop.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: getenv("METRICS_ENABLED", "true") == "true",
		MetricsToken:   getenv("METRICS_TOKEN", ""),
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func buildStores(driver string) (catalog.Store, ledger.Store, error) {
	switch driver {
	case "csv":
		dir := getenv("DATA_DIR", ".")
		return catalog.NewCSVStore(filepath.Join(dir, "products.csv")),
			ledger.NewCSVStore(filepath.Join(dir, "orders.csv")),
			nil
	case "memory":
		return catalog.NewMemStore(), ledger.NewMemStore(), nil
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return nil, nil, errors.New("DATABASE_URL required for postgres driver")
		}
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewPostgresStore(db), ledger.NewPostgresStore(db), nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", driver)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoienv(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
