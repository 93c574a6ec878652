package handler

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"loyalty-platform/internal/audit"
	"loyalty-platform/internal/model"
	"loyalty-platform/internal/notify"
	"loyalty-platform/internal/order"
	"loyalty-platform/pkg/config"
	"loyalty-platform/pkg/database"
	"loyalty-platform/prometheus"
)

var metricsOnce sync.Once

// wireHandlers points the handler package at an engine over the given store,
// a quiet hub and a no-op auditor. Metrics register once per test binary.
func wireHandlers(t *testing.T, st order.Store) {
	t.Helper()
	metricsOnce.Do(func() {
		prometheus.InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "test"}})
	})
	h := notify.NewHub(zap.NewNop())
	eng := order.NewEngine(st, h, audit.Nop{}, order.Config{EarnRatePercent: 10, KioskPerProductEarn: true}, zap.NewNop())
	Init(eng, h, nil, audit.Nop{}, &config.Config{})
}

// openTestDB opens an isolated in-memory sqlite database, migrates the full
// schema and installs it as the package database. The pool is pinned to one
// connection so every query sees the same in-memory store.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.AdminUser{},
		&model.Business{},
		&model.Customer{},
		&model.Category{},
		&model.Collection{},
		&model.CollectionSet{},
		&model.CurrencyProduct{},
		&model.PointProduct{},
		&model.CurrencyOrder{},
		&model.PointOrder{},
		&model.LedgerEntry{},
		&model.CollectionProgress{},
		&model.Shipment{},
		&model.AuditLog{},
		&model.KioskSession{},
	))
	database.SetDB(db)
	return db
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("logger", zap.NewNop())
	return c, rec
}
