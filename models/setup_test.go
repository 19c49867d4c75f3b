package models_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/veo1/catalog-api/app/config"
	"github.com/veo1/catalog-api/app/database"
)

// newTestDB opens a migrated in-memory SQLite database private to the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	log, _ := logtest.NewNullLogger()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())

	db, err := database.Open(config.Database{
		Driver:      config.DriverSQLite,
		URL:         fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name),
		AutoMigrate: true,
	}, log)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, database.Close(db))
	})
	return db
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func stock(n int) *int {
	return &n
}

func text(s string) *string {
	return &s
}
