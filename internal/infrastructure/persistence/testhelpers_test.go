package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/infrastructure/config"
	"github.com/projectcontrols/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testActor = shared.NewPrincipal(uuid.New(), "COST_ENGINEER")

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// setupTestDB opens an in-memory SQLite database with every table migrated.
// A single connection keeps the in-memory database alive across transactions.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := Open(sqlite.Open(":memory:"), &config.DatabaseConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, database.DB.AutoMigrate(
		&models.ControlAccountModel{},
		&models.WorkPackageModel{},
		&models.MilestoneModel{},
		&models.PlanningPackageModel{},
		&models.AssignmentModel{},
		&models.EVMRecordModel{},
		&models.CommitmentModel{},
		&models.CommitmentItemModel{},
		&models.CommitmentWorkPackageModel{},
		&models.CommitmentRevisionModel{},
		&models.CommitmentInvoiceModel{},
		&models.BudgetModel{},
		&models.BudgetItemModel{},
		&models.BudgetRevisionModel{},
	))
	return database.DB
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
