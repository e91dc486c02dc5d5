package persistence

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/projectcontrols/backend/internal/domain/evm"
	"github.com/projectcontrols/backend/internal/domain/shared"
	"github.com/projectcontrols/backend/internal/infrastructure/config"
	"github.com/projectcontrols/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database over a mocked PostgreSQL connection
func newMockDatabase(t *testing.T, cfg *config.DatabaseConfig, opts ...Option) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	db, err := Open(dialector, cfg, opts...)
	require.NoError(t, err)
	return db, mock, mockDB
}

func TestOpen_AppliesPoolSettings(t *testing.T) {
	db, _, mockDB := newMockDatabase(t, &config.DatabaseConfig{MaxOpenConns: 7, MaxIdleConns: 3, ConnMaxLifetime: 5})
	defer mockDB.Close()

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 7, stats.MaxOpenConnections)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
}

func TestOpen_RegistersTracing(t *testing.T) {
	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{Enabled: true, DBSystem: "postgresql"}, zap.NewNop())
	db, _, mockDB := newMockDatabase(t, nil, WithTracing(plugin))
	defer mockDB.Close()

	_, ok := db.DB.Config.Plugins["otelgorm"]
	assert.True(t, ok)
}

func TestDatabase_Ping(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t, nil)
	defer mockDB.Close()

	mock.ExpectPing()
	assert.NoError(t, db.Ping(context.Background()))
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t, nil)

	mock.ExpectClose()
	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Transaction(t *testing.T) {
	type TestModel struct {
		ID   uint
		Name string
	}

	t.Run("commits", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t, nil)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "test_models"`).
			WithArgs("test").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := db.Transaction(context.Background(), func(tx *gorm.DB) error {
			return tx.Create(&TestModel{Name: "test"}).Error
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t, nil)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(context.Background(), func(tx *gorm.DB) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormEVMRecordRepository_SaveWithLockSQL(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t, nil)
	defer mockDB.Close()
	repo := db.Repositories().EVMRecords

	r, err := evm.NewEVMRecord(uuid.New(), evm.NewRecordParams{
		ControlAccountID: uuid.New(),
		DataDate:         time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		PeriodType:       evm.PeriodTypeMonthly,
		PeriodNumber:     1,
		Year:             2026,
		PV:               d("100"),
		EV:               d("100"),
		AC:               d("100"),
		CumulativePV:     d("100"),
		CumulativeEV:     d("100"),
		CumulativeAC:     d("100"),
		BAC:              d("1000"),
	}, nil, testActor)
	require.NoError(t, err)

	t.Run("stale version is a conflict", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "evm_records" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "evm_records"`)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := repo.SaveWithLock(context.Background(), r)
		assert.True(t, shared.IsConcurrencyConflictError(err))
		assert.Equal(t, 1, r.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("advances version on success", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE "evm_records" SET`)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SaveWithLock(context.Background(), r))
		assert.Equal(t, 2, r.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
