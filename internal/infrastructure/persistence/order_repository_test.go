package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockOrderRepository creates a GormOrderRepository with a mocked SQL connection
func newMockOrderRepository(t *testing.T) (*GormOrderRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormOrderRepository(gormDB), mock, mockDB
}

func TestGormOrderRepository_NextOrderNumber(t *testing.T) {
	prefix := fmt.Sprintf("SO-%d-", time.Now().Year())

	t.Run("takes the per-tenant lock before reading the max", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
			WithArgs(tenantID.String()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE tenant_id = \$1 AND order_number LIKE \$2`).
			WithArgs(tenantID, prefix+"%", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "order_number"}))

		number, err := repo.NextOrderNumber(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Equal(t, prefix+"00001", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments past the highest existing number", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectExec(`SELECT pg_advisory_xact_lock\(hashtext\(\$1\)\)`).
			WithArgs(tenantID.String()).
			WillReturnResult(sqlmock.NewResult(0, 0))
		rows := sqlmock.NewRows([]string{"id", "tenant_id", "order_number"}).
			AddRow(uuid.New(), tenantID, prefix+"00041")
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE tenant_id = \$1 AND order_number LIKE \$2`).
			WithArgs(tenantID, prefix+"%", 1).
			WillReturnRows(rows)

		number, err := repo.NextOrderNumber(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Equal(t, prefix+"00042", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
