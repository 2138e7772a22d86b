package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

func newMockSyncRecordRepo(t *testing.T) (*PostgreSQLSyncRecordRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "postgres")
	return &PostgreSQLSyncRecordRepository{db: db}, mock
}

func TestPostgreSQLSyncRecordRepository_Create(t *testing.T) {
	repo, mock := newMockSyncRecordRepo(t)

	record := &entity.SyncRecord{
		ID:        uuid.New(),
		SourceURL: "https://vendor.example/feed.xlsx",
		State:     entity.SyncStateQueued,
		CreatedAt: time.Now(),
	}

	mock.ExpectExec(`INSERT INTO sync_records`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLSyncRecordRepository_Get_NotFound(t *testing.T) {
	repo, mock := newMockSyncRecordRepo(t)

	id := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM sync_records WHERE id = \$1`).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(nil))

	record, err := repo.Get(context.Background(), id.String())
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLSyncRecordRepository_ListProcessing_DecodesChangeDetails(t *testing.T) {
	repo, mock := newMockSyncRecordRepo(t)

	cols := []string{
		"id", "source_url", "state", "started_at", "completed_at",
		"added", "updated", "deleted", "compatibilities_updated",
		"error_message", "change_details", "created_at",
	}
	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM sync_records WHERE state = \$1`).
		WithArgs(string(entity.SyncStateProcessing)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			id, "https://vendor.example/feed.xlsx", "processing", now, nil,
			0, 0, 0, 0, "", []byte(`[{"category":"Bathtubs","added":["SKU-1"],"updated":[],"deleted":[]}]`), now,
		))

	records, err := repo.ListProcessing(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Len(t, records[0].ChangeDetails, 1)
	assert.Equal(t, entity.CategoryBathtubs, records[0].ChangeDetails[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}
