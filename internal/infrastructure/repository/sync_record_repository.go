package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	apperrors "github.com/kirimku/smartseller-backend/internal/domain/errors"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
)

// PostgreSQLSyncRecordRepository implements repository.SyncRecordRepository
// against the sync_records table.
type PostgreSQLSyncRecordRepository struct {
	db *sqlx.DB
}

func NewPostgreSQLSyncRecordRepository(db *sqlx.DB) repository.SyncRecordRepository {
	return &PostgreSQLSyncRecordRepository{db: db}
}

// syncRecordRow mirrors the sync_records table; ChangeDetails round-trips
// through a jsonb column since it's a nested slice sqlx can't scan
// directly.
type syncRecordRow struct {
	entity.SyncRecord
	ChangeDetailsJSON []byte `db:"change_details"`
}

func (r *PostgreSQLSyncRecordRepository) Create(ctx context.Context, record *entity.SyncRecord) error {
	row, err := toSyncRecordRow(*record)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO sync_records (
			id, source_url, state, started_at, completed_at,
			added, updated, deleted, compatibilities_updated,
			error_message, change_details, created_at
		) VALUES (
			:id, :source_url, :state, :started_at, :completed_at,
			:added, :updated, :deleted, :compatibilities_updated,
			:error_message, :change_details, :created_at
		)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return MapPostgreSQLError(err, "", "")
	}
	return nil
}

func (r *PostgreSQLSyncRecordRepository) Update(ctx context.Context, record *entity.SyncRecord) error {
	row, err := toSyncRecordRow(*record)
	if err != nil {
		return err
	}

	const query = `
		UPDATE sync_records SET
			state = :state, started_at = :started_at, completed_at = :completed_at,
			added = :added, updated = :updated, deleted = :deleted,
			compatibilities_updated = :compatibilities_updated,
			error_message = :error_message, change_details = :change_details
		WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return MapPostgreSQLError(err, "", "")
	}
	return nil
}

func (r *PostgreSQLSyncRecordRepository) Get(ctx context.Context, id string) (*entity.SyncRecord, error) {
	var row syncRecordRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM sync_records WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, MapPostgreSQLError(err, "", "")
	}
	if err := decodeChangeDetails(&row); err != nil {
		return nil, err
	}
	return &row.SyncRecord, nil
}

func (r *PostgreSQLSyncRecordRepository) ListRecent(ctx context.Context, limit int) ([]entity.SyncRecord, error) {
	var rows []syncRecordRow
	query := `SELECT * FROM sync_records ORDER BY created_at DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, MapPostgreSQLError(err, "", "")
	}
	return decodeSyncRecordRows(rows)
}

// ListProcessing backs the worker's startup recovery scan: any record
// still "processing" means the prior run crashed mid-sync.
func (r *PostgreSQLSyncRecordRepository) ListProcessing(ctx context.Context) ([]entity.SyncRecord, error) {
	var rows []syncRecordRow
	query := `SELECT * FROM sync_records WHERE state = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query, string(entity.SyncStateProcessing)); err != nil {
		return nil, MapPostgreSQLError(err, "", "")
	}
	return decodeSyncRecordRows(rows)
}

func toSyncRecordRow(record entity.SyncRecord) (syncRecordRow, error) {
	details := record.ChangeDetails
	if details == nil {
		details = []entity.CategoryChangeDetail{}
	}
	encoded, err := json.Marshal(details)
	if err != nil {
		return syncRecordRow{}, apperrors.NewInvalidInput("could not encode sync record change details", err)
	}
	return syncRecordRow{SyncRecord: record, ChangeDetailsJSON: encoded}, nil
}

func decodeChangeDetails(row *syncRecordRow) error {
	if len(row.ChangeDetailsJSON) == 0 {
		row.SyncRecord.ChangeDetails = nil
		return nil
	}
	var details []entity.CategoryChangeDetail
	if err := json.Unmarshal(row.ChangeDetailsJSON, &details); err != nil {
		return apperrors.NewTransientStorage("could not decode stored sync record change details", err)
	}
	row.SyncRecord.ChangeDetails = details
	return nil
}

func decodeSyncRecordRows(rows []syncRecordRow) ([]entity.SyncRecord, error) {
	records := make([]entity.SyncRecord, 0, len(rows))
	for i := range rows {
		if err := decodeChangeDetails(&rows[i]); err != nil {
			return nil, err
		}
		records = append(records, rows[i].SyncRecord)
	}
	return records, nil
}
