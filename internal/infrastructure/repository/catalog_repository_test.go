package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

func newMockCatalogRepo(t *testing.T) (*PostgreSQLCatalogRepository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "postgres")
	return &PostgreSQLCatalogRepository{db: db}, mock
}

func TestPostgreSQLCatalogRepository_ListAllSKUs(t *testing.T) {
	repo, mock := newMockCatalogRepo(t)

	mock.ExpectQuery(`SELECT sku FROM products`).
		WillReturnRows(sqlmock.NewRows([]string{"sku"}).
			AddRow("ABC-100").
			AddRow("XYZ-200"))

	skus, err := repo.ListAllSKUs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC-100", "XYZ-200"}, skus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLCatalogRepository_DeleteBatch_NoopOnEmpty(t *testing.T) {
	repo, mock := newMockCatalogRepo(t)

	err := repo.DeleteBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLCatalogRepository_DeleteBatch_CanonicalizesAndExpandsIn(t *testing.T) {
	repo, mock := newMockCatalogRepo(t)

	mock.ExpectExec(`DELETE FROM products WHERE sku IN \(\$1, \$2\)`).
		WithArgs("ABC-100", "XYZ-200").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.DeleteBatch(context.Background(), []string{"abc-100", " xyz-200 "})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLCatalogRepository_SKUsWithoutOutgoingEdges(t *testing.T) {
	repo, mock := newMockCatalogRepo(t)

	mock.ExpectQuery(`SELECT p.sku FROM products p`).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"sku"}).AddRow("ORPHAN-1"))

	skus, err := repo.SKUsWithoutOutgoingEdges(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"ORPHAN-1"}, skus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLCatalogRepository_ListEdgesFrom_EmptyResult(t *testing.T) {
	repo, mock := newMockCatalogRepo(t)

	mock.ExpectQuery(`SELECT \* FROM compatibility_edges WHERE base_sku = \$1`).
		WithArgs("BASE-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"base_sku", "partner_sku", "partner_category", "score",
			"match_reason", "incompatibility_reason", "created_at",
		}))

	edges, err := repo.ListEdgesFrom(context.Background(), "base-1")
	require.NoError(t, err)
	assert.Empty(t, edges)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDedupeEdges(t *testing.T) {
	edges := []entity.CompatibilityEdge{
		{BaseSKU: "A", PartnerSKU: "B"},
		{BaseSKU: "A", PartnerSKU: "B"},
		{BaseSKU: "A", PartnerSKU: "C"},
	}

	deduped := dedupeEdges(edges)
	assert.Len(t, deduped, 2)
}
