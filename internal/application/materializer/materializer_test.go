package materializer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	"github.com/kirimku/smartseller-backend/internal/infrastructure/repository/memory"
)

func ptr(s string) *string { return &s }

func decPtr(v string) *decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestService_Materialize_ForwardAndReverseEdges(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCatalogRepository()

	base := entity.Product{
		SKU: "FB03060M", Category: entity.CategoryShowerBases,
		Installation: ptr("Alcove"), MaxDoorWidth: decPtr("30"), Series: ptr("Retail"),
	}
	door := entity.Product{
		SKU: "D1", Category: entity.CategoryShowerDoors,
		MinimumWidth: decPtr("28"), MaximumWidth: decPtr("32"), Series: ptr("Retail"),
	}

	require.NoError(t, repo.UpsertBatch(ctx, []entity.Product{base, door}))

	svc := NewService(repo, nil)
	require.NoError(t, svc.Materialize(ctx, []string{"FB03060M", "D1"}))

	forwardEdges, err := repo.ListEdgesFrom(ctx, "FB03060M")
	require.NoError(t, err)
	require.Len(t, forwardEdges, 1)
	assert.Equal(t, "D1", forwardEdges[0].PartnerSKU)
	assert.Equal(t, entity.CategoryShowerDoors, forwardEdges[0].PartnerCategory)

	reverseEdges, err := repo.ListEdgesFrom(ctx, "D1")
	require.NoError(t, err)
	require.Len(t, reverseEdges, 1)
	assert.Equal(t, "FB03060M", reverseEdges[0].PartnerSKU)
	assert.Equal(t, entity.CategoryShowerBases, reverseEdges[0].PartnerCategory)
	assert.Contains(t, reverseEdges[0].MatchReason, entity.ReverseReasonPrefix)
}

func TestService_Materialize_SkipsNonAnchorSKUs(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCatalogRepository()
	wall := entity.Product{SKU: "W1", Category: entity.CategoryWalls}
	require.NoError(t, repo.UpsertBatch(ctx, []entity.Product{wall}))

	svc := NewService(repo, nil)
	require.NoError(t, svc.Materialize(ctx, []string{"W1"}))

	edges, err := repo.ListEdgesFrom(ctx, "W1")
	require.NoError(t, err)
	assert.Empty(t, edges)
}
