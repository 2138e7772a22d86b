// Package repository defines the storage-facing interfaces the
// application layer depends on, kept free of any particular storage
// technology so PostgreSQL and in-memory test implementations can
// satisfy the same contract.
package repository

import (
	"context"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

// CatalogRepository is the Catalog Store (C1): a persistent keyed
// store of products and the directed compatibility edge set.
type CatalogRepository interface {
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	ListByCategory(ctx context.Context, category entity.Category) ([]entity.Product, error)

	// UpsertBatch inserts or updates products. Single-writer semantics
	// per SKU within the batch: last write wins on same-batch
	// duplicates.
	UpsertBatch(ctx context.Context, products []entity.Product) error

	DeleteBatch(ctx context.Context, skus []string) error
	ListAllSKUs(ctx context.Context) ([]string, error)

	// ListEdgesFrom returns baseSKU's outgoing edges ordered by score
	// descending.
	ListEdgesFrom(ctx context.Context, baseSKU string) ([]entity.CompatibilityEdge, error)

	// ReplaceEdgesFrom atomically removes every existing outgoing edge
	// for baseSKU and inserts edges in its place.
	ReplaceEdgesFrom(ctx context.Context, baseSKU string, edges []entity.CompatibilityEdge) error

	// DeleteEdgesTouching removes every edge where either endpoint is
	// in skus.
	DeleteEdgesTouching(ctx context.Context, skus []string) error

	// BulkInsertEdges de-duplicates on (baseSKU, partnerSKU) within the
	// batch and upserts against the existing set.
	BulkInsertEdges(ctx context.Context, edges []entity.CompatibilityEdge) error

	// SKUsWithoutOutgoingEdges lists up to limit product SKUs that have
	// no recorded outgoing edge, feeding C8's back-fill step.
	SKUsWithoutOutgoingEdges(ctx context.Context, limit int) ([]string, error)
}

// SyncRecordRepository persists SyncRecord lifecycle state.
type SyncRecordRepository interface {
	Create(ctx context.Context, record *entity.SyncRecord) error
	Update(ctx context.Context, record *entity.SyncRecord) error
	Get(ctx context.Context, id string) (*entity.SyncRecord, error)
	ListRecent(ctx context.Context, limit int) ([]entity.SyncRecord, error)

	// ListProcessing returns every record left in the "processing"
	// state, used by the worker's startup recovery scan (spec §4.8).
	ListProcessing(ctx context.Context) ([]entity.SyncRecord, error)
}
