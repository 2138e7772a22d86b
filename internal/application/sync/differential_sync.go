// Package sync implements the Differential Sync (C5): reconciling a
// freshly parsed feed snapshot against the catalog store, category by
// category, and reporting exactly what changed.
package sync

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	apperrors "github.com/kirimku/smartseller-backend/internal/domain/errors"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
	applog "github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
)

// Snapshot is the narrow view of a parsed feed this package needs,
// satisfied by feed.Snapshot without importing the infrastructure
// package directly.
type Snapshot interface {
	ByCategory(c entity.Category) []entity.Product
}

// DiffReport is the outcome of one differential sync run: per-category
// added/updated/deleted SKUs, persisted verbatim onto the driving
// SyncRecord.
type DiffReport struct {
	Categories  []entity.CategoryChangeDetail
	ChangedSKUs []string // added ∪ updated, feeds C6
}

// Service reconciles a feed snapshot against the catalog store.
type Service struct {
	catalog repository.CatalogRepository
}

func NewService(catalog repository.CatalogRepository) *Service {
	return &Service{catalog: catalog}
}

// Run reconciles every recognized category, committing each category's
// changes as its own batch (spec §4.5 step 4). A storage error on any
// category aborts the run with SyncAborted; categories already
// committed remain applied.
func (s *Service) Run(ctx context.Context, snap Snapshot) (*DiffReport, error) {
	report := &DiffReport{}

	for _, category := range entity.AllCategories {
		detail, changed, err := s.syncCategory(ctx, category, snap.ByCategory(category))
		if err != nil {
			return report, apperrors.NewSyncAborted("differential sync aborted on category "+string(category), err)
		}
		if len(detail.Added) == 0 && len(detail.Updated) == 0 && len(detail.Deleted) == 0 {
			continue
		}
		report.Categories = append(report.Categories, detail)
		report.ChangedSKUs = append(report.ChangedSKUs, changed...)
	}

	applog.Logger.Info().Str("type", "sync").Str("component", "differential_sync").
		Int("categories_changed", len(report.Categories)).
		Int("changed_skus", len(report.ChangedSKUs)).
		Msg("differential sync complete")

	return report, nil
}

func (s *Service) syncCategory(ctx context.Context, category entity.Category, feedProducts []entity.Product) (entity.CategoryChangeDetail, []string, error) {
	detail := entity.CategoryChangeDetail{Category: category}

	stored, err := s.catalog.ListByCategory(ctx, category)
	if err != nil {
		return detail, nil, err
	}

	storedBySKU := make(map[string]entity.Product, len(stored))
	for _, p := range stored {
		storedBySKU[p.SKU] = p
	}

	feedBySKU := make(map[string]entity.Product, len(feedProducts))
	var toUpsert []entity.Product
	var changedSKUs []string

	for _, p := range feedProducts {
		p.SKU = entity.CanonicalSKU(p.SKU)
		feedBySKU[p.SKU] = p

		existing, exists := storedBySKU[p.SKU]
		if !exists {
			detail.Added = append(detail.Added, p.SKU)
			toUpsert = append(toUpsert, p)
			changedSKUs = append(changedSKUs, p.SKU)
			continue
		}

		diffs := diffProduct(existing, p)
		if len(diffs) == 0 {
			continue
		}

		p.CreatedAt = existing.CreatedAt
		toUpsert = append(toUpsert, p)
		detail.Updated = append(detail.Updated, entity.UpdatedProduct{SKU: p.SKU, Diffs: diffs})
		changedSKUs = append(changedSKUs, p.SKU)
	}

	var toDelete []string
	for sku := range storedBySKU {
		if _, stillPresent := feedBySKU[sku]; !stillPresent {
			detail.Deleted = append(detail.Deleted, sku)
			toDelete = append(toDelete, sku)
		}
	}

	if len(toUpsert) > 0 {
		if err := s.catalog.UpsertBatch(ctx, toUpsert); err != nil {
			return detail, nil, err
		}
	}
	if len(toDelete) > 0 {
		if err := s.catalog.DeleteBatch(ctx, toDelete); err != nil {
			return detail, nil, err
		}
	}

	return detail, changedSKUs, nil
}

// diffProduct reports every feed-sourced field that changed between the
// stored record and the incoming one. Ranking, CreatedAt, and UpdatedAt
// are excluded: Ranking changes are cosmetic ordering, not compatibility
// semantics, and the timestamps are sync bookkeeping, not feed data.
func diffProduct(old, updated entity.Product) []entity.FieldDiff {
	var diffs []entity.FieldDiff

	addStr := func(field string, o, n *string) {
		if entity.Deref(o) != entity.Deref(n) {
			diffs = append(diffs, entity.FieldDiff{Field: field, OldValue: entity.Deref(o), NewValue: entity.Deref(n)})
		}
	}
	addDec := func(field string, o, n *decimal.Decimal) {
		if decString(o) != decString(n) {
			diffs = append(diffs, entity.FieldDiff{Field: field, OldValue: decString(o), NewValue: decString(n)})
		}
	}

	addStr("brand", old.Brand, updated.Brand)
	addStr("series", old.Series, updated.Series)
	addStr("family", old.Family, updated.Family)
	addStr("nominal_dimensions", old.NominalDimensions, updated.NominalDimensions)
	addStr("installation", old.Installation, updated.Installation)
	addStr("has_return_panel", old.HasReturnPanel, updated.HasReturnPanel)
	addStr("fits_return_panel_size", old.FitsReturnPanelSize, updated.FitsReturnPanelSize)
	addStr("return_panel_size", old.ReturnPanelSize, updated.ReturnPanelSize)
	addStr("cut_to_size", old.CutToSize, updated.CutToSize)
	addStr("glass_thickness", old.GlassThickness, updated.GlassThickness)
	addStr("door_type", old.DoorType, updated.DoorType)
	addStr("material", old.Material, updated.Material)
	addStr("type", old.Type, updated.Type)
	addStr("reason_doors_cant_fit", old.ReasonDoorsCantFit, updated.ReasonDoorsCantFit)
	addStr("reason_walls_cant_fit", old.ReasonWallsCantFit, updated.ReasonWallsCantFit)
	addStr("name", old.Name, updated.Name)
	addStr("image_url", old.ImageURL, updated.ImageURL)
	addStr("product_page_url", old.ProductPageURL, updated.ProductPageURL)

	addDec("length", old.Length, updated.Length)
	addDec("width", old.Width, updated.Width)
	addDec("height", old.Height, updated.Height)
	addDec("max_door_width", old.MaxDoorWidth, updated.MaxDoorWidth)
	addDec("max_door_height", old.MaxDoorHeight, updated.MaxDoorHeight)
	addDec("minimum_width", old.MinimumWidth, updated.MinimumWidth)
	addDec("maximum_width", old.MaximumWidth, updated.MaximumWidth)
	addDec("maximum_height", old.MaximumHeight, updated.MaximumHeight)
	addDec("door_width", old.DoorWidth, updated.DoorWidth)
	addDec("return_panel_width", old.ReturnPanelWidth, updated.ReturnPanelWidth)
	addDec("fixed_panel_width", old.FixedPanelWidth, updated.FixedPanelWidth)

	if !attributesEqual(old.Attributes, updated.Attributes) {
		diffs = append(diffs, entity.FieldDiff{Field: "attributes", OldValue: "changed", NewValue: "changed"})
	}

	return diffs
}

func decString(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func attributesEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
