// Package materializer implements the Graph Materializer (C6): turning
// C4 rule-engine matches for a set of changed SKUs into persisted,
// bidirectional compatibility edges.
package materializer

import (
	"context"
	"time"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
	"github.com/kirimku/smartseller-backend/internal/domain/rules"
	applog "github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
	"github.com/kirimku/smartseller-backend/pkg/cache"
	"github.com/kirimku/smartseller-backend/pkg/metrics"
)

// rankingScale converts a PartnerMatch's ranking (lower is better) into
// an edge score (higher is better), per CompatibilityEdge's documented
// inverted sense.
const rankingScale = 1_000_000

// Service materializes compatibility edges for a batch of changed SKUs.
type Service struct {
	catalog repository.CatalogRepository
	cache   cache.Cache
}

func NewService(catalog repository.CatalogRepository, resultCache cache.Cache) *Service {
	return &Service{catalog: catalog, cache: resultCache}
}

// Materialize runs C4 over every anchor SKU in changedSKUs and persists
// the resulting forward and reverse edges (spec §4.6).
func (s *Service) Materialize(ctx context.Context, changedSKUs []string) error {
	if len(changedSKUs) == 0 {
		return nil
	}

	start := time.Now()

	catalog, err := s.loadCatalog(ctx)
	if err != nil {
		return err
	}

	if err := s.catalog.DeleteEdgesTouching(ctx, changedSKUs); err != nil {
		return err
	}

	var edges []entity.CompatibilityEdge
	forwardCount, reverseCount := 0, 0
	for _, sku := range changedSKUs {
		anchor, err := s.catalog.GetBySKU(ctx, sku)
		if err != nil {
			return err
		}
		if anchor == nil || !anchor.Category.IsAnchor() {
			continue
		}

		matcher := rules.MatcherFor(anchor.Category)
		if matcher == nil {
			continue
		}

		for _, group := range matcher.Match(*anchor, catalog) {
			if group.Suppressed() {
				edges = append(edges, entity.CompatibilityEdge{
					BaseSKU:               anchor.SKU,
					PartnerSKU:            "",
					PartnerCategory:       group.Category,
					IncompatibilityReason: group.IncompatibilityReason,
				})
				continue
			}
			for _, match := range group.Matches {
				forward := entity.CompatibilityEdge{
					BaseSKU:         anchor.SKU,
					PartnerSKU:      match.SKU,
					PartnerCategory: group.Category,
					Score:           rankingScale - match.Ranking,
					MatchReason:     "matched via " + string(group.Category) + " rule",
				}
				edges = append(edges, forward)
				forwardCount++
				edges = append(edges, entity.ReverseOf(forward, anchor.Category))
				reverseCount++
			}
		}
	}

	if err := s.catalog.BulkInsertEdges(ctx, edges); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Flush()
	}

	metrics.GetGlobalMetricsCollector().RecordMaterialization(forwardCount, reverseCount, time.Since(start))

	applog.Logger.Info().Str("type", "sync").Str("component", "materializer").
		Int("anchors_processed", len(changedSKUs)).
		Int("edges_materialized", len(edges)).
		Msg("graph materialization complete")

	return nil
}

// loadCatalog builds the full rules.Catalog view C4 needs, one
// ListByCategory call per recognized category.
func (s *Service) loadCatalog(ctx context.Context) (rules.Catalog, error) {
	byCategory := make(map[entity.Category][]entity.Product, len(entity.AllCategories))
	for _, category := range entity.AllCategories {
		products, err := s.catalog.ListByCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		byCategory[category] = products
	}
	return fullCatalog(byCategory), nil
}

type fullCatalog map[entity.Category][]entity.Product

func (c fullCatalog) ByCategory(category entity.Category) []entity.Product { return c[category] }
