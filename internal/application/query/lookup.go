// Package query implements the Query API (C7): resolving a single SKU's
// compatibility result from either the live rule engine (for anchor
// SKUs) or the materialized edge set (for everyone else), then layering
// the override store on top and serving through a result cache.
package query

import (
	"context"
	"strings"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
	"github.com/kirimku/smartseller-backend/internal/domain/rules"
	"github.com/kirimku/smartseller-backend/pkg/cache"
	"github.com/kirimku/smartseller-backend/pkg/metrics"
)

// CategoryResult is one partner category's contribution to a Lookup
// result: either a product list or an incompatibility reason, never
// both.
type CategoryResult struct {
	Category              entity.Category  `json:"category"`
	Products              []entity.Product `json:"products,omitempty"`
	IncompatibilityReason string           `json:"incompatibility_reason,omitempty"`
}

// Suppressed reports whether this category carries an incompatibility
// reason instead of a product list.
func (c CategoryResult) Suppressed() bool {
	return c.IncompatibilityReason != ""
}

// Result is the full response shape for Lookup(sku) (spec §4.7).
type Result struct {
	Product     *entity.Product  `json:"product"`
	Compatibles []CategoryResult `json:"compatibles"`
}

const cacheKeyPrefix = "lookup:"

// OverrideStore is the narrow Store view this package needs.
type OverrideStore interface {
	IsBlacklisted(a, b string) bool
	WhitelistedPartnersOf(sku string) []string
}

// Service resolves Lookup requests.
type Service struct {
	catalog   repository.CatalogRepository
	overrides OverrideStore
	cache     cache.Cache
}

func NewService(catalog repository.CatalogRepository, overrides OverrideStore, resultCache cache.Cache) *Service {
	return &Service{catalog: catalog, overrides: overrides, cache: resultCache}
}

// Lookup resolves sku's compatibility result (spec §4.7 steps 1-7).
func (s *Service) Lookup(ctx context.Context, sku string) (*Result, error) {
	canon := entity.CanonicalSKU(sku)

	if s.cache != nil {
		if cached, ok := s.cache.Get(cacheKeyPrefix + canon); ok {
			if result, ok := cached.(*Result); ok {
				metrics.GetGlobalMetricsCollector().RecordLookup(true)
				return result, nil
			}
		}
	}

	result, err := s.resolve(ctx, canon)
	if err != nil {
		return nil, err
	}

	metrics.GetGlobalMetricsCollector().RecordLookup(false)

	if s.cache != nil {
		s.cache.Set(cacheKeyPrefix + canon, result)
	}
	return result, nil
}

func (s *Service) resolve(ctx context.Context, sku string) (*Result, error) {
	product, err := s.catalog.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return &Result{}, nil
	}

	var categories []CategoryResult
	if matcher := rules.MatcherFor(product.Category); matcher != nil {
		categories, err = s.resolveLive(ctx, *product, matcher)
	} else {
		categories, err = s.resolveFromEdges(ctx, sku)
	}
	if err != nil {
		return nil, err
	}

	categories, err = s.applyOverrides(ctx, sku, categories)
	if err != nil {
		return nil, err
	}

	return &Result{Product: product, Compatibles: categories}, nil
}

func (s *Service) resolveLive(ctx context.Context, anchor entity.Product, matcher rules.Matcher) ([]CategoryResult, error) {
	byCategory := make(map[entity.Category][]entity.Product, len(entity.AllCategories))
	for _, category := range entity.AllCategories {
		products, err := s.catalog.ListByCategory(ctx, category)
		if err != nil {
			return nil, err
		}
		byCategory[category] = products
	}

	groups := matcher.Match(anchor, liveCatalog(byCategory))

	results := make([]CategoryResult, 0, len(groups))
	for _, group := range groups {
		if group.Suppressed() {
			results = append(results, CategoryResult{Category: group.Category, IncompatibilityReason: group.IncompatibilityReason})
			continue
		}
		products := resolveProductsInOrder(group.Matches, byCategory[group.Category])
		results = append(results, CategoryResult{Category: group.Category, Products: products})
	}
	return results, nil
}

func (s *Service) resolveFromEdges(ctx context.Context, sku string) ([]CategoryResult, error) {
	edges, err := s.catalog.ListEdgesFrom(ctx, sku)
	if err != nil {
		return nil, err
	}

	var order []entity.Category
	byCategory := make(map[entity.Category][]entity.CompatibilityEdge)
	for _, edge := range edges {
		if _, seen := byCategory[edge.PartnerCategory]; !seen {
			order = append(order, edge.PartnerCategory)
		}
		byCategory[edge.PartnerCategory] = append(byCategory[edge.PartnerCategory], edge)
	}

	results := make([]CategoryResult, 0, len(order))
	for _, category := range order {
		categoryEdges := byCategory[category]
		if len(categoryEdges) == 1 && categoryEdges[0].IncompatibilityReason != "" {
			results = append(results, CategoryResult{Category: category, IncompatibilityReason: categoryEdges[0].IncompatibilityReason})
			continue
		}

		var products []entity.Product
		for _, edge := range categoryEdges {
			if edge.PartnerSKU == "" {
				continue
			}
			partner, err := s.catalog.GetBySKU(ctx, edge.PartnerSKU)
			if err != nil {
				return nil, err
			}
			if partner != nil {
				products = append(products, *partner)
			}
		}
		results = append(results, CategoryResult{Category: category, Products: products})
	}
	return results, nil
}

// applyOverrides applies the blacklist (drop) then the whitelist (add or
// replace a suppressed category), per spec §4.7 steps 5-6.
func (s *Service) applyOverrides(ctx context.Context, sku string, categories []CategoryResult) ([]CategoryResult, error) {
	if s.overrides == nil {
		return categories, nil
	}

	for i := range categories {
		if categories[i].Suppressed() {
			continue
		}
		filtered := categories[i].Products[:0:0]
		for _, p := range categories[i].Products {
			if !s.overrides.IsBlacklisted(sku, p.SKU) {
				filtered = append(filtered, p)
			}
		}
		categories[i].Products = filtered
	}

	whitelisted := s.overrides.WhitelistedPartnersOf(sku)
	if len(whitelisted) == 0 {
		return categories, nil
	}

	indexByCategory := make(map[entity.Category]int, len(categories))
	for i, c := range categories {
		indexByCategory[c.Category] = i
	}

	for _, partnerSKU := range whitelisted {
		partner, err := s.catalog.GetBySKU(ctx, partnerSKU)
		if err != nil {
			return nil, err
		}
		if partner == nil {
			continue
		}

		idx, exists := indexByCategory[partner.Category]
		if !exists {
			categories = append(categories, CategoryResult{Category: partner.Category, Products: []entity.Product{*partner}})
			indexByCategory[partner.Category] = len(categories) - 1
			continue
		}

		if categories[idx].Suppressed() {
			categories[idx] = CategoryResult{Category: partner.Category, Products: []entity.Product{*partner}}
			continue
		}
		categories[idx].Products = append(categories[idx].Products, *partner)
	}

	return categories, nil
}

func resolveProductsInOrder(matches []rules.PartnerMatch, candidates []entity.Product) []entity.Product {
	bySKU := make(map[string]entity.Product, len(candidates))
	for _, c := range candidates {
		bySKU[c.SKU] = c
	}
	products := make([]entity.Product, 0, len(matches))
	for _, m := range matches {
		sku := m.SKU
		if idx := strings.Index(sku, "|"); idx >= 0 {
			sku = sku[:idx]
		}
		if p, ok := bySKU[sku]; ok {
			products = append(products, p)
		}
	}
	return products
}

type liveCatalog map[entity.Category][]entity.Product

func (c liveCatalog) ByCategory(category entity.Category) []entity.Product { return c[category] }
