// Package memory provides in-process implementations of the domain
// repository interfaces, used by application-layer tests in place of a
// live PostgreSQL instance.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
)

// CatalogRepository is an in-memory repository.CatalogRepository, safe
// for concurrent use.
type CatalogRepository struct {
	mu       sync.RWMutex
	products map[string]entity.Product
	edges    map[string][]entity.CompatibilityEdge // keyed by base SKU
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		products: make(map[string]entity.Product),
		edges:    make(map[string][]entity.CompatibilityEdge),
	}
}

var _ repository.CatalogRepository = (*CatalogRepository)(nil)

func (r *CatalogRepository) GetBySKU(_ context.Context, sku string) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[entity.CanonicalSKU(sku)]
	if !ok {
		return nil, nil
	}
	cp := p
	return &cp, nil
}

func (r *CatalogRepository) ListByCategory(_ context.Context, category entity.Category) ([]entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.Product
	for _, p := range r.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *CatalogRepository) UpsertBatch(_ context.Context, products []entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range products {
		p.SKU = entity.CanonicalSKU(p.SKU)
		r.products[p.SKU] = p
	}
	return nil
}

func (r *CatalogRepository) DeleteBatch(_ context.Context, skus []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sku := range skus {
		delete(r.products, entity.CanonicalSKU(sku))
	}
	return nil
}

func (r *CatalogRepository) ListAllSKUs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	skus := make([]string, 0, len(r.products))
	for sku := range r.products {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	return skus, nil
}

func (r *CatalogRepository) ListEdgesFrom(_ context.Context, baseSKU string) ([]entity.CompatibilityEdge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	edges := append([]entity.CompatibilityEdge(nil), r.edges[entity.CanonicalSKU(baseSKU)]...)
	sort.SliceStable(edges, func(i, j int) bool { return edges[i].Score > edges[j].Score })
	return edges, nil
}

func (r *CatalogRepository) ReplaceEdgesFrom(_ context.Context, baseSKU string, edges []entity.CompatibilityEdge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.edges[entity.CanonicalSKU(baseSKU)] = append([]entity.CompatibilityEdge(nil), edges...)
	return nil
}

func (r *CatalogRepository) DeleteEdgesTouching(_ context.Context, skus []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	touched := make(map[string]bool, len(skus))
	for _, s := range skus {
		touched[entity.CanonicalSKU(s)] = true
	}
	for base, edges := range r.edges {
		if touched[base] {
			delete(r.edges, base)
			continue
		}
		var kept []entity.CompatibilityEdge
		for _, e := range edges {
			if !touched[e.PartnerSKU] {
				kept = append(kept, e)
			}
		}
		r.edges[base] = kept
	}
	return nil
}

func (r *CatalogRepository) BulkInsertEdges(_ context.Context, edges []entity.CompatibilityEdge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range edges {
		base := entity.CanonicalSKU(e.BaseSKU)
		existing := r.edges[base]
		replaced := false
		for i, cur := range existing {
			if cur.PartnerSKU == e.PartnerSKU {
				existing[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, e)
		}
		r.edges[base] = existing
	}
	return nil
}

func (r *CatalogRepository) SKUsWithoutOutgoingEdges(_ context.Context, limit int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var skus []string
	for sku := range r.products {
		if len(r.edges[sku]) == 0 {
			skus = append(skus, sku)
		}
	}
	sort.Strings(skus)
	if limit > 0 && len(skus) > limit {
		skus = skus[:limit]
	}
	return skus, nil
}
