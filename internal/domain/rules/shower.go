package rules

import "github.com/kirimku/smartseller-backend/internal/domain/entity"

// ShowerMatcher implements the Shower anchor (spec §4.4.2), grounded on
// original_source/logic/shower_compatibility.py. Partners: Shower
// Doors only.
type ShowerMatcher struct{}

func (ShowerMatcher) Match(anchor entity.Product, catalog Catalog) []PartnerGroup {
	if r := entity.Deref(anchor.ReasonDoorsCantFit); r != "" {
		return []PartnerGroup{{Category: entity.CategoryShowerDoors, IncompatibilityReason: r}}
	}

	var matches []PartnerMatch
	alcove := entity.Is(anchor.Installation, "alcove")

	for _, door := range catalog.ByCategory(entity.CategoryShowerDoors) {
		if alcove &&
			decLE(door.MaximumHeight, anchor.MaxDoorHeight) &&
			decWithin(anchor.MaxDoorWidth, door.MinimumWidth, door.MaximumWidth) &&
			seriesCompatible(anchor.Series, door.Series) {
			matches = append(matches, PartnerMatch{SKU: door.SKU, Ranking: door.RankingOrDefault()})
		}
	}

	matches = sortedDedup(matches)
	if len(matches) == 0 {
		return nil
	}
	return []PartnerGroup{{Category: entity.CategoryShowerDoors, Matches: matches}}
}
