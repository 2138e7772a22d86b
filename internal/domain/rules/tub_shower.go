package rules

import "github.com/kirimku/smartseller-backend/internal/domain/entity"

// TubShowerMatcher implements the Tub Shower anchor (spec §4.4.2),
// grounded on original_source/logic/tubshower_compatibility.py.
// Partners: Tub Doors only.
type TubShowerMatcher struct{}

func (TubShowerMatcher) Match(anchor entity.Product, catalog Catalog) []PartnerGroup {
	if r := entity.Deref(anchor.ReasonDoorsCantFit); r != "" {
		return []PartnerGroup{{Category: entity.CategoryTubDoors, IncompatibilityReason: r}}
	}

	var matches []PartnerMatch

	for _, door := range catalog.ByCategory(entity.CategoryTubDoors) {
		if decWithin(anchor.MaxDoorWidth, door.MinimumWidth, door.MaximumWidth) &&
			decLE(door.MaximumHeight, anchor.MaxDoorHeight) &&
			seriesCompatible(anchor.Series, door.Series) {
			matches = append(matches, PartnerMatch{SKU: door.SKU, Ranking: door.RankingOrDefault()})
		}
	}

	matches = sortedDedup(matches)
	if len(matches) == 0 {
		return nil
	}
	return []PartnerGroup{{Category: entity.CategoryTubDoors, Matches: matches}}
}
