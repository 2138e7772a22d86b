package rules

import (
	"strings"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

// ShowerBaseMatcher implements the Shower Base anchor (spec §4.4.2),
// grounded on original_source/logic/base_compatibility.py. Partners:
// Shower Doors (optionally combined with Return Panels into a compound
// SKU), Enclosures, Walls.
type ShowerBaseMatcher struct{}

func (ShowerBaseMatcher) Match(anchor entity.Product, catalog Catalog) []PartnerGroup {
	var groups []PartnerGroup

	install := strings.ToLower(strings.TrimSpace(entity.Deref(anchor.Installation)))

	if r := entity.Deref(anchor.ReasonDoorsCantFit); r != "" {
		groups = append(groups, PartnerGroup{Category: entity.CategoryShowerDoors, IncompatibilityReason: r})
	} else if doors := matchShowerBaseDoors(anchor, install, catalog); len(doors) > 0 {
		groups = append(groups, PartnerGroup{Category: entity.CategoryShowerDoors, Matches: doors})
	}

	if strings.Contains(install, "corner") {
		if enc := matchShowerBaseEnclosures(anchor, catalog); len(enc) > 0 {
			groups = append(groups, PartnerGroup{Category: entity.CategoryEnclosures, Matches: enc})
		}
	}

	if r := entity.Deref(anchor.ReasonWallsCantFit); r != "" {
		groups = append(groups, PartnerGroup{Category: entity.CategoryWalls, IncompatibilityReason: r})
	} else if walls := matchShowerBaseWalls(anchor, install, catalog); len(walls) > 0 {
		groups = append(groups, PartnerGroup{Category: entity.CategoryWalls, Matches: walls})
	}

	return groups
}

func matchShowerBaseDoors(base entity.Product, install string, catalog Catalog) []PartnerMatch {
	var matches []PartnerMatch

	for _, door := range catalog.ByCategory(entity.CategoryShowerDoors) {
		alcoveMatch := strings.Contains(install, "alcove") &&
			decWithin(base.MaxDoorWidth, door.MinimumWidth, door.MaximumWidth) &&
			seriesCompatible(base.Series, door.Series)

		if alcoveMatch {
			matches = append(matches, PartnerMatch{SKU: door.SKU, Ranking: door.RankingOrDefault()})
			continue
		}

		cornerMatch := strings.Contains(install, "corner") &&
			entity.Is(door.HasReturnPanel, "yes") &&
			decWithin(base.MaxDoorWidth, door.MinimumWidth, door.MaximumWidth) &&
			seriesCompatible(base.Series, door.Series)

		if !cornerMatch {
			continue
		}

		for _, panel := range catalog.ByCategory(entity.CategoryReturnPanels) {
			panelMatch := base.FitsReturnPanelSize != nil && panel.ReturnPanelSize != nil &&
				strings.EqualFold(entity.Deref(base.FitsReturnPanelSize), entity.Deref(panel.ReturnPanelSize)) &&
				door.Family != nil && panel.Family != nil &&
				strings.EqualFold(entity.Deref(door.Family), entity.Deref(panel.Family))

			if panelMatch {
				matches = append(matches, PartnerMatch{
					SKU:     door.SKU + "|" + panel.SKU,
					Ranking: door.RankingOrDefault(),
				})
			}
		}
	}

	return sortedDedup(matches)
}

func matchShowerBaseEnclosures(base entity.Product, catalog Catalog) []PartnerMatch {
	var matches []PartnerMatch

	for _, enc := range catalog.ByCategory(entity.CategoryEnclosures) {
		if !seriesCompatible(base.Series, enc.Series) {
			continue
		}
		if !baseDoorBrandFamilyMatch(base.Brand, enc.Brand) {
			continue
		}

		nominalMatch := nominalEqual(base.NominalDimensions, enc.NominalDimensions)

		dimensionMatch := false
		if dl, ok := decSub(base.Length, enc.DoorWidth); ok && decGE(base.Length, enc.DoorWidth) && dl <= 2 {
			if dw, ok2 := decSub(base.Width, enc.ReturnPanelWidth); ok2 && decGE(base.Width, enc.ReturnPanelWidth) && dw <= 2 {
				dimensionMatch = true
			}
		}

		if nominalMatch || dimensionMatch {
			matches = append(matches, PartnerMatch{SKU: enc.SKU, Ranking: enc.RankingOrDefault()})
		}
	}

	return sortedDedup(matches)
}

func matchShowerBaseWalls(base entity.Product, install string, catalog Catalog) []PartnerMatch {
	var nominalMatches []PartnerMatch
	type cutCandidate struct {
		sku           string
		length, width float64
		ranking       int
	}
	var cutCandidates []cutCandidate

	for _, wall := range catalog.ByCategory(entity.CategoryWalls) {
		wallType := strings.ToLower(entity.Deref(wall.Type))

		alcoveMatch := strings.Contains(wallType, "alcove shower") &&
			isOneOf(install, "alcove", "alcove or corner") &&
			seriesCompatible(base.Series, wall.Series) &&
			baseWallBrandFamilyMatch(base.Brand, base.Family, wall.Brand, wall.Family)

		cornerMatch := strings.Contains(wallType, "corner shower") &&
			isOneOf(install, "corner", "alcove or corner") &&
			seriesCompatible(base.Series, wall.Series) &&
			baseWallBrandFamilyMatch(base.Brand, base.Family, wall.Brand, wall.Family)

		if !alcoveMatch && !cornerMatch {
			continue
		}

		cutToSize := entity.Is(wall.CutToSize, "yes")

		if !cutToSize && nominalEqual(base.NominalDimensions, wall.NominalDimensions) {
			nominalMatches = append(nominalMatches, PartnerMatch{SKU: wall.SKU, Ranking: wall.RankingOrDefault()})
			continue
		}

		if cutToSize &&
			decGE(wall.Length, base.Length) && decLE(wall.Length, decAdd(base.Length, 3)) &&
			decGE(wall.Width, base.Width) && decLE(wall.Width, decAdd(base.Width, 3)) {
			l, _ := wall.Length.Float64()
			w, _ := wall.Width.Float64()
			cutCandidates = append(cutCandidates, cutCandidate{sku: wall.SKU, length: l, width: w, ranking: wall.RankingOrDefault()})
		}
	}

	var closestCut []PartnerMatch
	if len(cutCandidates) > 0 {
		minLength := cutCandidates[0].length
		for _, c := range cutCandidates {
			if c.length < minLength {
				minLength = c.length
			}
		}
		minWidth := -1.0
		for _, c := range cutCandidates {
			if c.length == minLength && (minWidth < 0 || c.width < minWidth) {
				minWidth = c.width
			}
		}
		for _, c := range cutCandidates {
			if c.length == minLength && c.width == minWidth {
				closestCut = append(closestCut, PartnerMatch{SKU: c.sku, Ranking: c.ranking})
			}
		}
	}

	return sortedDedup(append(nominalMatches, closestCut...))
}
