package rules

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

// BathtubMatcher implements the Bathtub anchor (spec §4.4.2), grounded
// on original_source/logic/bathtub_compatibility.py. Partners: Tub
// Doors, Tub Screens, Walls — always emitted in that fixed category
// order, per the original's category_order sort.
type BathtubMatcher struct{}

func (BathtubMatcher) Match(anchor entity.Product, catalog Catalog) []PartnerGroup {
	var groups []PartnerGroup

	doorsReason := entity.Deref(anchor.ReasonDoorsCantFit)
	wallsReason := entity.Deref(anchor.ReasonWallsCantFit)

	if doorsReason != "" {
		groups = append(groups, PartnerGroup{Category: entity.CategoryTubDoors, IncompatibilityReason: doorsReason})
	} else if doors := matchBathtubDoors(anchor, catalog); len(doors) > 0 {
		groups = append(groups, PartnerGroup{Category: entity.CategoryTubDoors, Matches: doors})
	}

	if doorsReason == "" {
		if screens := matchBathtubScreens(anchor, catalog); len(screens) > 0 {
			groups = append(groups, PartnerGroup{Category: entity.CategoryTubScreens, Matches: screens})
		}
	}

	if wallsReason != "" {
		groups = append(groups, PartnerGroup{Category: entity.CategoryWalls, IncompatibilityReason: wallsReason})
	} else if walls := matchBathtubWalls(anchor, catalog); len(walls) > 0 {
		groups = append(groups, PartnerGroup{Category: entity.CategoryWalls, Matches: walls})
	}

	return groups
}

func matchBathtubDoors(tub entity.Product, catalog Catalog) []PartnerMatch {
	var matches []PartnerMatch
	alcove := entity.Is(tub.Installation, "alcove")

	for _, door := range catalog.ByCategory(entity.CategoryTubDoors) {
		if alcove &&
			decWithin(tub.MaxDoorWidth, door.MinimumWidth, door.MaximumWidth) &&
			bathtubSeriesCompatible(tub.Series, door.Series) {
			matches = append(matches, PartnerMatch{SKU: door.SKU, Ranking: door.RankingOrDefault()})
		}
	}

	return sortedDedup(matches)
}

func matchBathtubScreens(tub entity.Product, catalog Catalog) []PartnerMatch {
	var matches []PartnerMatch
	alcove := entity.Is(tub.Installation, "alcove")

	for _, screen := range catalog.ByCategory(entity.CategoryTubScreens) {
		diff, ok := decSub(tub.MaxDoorWidth, screen.FixedPanelWidth)
		if alcove && ok && diff > 22 && bathtubSeriesCompatible(tub.Series, screen.Series) {
			matches = append(matches, PartnerMatch{SKU: screen.SKU, Ranking: screen.RankingOrDefault()})
		}
	}

	return sortedDedup(matches)
}

func matchBathtubWalls(tub entity.Product, catalog Catalog) []PartnerMatch {
	var nominalMatches []PartnerMatch
	type cutCandidate struct {
		sku           string
		family        string
		length, width float64
		ranking       int
	}
	var cutCandidates []cutCandidate

	for _, wall := range catalog.ByCategory(entity.CategoryWalls) {
		if !strings.Contains(strings.ToLower(entity.Deref(wall.Type)), "tub") {
			continue
		}
		if !bathtubSeriesCompatible(tub.Series, wall.Series) {
			continue
		}
		if !bathtubWallBrandFamilyMatch(tub.Brand, tub.Family, wall.Brand, wall.Family) {
			continue
		}

		cutToSize := entity.Is(wall.CutToSize, "yes")

		if !cutToSize && nominalEqual(tub.NominalDimensions, wall.NominalDimensions) {
			nominalMatches = append(nominalMatches, PartnerMatch{SKU: wall.SKU, Ranking: wall.RankingOrDefault()})
			continue
		}

		if cutToSize && decGE(wall.Length, tub.Length) && decGE(wall.Width, tub.Width) {
			l, _ := wall.Length.Float64()
			w, _ := wall.Width.Float64()
			cutCandidates = append(cutCandidates, cutCandidate{
				sku:     wall.SKU,
				family:  strings.ToLower(strings.TrimSpace(entity.Deref(wall.Family))),
				length:  l,
				width:   w,
				ranking: wall.RankingOrDefault(),
			})
		}
	}

	tubLength, _ := decFloat(tub.Length)
	tubWidth, _ := decFloat(tub.Width)

	byFamily := make(map[string][]cutCandidate)
	var familyOrder []string
	for _, c := range cutCandidates {
		if _, ok := byFamily[c.family]; !ok {
			familyOrder = append(familyOrder, c.family)
		}
		byFamily[c.family] = append(byFamily[c.family], c)
	}

	var closestCut []PartnerMatch
	for _, fam := range familyOrder {
		candidates := byFamily[fam]
		minDist := -1.0
		for _, c := range candidates {
			d := manhattan(c.length, c.width, tubLength, tubWidth)
			if minDist < 0 || d < minDist {
				minDist = d
			}
		}
		for _, c := range candidates {
			if manhattan(c.length, c.width, tubLength, tubWidth) == minDist {
				closestCut = append(closestCut, PartnerMatch{SKU: c.sku, Ranking: c.ranking})
			}
		}
	}

	return sortedDedup(append(nominalMatches, closestCut...))
}

func manhattan(l, w, tl, tw float64) float64 {
	dl := l - tl
	if dl < 0 {
		dl = -dl
	}
	dw := w - tw
	if dw < 0 {
		dw = -dw
	}
	return dl + dw
}

func decFloat(d *decimal.Decimal) (float64, bool) {
	if d == nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}
