package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

type fakeCatalog map[entity.Category][]entity.Product

func (c fakeCatalog) ByCategory(cat entity.Category) []entity.Product {
	return c[cat]
}

func ptr(s string) *string { return &s }

func dec(v string) *decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return &d
}

// S1 from spec.md §8: Shower Base FB03060M, nominal "48 x 32", alcove,
// series MAAX, brand Maax, family B3; door D1 width range [44,50],
// series Collection.
func TestShowerBaseMatcher_S1(t *testing.T) {
	base := entity.Product{
		SKU:               "FB03060M",
		Category:          entity.CategoryShowerBases,
		NominalDimensions: ptr("48 x 32"),
		Installation:      ptr("Alcove"),
		Series:            ptr("MAAX"),
		Brand:             ptr("Maax"),
		Family:            ptr("B3"),
		MaxDoorWidth:      dec("48"),
		Length:            dec("48"),
		Width:             dec("32"),
	}
	door := entity.Product{
		SKU:          "D1",
		Category:     entity.CategoryShowerDoors,
		MinimumWidth: dec("44"),
		MaximumWidth: dec("50"),
		Series:       ptr("Collection"),
	}
	catalog := fakeCatalog{entity.CategoryShowerDoors: {door}}

	groups := ShowerBaseMatcher{}.Match(base, catalog)

	require_groupContainsSKU(t, groups, entity.CategoryShowerDoors, "D1")
}

// S2: base with ReasonDoorsCantFit set suppresses the door match list
// entirely in favor of the reason string.
func TestShowerBaseMatcher_S2_IncompatibilityReason(t *testing.T) {
	base := entity.Product{
		SKU:                "B1",
		Category:           entity.CategoryShowerBases,
		ReasonDoorsCantFit: ptr("Panels exceed alcove width"),
	}
	groups := ShowerBaseMatcher{}.Match(base, fakeCatalog{})

	var found bool
	for _, g := range groups {
		if g.Category == entity.CategoryShowerDoors {
			found = true
			assert.True(t, g.Suppressed())
			assert.Equal(t, "Panels exceed alcove width", g.IncompatibilityReason)
		}
	}
	assert.True(t, found, "expected a Shower Doors group")
}

// S5: corner base with return panel combo SKU.
func TestShowerBaseMatcher_S5_ReturnPanelCombo(t *testing.T) {
	base := entity.Product{
		SKU:                 "B2",
		Category:            entity.CategoryShowerBases,
		Installation:        ptr("Corner"),
		Length:              dec("48"),
		Width:               dec("34"),
		FitsReturnPanelSize: ptr("36"),
		MaxDoorWidth:        dec("36"),
		Series:              ptr("MAAX"),
	}
	door := entity.Product{
		SKU:            "D2",
		Category:       entity.CategoryShowerDoors,
		Series:         ptr("MAAX"),
		HasReturnPanel: ptr("Yes"),
		MinimumWidth:   dec("30"),
		MaximumWidth:   dec("40"),
		Family:         ptr("F"),
	}
	p1 := entity.Product{SKU: "P1", Category: entity.CategoryReturnPanels, ReturnPanelSize: ptr("36"), Family: ptr("F")}
	p2 := entity.Product{SKU: "P2", Category: entity.CategoryReturnPanels, ReturnPanelSize: ptr("42"), Family: ptr("F")}

	catalog := fakeCatalog{
		entity.CategoryShowerDoors:  {door},
		entity.CategoryReturnPanels: {p1, p2},
	}

	groups := ShowerBaseMatcher{}.Match(base, catalog)

	require_groupContainsSKU(t, groups, entity.CategoryShowerDoors, "D2|P1")
	require_groupNotContainsSKU(t, groups, entity.CategoryShowerDoors, "D2|P2")
}

func require_groupContainsSKU(t *testing.T, groups []PartnerGroup, cat entity.Category, sku string) {
	t.Helper()
	for _, g := range groups {
		if g.Category != cat {
			continue
		}
		for _, m := range g.Matches {
			if m.SKU == sku {
				return
			}
		}
	}
	t.Fatalf("expected category %s to contain %s, groups: %+v", cat, sku, groups)
}

// Cut-to-size wall within the +3 inch ceiling (spec §4.4.2, §8): a wall
// exceeding the base by exactly 3 inches on both dimensions is still
// included.
func TestShowerBaseMatcher_CutToSizeWall_PlusThreeIncluded(t *testing.T) {
	base := entity.Product{
		SKU:          "BASE1",
		Category:     entity.CategoryShowerBases,
		Installation: ptr("Alcove"),
		Series:       ptr("Retail"),
		Brand:        ptr("Swan"),
		Length:       dec("60"),
		Width:        dec("32"),
	}
	wall := entity.Product{
		SKU:       "W-PLUS3",
		Category:  entity.CategoryWalls,
		Type:      ptr("Alcove Shower"),
		CutToSize: ptr("Yes"),
		Series:    ptr("Retail"),
		Brand:     ptr("Swan"),
		Length:    dec("63"),
		Width:     dec("35"),
	}
	catalog := fakeCatalog{entity.CategoryWalls: {wall}}

	groups := ShowerBaseMatcher{}.Match(base, catalog)

	require_groupContainsSKU(t, groups, entity.CategoryWalls, "W-PLUS3")
}

// A wall exceeding the base by 3.01 inches is excluded entirely, not
// just deprioritized.
func TestShowerBaseMatcher_CutToSizeWall_PlusThreePointZeroOneExcluded(t *testing.T) {
	base := entity.Product{
		SKU:          "BASE2",
		Category:     entity.CategoryShowerBases,
		Installation: ptr("Alcove"),
		Series:       ptr("Retail"),
		Brand:        ptr("Swan"),
		Length:       dec("60"),
		Width:        dec("32"),
	}
	wall := entity.Product{
		SKU:       "W-PLUS301",
		Category:  entity.CategoryWalls,
		Type:      ptr("Alcove Shower"),
		CutToSize: ptr("Yes"),
		Series:    ptr("Retail"),
		Brand:     ptr("Swan"),
		Length:    dec("63.01"),
		Width:     dec("35"),
	}
	catalog := fakeCatalog{entity.CategoryWalls: {wall}}

	groups := ShowerBaseMatcher{}.Match(base, catalog)

	require_groupNotContainsSKU(t, groups, entity.CategoryWalls, "W-PLUS301")
}

func require_groupNotContainsSKU(t *testing.T, groups []PartnerGroup, cat entity.Category, sku string) {
	t.Helper()
	for _, g := range groups {
		if g.Category != cat {
			continue
		}
		for _, m := range g.Matches {
			if m.SKU == sku {
				t.Fatalf("expected category %s to NOT contain %s", cat, sku)
			}
		}
	}
}
