package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

// A tub door inside the tub shower's width/height range and series
// group is matched. Unlike ShowerMatcher, TubShowerMatcher has no
// installation gate (original_source/logic/tubshower_compatibility.py
// applies the door rule regardless of installation).
func TestTubShowerMatcher_DoorMatch(t *testing.T) {
	anchor := entity.Product{
		SKU:           "TS1",
		Category:      entity.CategoryTubShowers,
		Series:        ptr("MAAX"),
		MaxDoorWidth:  dec("32"),
		MaxDoorHeight: dec("72"),
	}
	door := entity.Product{
		SKU:           "TD1",
		Category:      entity.CategoryTubDoors,
		MinimumWidth:  dec("30"),
		MaximumWidth:  dec("34"),
		MaximumHeight: dec("70"),
		Series:        ptr("Collection"),
	}
	catalog := fakeCatalog{entity.CategoryTubDoors: {door}}

	groups := TubShowerMatcher{}.Match(anchor, catalog)

	require_groupContainsSKU(t, groups, entity.CategoryTubDoors, "TD1")
}

// A door whose maximum height exceeds the anchor's allowed door height,
// or whose width range doesn't cover the anchor's max door width, is
// excluded.
func TestTubShowerMatcher_DoorHeightAndWidthRange(t *testing.T) {
	anchor := entity.Product{
		SKU:           "TS2",
		Category:      entity.CategoryTubShowers,
		Series:        ptr("MAAX"),
		MaxDoorWidth:  dec("32"),
		MaxDoorHeight: dec("72"),
	}
	tooTall := entity.Product{
		SKU:           "TD2",
		Category:      entity.CategoryTubDoors,
		MinimumWidth:  dec("30"),
		MaximumWidth:  dec("34"),
		MaximumHeight: dec("80"),
		Series:        ptr("MAAX"),
	}
	tooNarrowRange := entity.Product{
		SKU:           "TD3",
		Category:      entity.CategoryTubDoors,
		MinimumWidth:  dec("33"),
		MaximumWidth:  dec("40"),
		MaximumHeight: dec("70"),
		Series:        ptr("MAAX"),
	}
	catalog := fakeCatalog{entity.CategoryTubDoors: {tooTall, tooNarrowRange}}

	groups := TubShowerMatcher{}.Match(anchor, catalog)

	require_groupNotContainsSKU(t, groups, entity.CategoryTubDoors, "TD2")
	require_groupNotContainsSKU(t, groups, entity.CategoryTubDoors, "TD3")
}

// An incompatible series excludes an otherwise dimensionally-fitting
// door.
func TestTubShowerMatcher_SeriesIncompatible(t *testing.T) {
	anchor := entity.Product{
		SKU:           "TS3",
		Category:      entity.CategoryTubShowers,
		Series:        ptr("Retail"),
		MaxDoorWidth:  dec("32"),
		MaxDoorHeight: dec("72"),
	}
	door := entity.Product{
		SKU:           "TD4",
		Category:      entity.CategoryTubDoors,
		MinimumWidth:  dec("30"),
		MaximumWidth:  dec("34"),
		MaximumHeight: dec("70"),
		Series:        ptr("Professional"),
	}
	catalog := fakeCatalog{entity.CategoryTubDoors: {door}}

	groups := TubShowerMatcher{}.Match(anchor, catalog)

	assert.Empty(t, groups)
}

// A tub shower carrying ReasonDoorsCantFit suppresses the Tub Doors
// group entirely, regardless of the catalog contents.
func TestTubShowerMatcher_ReasonDoorsCantFitSuppressesGroup(t *testing.T) {
	anchor := entity.Product{
		SKU:                "TS4",
		Category:           entity.CategoryTubShowers,
		ReasonDoorsCantFit: ptr("No door clears the apron"),
	}
	door := entity.Product{
		SKU:           "TD5",
		Category:      entity.CategoryTubDoors,
		MinimumWidth:  dec("30"),
		MaximumWidth:  dec("34"),
		MaximumHeight: dec("70"),
		Series:        ptr("MAAX"),
	}
	catalog := fakeCatalog{entity.CategoryTubDoors: {door}}

	groups := TubShowerMatcher{}.Match(anchor, catalog)

	assert.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, entity.CategoryTubDoors, g.Category)
	assert.True(t, g.Suppressed())
	assert.Equal(t, "No door clears the apron", g.IncompatibilityReason)
}
