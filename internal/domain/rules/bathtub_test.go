package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

// S4 from spec.md §8: Bathtub T1 60x32 Olio; walls W1 60x32 Olio
// (nominal match), W2 60x32 Utile (blocked by Olio strict rule), W3
// 72x34 Olio cut-to-size (admitted as closest cut within family).
// Expected Walls result: exactly {W1, W3}.
func TestBathtubMatcher_S4(t *testing.T) {
	tub := entity.Product{
		SKU:               "T1",
		Category:          entity.CategoryBathtubs,
		NominalDimensions: ptr("60 x 32"),
		Family:            ptr("Olio"),
		Length:            dec("60"),
		Width:             dec("32"),
	}
	w1 := entity.Product{
		SKU: "W1", Category: entity.CategoryWalls, Type: ptr("Tub"),
		NominalDimensions: ptr("60 x 32"), Family: ptr("Olio"),
	}
	w2 := entity.Product{
		SKU: "W2", Category: entity.CategoryWalls, Type: ptr("Tub"),
		NominalDimensions: ptr("60 x 32"), Family: ptr("Utile"),
	}
	w3 := entity.Product{
		SKU: "W3", Category: entity.CategoryWalls, Type: ptr("Tub"),
		Family: ptr("Olio"), CutToSize: ptr("Yes"),
		Length: dec("72"), Width: dec("34"),
	}

	catalog := fakeCatalog{entity.CategoryWalls: {w1, w2, w3}}

	groups := BathtubMatcher{}.Match(tub, catalog)

	require_groupContainsSKU(t, groups, entity.CategoryWalls, "W1")
	require_groupContainsSKU(t, groups, entity.CategoryWalls, "W3")
	require_groupNotContainsSKU(t, groups, entity.CategoryWalls, "W2")
}

// Bathtub wall tie on Manhattan distance: all minimum-distance
// candidates within a family are retained.
func TestBathtubMatcher_ManhattanTie(t *testing.T) {
	tub := entity.Product{
		SKU: "T2", Category: entity.CategoryBathtubs,
		Length: dec("60"), Width: dec("32"),
	}
	// Both at distance |62-60|+|33-32| = 3 and |61-60|+|34-32| = 3.
	w1 := entity.Product{
		SKU: "WA", Category: entity.CategoryWalls, Type: ptr("Tub"),
		Family: ptr("F"), CutToSize: ptr("Yes"),
		Length: dec("62"), Width: dec("33"),
	}
	w2 := entity.Product{
		SKU: "WB", Category: entity.CategoryWalls, Type: ptr("Tub"),
		Family: ptr("F"), CutToSize: ptr("Yes"),
		Length: dec("61"), Width: dec("34"),
	}
	catalog := fakeCatalog{entity.CategoryWalls: {w1, w2}}

	groups := BathtubMatcher{}.Match(tub, catalog)

	require_groupContainsSKU(t, groups, entity.CategoryWalls, "WA")
	require_groupContainsSKU(t, groups, entity.CategoryWalls, "WB")
}

func TestBathtubMatcher_CategoryOrder(t *testing.T) {
	tub := entity.Product{SKU: "T3", Category: entity.CategoryBathtubs, Installation: ptr("Alcove"), MaxDoorWidth: dec("30")}
	door := entity.Product{SKU: "D3", Category: entity.CategoryTubDoors, MinimumWidth: dec("28"), MaximumWidth: dec("32")}
	screen := entity.Product{SKU: "S3", Category: entity.CategoryTubScreens, FixedPanelWidth: dec("5")}
	wall := entity.Product{SKU: "WL3", Category: entity.CategoryWalls, Type: ptr("Tub"), NominalDimensions: ptr("x")}

	catalog := fakeCatalog{
		entity.CategoryTubDoors:   {door},
		entity.CategoryTubScreens: {screen},
		entity.CategoryWalls:      {wall},
	}

	groups := BathtubMatcher{}.Match(tub, catalog)

	require_groupContainsSKU(t, groups, entity.CategoryTubDoors, "D3")
	require_groupContainsSKU(t, groups, entity.CategoryTubScreens, "S3")

	var order []entity.Category
	for _, g := range groups {
		order = append(order, g.Category)
	}
	assert.Equal(t, []entity.Category{entity.CategoryTubDoors, entity.CategoryTubScreens}, order[:2])
}
