// Package entity holds the catalog domain types: products, compatibility
// edges, override pairs, and the records that track an ingestion attempt.
package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category enumerates the recognized catalog categories. Values match the
// vendor feed's sheet names verbatim.
type Category string

const (
	CategoryShowerBases   Category = "Shower Bases"
	CategoryBathtubs      Category = "Bathtubs"
	CategoryShowers       Category = "Showers"
	CategoryTubShowers    Category = "Tub Showers"
	CategoryShowerDoors   Category = "Shower Doors"
	CategoryTubDoors      Category = "Tub Doors"
	CategoryShowerScreens Category = "Shower Screens"
	CategoryTubScreens    Category = "Tub Screens"
	CategoryWalls         Category = "Walls"
	CategoryReturnPanels  Category = "Return Panels"
	CategoryEnclosures    Category = "Enclosures"
)

// AllCategories lists every recognized category in feed/sheet order.
var AllCategories = []Category{
	CategoryShowerBases,
	CategoryBathtubs,
	CategoryShowers,
	CategoryTubShowers,
	CategoryShowerDoors,
	CategoryTubDoors,
	CategoryShowerScreens,
	CategoryTubScreens,
	CategoryWalls,
	CategoryReturnPanels,
	CategoryEnclosures,
}

// IsAnchor reports whether the category is one of the four anchor
// categories the rule engine (C4) matches from.
func (c Category) IsAnchor() bool {
	switch c {
	case CategoryShowerBases, CategoryBathtubs, CategoryShowers, CategoryTubShowers:
		return true
	default:
		return false
	}
}

// CanonicalSKU upper-cases and trims a SKU, matching the case-insensitive
// canonicalization invariant (I1) for Product.SKU.
func CanonicalSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// Product is a single catalog item. Optional decimal fields are nil when
// unknown (invariant I3: never zero for "unknown").
type Product struct {
	SKU      string   `json:"sku" db:"sku"`
	Category Category `json:"category" db:"category"`

	Brand  *string `json:"brand,omitempty" db:"brand"`
	Series *string `json:"series,omitempty" db:"series"`
	Family *string `json:"family,omitempty" db:"family"`

	Length *decimal.Decimal `json:"length,omitempty" db:"length"`
	Width  *decimal.Decimal `json:"width,omitempty" db:"width"`
	Height *decimal.Decimal `json:"height,omitempty" db:"height"`

	NominalDimensions *string `json:"nominal_dimensions,omitempty" db:"nominal_dimensions"`
	Installation      *string `json:"installation,omitempty" db:"installation"`

	MaxDoorWidth  *decimal.Decimal `json:"max_door_width,omitempty" db:"max_door_width"`
	MaxDoorHeight *decimal.Decimal `json:"max_door_height,omitempty" db:"max_door_height"`

	MinimumWidth  *decimal.Decimal `json:"minimum_width,omitempty" db:"minimum_width"`
	MaximumWidth  *decimal.Decimal `json:"maximum_width,omitempty" db:"maximum_width"`
	MaximumHeight *decimal.Decimal `json:"maximum_height,omitempty" db:"maximum_height"`

	HasReturnPanel      *string          `json:"has_return_panel,omitempty" db:"has_return_panel"`
	FitsReturnPanelSize *string          `json:"fits_return_panel_size,omitempty" db:"fits_return_panel_size"`
	ReturnPanelSize     *string          `json:"return_panel_size,omitempty" db:"return_panel_size"`
	DoorWidth           *decimal.Decimal `json:"door_width,omitempty" db:"door_width"`
	ReturnPanelWidth    *decimal.Decimal `json:"return_panel_width,omitempty" db:"return_panel_width"`
	CutToSize           *string          `json:"cut_to_size,omitempty" db:"cut_to_size"`
	FixedPanelWidth      *decimal.Decimal `json:"fixed_panel_width,omitempty" db:"fixed_panel_width"`

	GlassThickness *string `json:"glass_thickness,omitempty" db:"glass_thickness"`
	DoorType       *string `json:"door_type,omitempty" db:"door_type"`
	Material       *string `json:"material,omitempty" db:"material"`
	Type           *string `json:"type,omitempty" db:"type"`

	ReasonDoorsCantFit *string `json:"reason_doors_cant_fit,omitempty" db:"reason_doors_cant_fit"`
	ReasonWallsCantFit *string `json:"reason_walls_cant_fit,omitempty" db:"reason_walls_cant_fit"`

	Ranking int `json:"ranking" db:"ranking"`

	Name            *string `json:"name,omitempty" db:"name"`
	ImageURL        *string `json:"image_url,omitempty" db:"image_url"`
	ProductPageURL  *string `json:"product_page_url,omitempty" db:"product_page_url"`

	Attributes map[string]string `json:"attributes,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultRanking is used when a product's Ranking column is absent from
// the feed (invariant I4).
const DefaultRanking = 999

// RankingOrDefault returns Ranking, or DefaultRanking if it is unset (zero
// value). Zero is never a meaningful ranking in the vendor feed.
func (p *Product) RankingOrDefault() int {
	if p.Ranking == 0 {
		return DefaultRanking
	}
	return p.Ranking
}

// Deref returns the dereferenced value of an optional string, or "" when
// nil, without any case or whitespace normalization.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// str returns the trimmed, lower-cased form of an optional string, or ""
// when nil — the common shape Is, Contains and InstallationIn compare
// against.
func str(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*s))
}

// Is reports whether an optional string field equals want, case- and
// whitespace-insensitively.
func Is(s *string, want string) bool {
	return str(s) == strings.ToLower(want)
}

// Contains reports whether an optional string field contains sub,
// case-insensitively.
func Contains(s *string, sub string) bool {
	return strings.Contains(str(s), strings.ToLower(sub))
}

// InstallationIn reports whether the product's installation string is one
// of the given values (case-insensitive exact match).
func (p *Product) InstallationIn(values ...string) bool {
	v := str(p.Installation)
	for _, want := range values {
		if v == strings.ToLower(want) {
			return true
		}
	}
	return false
}
