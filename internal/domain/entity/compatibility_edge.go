package entity

import "time"

// CompatibilityEdge is a directed compatibility relationship from
// BaseSKU to PartnerSKU. Score is an internal strength used only for
// ordering edges the storage layer returns — higher is preferred, which
// is the opposite sense from Product.Ranking (lower is preferred).
type CompatibilityEdge struct {
	BaseSKU    string `json:"base_sku" db:"base_sku"`
	PartnerSKU string `json:"partner_sku" db:"partner_sku"`

	PartnerCategory Category `json:"partner_category" db:"partner_category"`

	Score       int    `json:"score" db:"score"`
	MatchReason string `json:"match_reason" db:"match_reason"`

	// IncompatibilityReason, when non-empty, records that PartnerCategory
	// is explicitly incompatible for BaseSKU. Only ever set on
	// anchor -> anchor-category placeholder edges; its presence
	// suppresses the partner list for that category.
	IncompatibilityReason string `json:"incompatibility_reason,omitempty" db:"incompatibility_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ReverseReasonPrefix marks a reverse edge's MatchReason as materializer
// generated rather than a direct C4 match.
const ReverseReasonPrefix = "Reverse: "

// ReverseOf builds the complementary edge C6 materializes alongside a
// forward match (anchorCategory -> anchorCategory, since from the
// partner's point of view the anchor is itself just a partner in its own
// category): same score, reason tagged with the reverse prefix.
func ReverseOf(forward CompatibilityEdge, anchorCategory Category) CompatibilityEdge {
	return CompatibilityEdge{
		BaseSKU:         forward.PartnerSKU,
		PartnerSKU:      forward.BaseSKU,
		PartnerCategory: anchorCategory,
		Score:           forward.Score,
		MatchReason:     ReverseReasonPrefix + forward.MatchReason,
		CreatedAt:       forward.CreatedAt,
	}
}
