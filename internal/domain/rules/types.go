package rules

import "github.com/kirimku/smartseller-backend/internal/domain/entity"

// Catalog is the read-only view the rule engine needs of a feed
// snapshot or a live catalog: every product indexed by category. C2's
// Snapshot and C1's repository-backed live view both satisfy this by
// exposing their rows this way.
type Catalog interface {
	ByCategory(c entity.Category) []entity.Product
}

// PartnerMatch is a matched partner product, carrying the internal
// ranking field used only for ordering — callers strip it before
// exposing a result externally (spec §4.4.3).
type PartnerMatch struct {
	SKU     string
	Ranking int
}

// PartnerGroup is one anchor matcher's result for a single partner
// category: either a list of matches, or — when the anchor carries an
// explicit incompatibility annotation — a reason string that suppresses
// the match list entirely.
type PartnerGroup struct {
	Category              entity.Category
	Matches               []PartnerMatch
	IncompatibilityReason string
}

// Suppressed reports whether this group carries an incompatibility
// annotation instead of match results.
func (g PartnerGroup) Suppressed() bool {
	return g.IncompatibilityReason != ""
}

// Matcher is the capability-based interface every anchor category
// implements (spec §9's "tagged sum over anchor category"). Match
// never errors: an unmatched rule produces an empty group, never a
// failure.
type Matcher interface {
	Match(anchor entity.Product, catalog Catalog) []PartnerGroup
}

// MatcherFor returns the Matcher for an anchor category, or nil if the
// category is not one of the four recognized anchors.
func MatcherFor(c entity.Category) Matcher {
	switch c {
	case entity.CategoryShowerBases:
		return ShowerBaseMatcher{}
	case entity.CategoryBathtubs:
		return BathtubMatcher{}
	case entity.CategoryShowers:
		return ShowerMatcher{}
	case entity.CategoryTubShowers:
		return TubShowerMatcher{}
	default:
		return nil
	}
}

// dedupeBySKU collapses multiple matches to the same partner SKU to the
// first-encountered one (spec §4.6's dedup rule), preserving the order
// matches were appended in.
func dedupeBySKU(matches []PartnerMatch) []PartnerMatch {
	seen := make(map[string]bool, len(matches))
	out := make([]PartnerMatch, 0, len(matches))
	for _, m := range matches {
		if seen[m.SKU] {
			continue
		}
		seen[m.SKU] = true
		out = append(out, m)
	}
	return out
}

// sortedDedup dedupes by SKU (first-encountered wins) then sorts the
// survivors ascending by Ranking — the combination every matcher
// applies to its raw candidate list before returning it.
func sortedDedup(matches []PartnerMatch) []PartnerMatch {
	deduped := dedupeBySKU(matches)
	sortByRanking(deduped)
	return deduped
}

// sortByRanking orders matches ascending by Ranking, stable on ties
// (spec §4.4.3, invariant I4).
func sortByRanking(matches []PartnerMatch) {
	// insertion sort: stable, and the per-category lists this engine
	// produces are small (tens of candidates at most).
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].Ranking < matches[j-1].Ranking; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}
}
