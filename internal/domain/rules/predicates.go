// Package rules implements the compatibility rule engine (C4): one
// matcher per anchor category, built on predicates shared across
// matchers. Matchers never return an error — a rule mismatch is an
// empty result, and a missing optional sheet is a skipped category.
package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

// seriesMatrix captures the fuzzy symmetric series-compatibility
// relation (spec §4.4.1): a base series tolerates a fixed set of
// partner series values. Exact case-insensitive equality always
// matches regardless of this table.
var seriesMatrix = map[string][]string{
	"retail":       {"retail", "maax"},
	"maax":         {"retail", "maax", "collection", "professional"},
	"collection":   {"maax", "collection", "professional"},
	"professional": {"maax", "collection", "professional"},
}

// seriesCompatible is the shared (non-bathtub) series predicate. Nulls
// on either side fail.
func seriesCompatible(base, partner *string) bool {
	b := strings.ToLower(strings.TrimSpace(entity.Deref(base)))
	p := strings.ToLower(strings.TrimSpace(entity.Deref(partner)))
	if b == "" || p == "" {
		return false
	}
	if b == p {
		return true
	}
	allowed, ok := seriesMatrix[b]
	if !ok {
		return false
	}
	for _, a := range allowed {
		if a == p {
			return true
		}
	}
	return false
}

// bathtubSeriesCompatible always returns true. Carried forward as-is
// per the original implementation's own comment that series rules were
// removed for bathtub matching; this is a deliberate relaxation, not a
// bug, and must not be "fixed" to use seriesCompatible.
func bathtubSeriesCompatible(_, _ *string) bool {
	return true
}

// baseWallBrandFamilyMatch is the base<->wall asymmetric brand/family
// predicate (spec §4.4.1, second bullet).
func baseWallBrandFamilyMatch(baseBrand, baseFamily, wallBrand, wallFamily *string) bool {
	bb := lower(baseBrand)
	bf := lower(baseFamily)
	wb := lower(wallBrand)
	wf := lower(wallFamily)

	if bb == "maax" && wb != "maax" {
		return false
	}

	switch {
	case bb == "swan" && wb == "swan":
		return true
	case bb == "neptune" && wb == "neptune":
		return true
	case bb == "bootz" && wb == "bootz":
		return true
	case bf == "w&b" && wf == "w&b":
		return true
	case bf == "olio" && wf == "olio":
		return true
	case bf == "vellamo" && wf == "vellamo":
		return true
	case bf == "interflo" && wf == "interflo":
		return true
	case bf == "b3" && isOneOf(wf, "utile", "denso", "nextile", "versaline"):
		return true
	case isOneOf(bf, "finesse", "distinct", "zone", "olympia", "icon", "roka") && isOneOf(wf, "utile", "nextile"):
		return true
	default:
		return false
	}
}

// bathtubWallBrandFamilyMatch is the bathtub<->wall family-only
// predicate (spec §4.4.1, third bullet). Brand is accepted but unused,
// mirroring the original's "brand rules removed" note.
func bathtubWallBrandFamilyMatch(_, baseFamily, _, wallFamily *string) bool {
	bf := lower(baseFamily)
	wf := lower(wallFamily)

	if bf == "olio" || wf == "olio" {
		return bf == "olio" && wf == "olio"
	}
	if bf == "vellamo" || wf == "vellamo" {
		return bf == "vellamo" && wf == "vellamo"
	}
	if bf == "interflo" || wf == "interflo" {
		return bf == "interflo" && wf == "interflo"
	}
	if isOneOf(wf, "utile", "nextile") {
		return isOneOf(bf, "nomad", "mackenzie", "exhibit", "new town", "rubix", "bosca", "cocoon", "corinthia")
	}
	return true
}

// baseDoorBrandFamilyMatch is the base<->door brand predicate (spec
// §4.4.1, fourth bullet): exact brand equality among a fixed set, plus
// the Aker->Maax cross-brand mapping.
func baseDoorBrandFamilyMatch(baseBrand, doorBrand *string) bool {
	bb := lower(baseBrand)
	db := lower(doorBrand)

	if bb == "aker" && db == "maax" {
		return true
	}
	if isOneOf(bb, "maax", "neptune") && bb == db {
		return true
	}
	return false
}

var nominalTokenSeparators = regexp.MustCompile(`[xX×*]`)

// nominalTokens splits a nominal-dimensions string like "48 x 32" into
// its component tokens, trimmed of whitespace.
func nominalTokens(s string) []string {
	parts := nominalTokenSeparators.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// nominalEqual compares two nominal-dimension strings as token
// sequences; numeric tokens match within +/-0.5, non-numeric tokens
// compare case-insensitively.
func nominalEqual(a, b *string) bool {
	as := strings.TrimSpace(entity.Deref(a))
	bs := strings.TrimSpace(entity.Deref(b))
	if as == "" || bs == "" {
		return false
	}
	ta := nominalTokens(as)
	tb := nominalTokens(bs)
	if len(ta) != len(tb) {
		return false
	}
	for i := range ta {
		if !tokenEqual(ta[i], tb[i]) {
			return false
		}
	}
	return true
}

func tokenEqual(a, b string) bool {
	af, aerr := strconv.ParseFloat(a, 64)
	bf, berr := strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		diff := af - bf
		if diff < 0 {
			diff = -diff
		}
		return diff <= 0.5
	}
	return strings.EqualFold(a, b)
}

func lower(s *string) string {
	return strings.ToLower(strings.TrimSpace(entity.Deref(s)))
}

func isOneOf(v string, candidates ...string) bool {
	for _, c := range candidates {
		if v == c {
			return true
		}
	}
	return false
}

// decGE reports whether a >= b, treating a nil operand as failing the
// comparison (the caller's dimensional predicate is then false).
func decGE(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return false
	}
	return a.GreaterThanOrEqual(*b)
}

// decLE mirrors decGE for <=.
func decLE(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return false
	}
	return a.LessThanOrEqual(*b)
}

// decWithin reports whether value lies in [lo, hi] inclusive.
func decWithin(value, lo, hi *decimal.Decimal) bool {
	if value == nil || lo == nil || hi == nil {
		return false
	}
	return value.GreaterThanOrEqual(*lo) && value.LessThanOrEqual(*hi)
}

// decSub returns a-b as a float64, used for tolerance comparisons
// where an exact decimal isn't required. Returns 0 and false if either
// operand is nil.
func decSub(a, b *decimal.Decimal) (float64, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	f, _ := a.Sub(*b).Float64()
	return f, true
}

// decAdd returns a+n, or nil if a is nil.
func decAdd(a *decimal.Decimal, n int64) *decimal.Decimal {
	if a == nil {
		return nil
	}
	sum := a.Add(decimal.NewFromInt(n))
	return &sum
}
