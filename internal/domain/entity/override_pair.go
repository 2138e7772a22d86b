package entity

// OverrideKind distinguishes a manually curated whitelist entry from a
// blacklist entry.
type OverrideKind string

const (
	OverrideWhitelist OverrideKind = "whitelist"
	OverrideBlacklist OverrideKind = "blacklist"
)

// OverridePair is an unordered pair of canonicalized SKUs, tagged with
// whether the pair is force-allowed or force-denied.
type OverridePair struct {
	SKUX string
	SKUY string
	Kind OverrideKind
}

// Other returns the counterpart SKU in the pair given one side of it. It
// returns SKUX if sku matches neither side — callers only invoke it after
// confirming membership.
func (p OverridePair) Other(sku string) string {
	if sku == p.SKUX {
		return p.SKUY
	}
	return p.SKUX
}

// Has reports whether sku is one side of this pair.
func (p OverridePair) Has(sku string) bool {
	return p.SKUX == sku || p.SKUY == sku
}

// PairKey returns an order-independent key for (a, b), used to index
// override sets by unordered pair.
func PairKey(a, b string) [2]string {
	if a <= b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}
