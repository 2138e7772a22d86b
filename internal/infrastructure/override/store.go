// Package override implements the Override Store (C3): a process-wide,
// lazily-loaded whitelist and blacklist of unordered SKU pairs, each
// read from its own XLSX workbook. Grounded on the original
// implementation's frozenset-based caches
// (logic/whitelist_helper.py, logic/blacklist_helper.py).
package override

import (
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	apperrors "github.com/kirimku/smartseller-backend/internal/domain/errors"
)

// Store holds the whitelist and blacklist, each loaded on first use
// and immutable after that until an explicit Reload.
type Store struct {
	whitelistPath string
	blacklistPath string

	whitelistOnce sync.Once
	blacklistOnce sync.Once

	mu        sync.RWMutex
	whitelist map[[2]string]bool
	blacklist map[[2]string]bool
}

func NewStore(whitelistPath, blacklistPath string) *Store {
	return &Store{whitelistPath: whitelistPath, blacklistPath: blacklistPath}
}

// IsBlacklisted reports whether the unordered pair (a, b) is on the
// blacklist (spec §4.3). Order-independent.
func (s *Store) IsBlacklisted(a, b string) bool {
	s.blacklistOnce.Do(func() { s.loadBlacklist() })
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blacklist[entity.PairKey(entity.CanonicalSKU(a), entity.CanonicalSKU(b))]
}

// WhitelistedPartnersOf returns every SKU force-allowed alongside sku.
func (s *Store) WhitelistedPartnersOf(sku string) []string {
	s.whitelistOnce.Do(func() { s.loadWhitelist() })
	canon := entity.CanonicalSKU(sku)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var partners []string
	for pair := range s.whitelist {
		switch canon {
		case pair[0]:
			partners = append(partners, pair[1])
		case pair[1]:
			partners = append(partners, pair[0])
		}
	}
	return partners
}

// Reload forces both override files to be re-read on next access.
func (s *Store) Reload() {
	s.mu.Lock()
	s.whitelist = nil
	s.blacklist = nil
	s.mu.Unlock()
	s.whitelistOnce = sync.Once{}
	s.blacklistOnce = sync.Once{}
}

func (s *Store) loadWhitelist() {
	pairs, err := loadPairs(s.whitelistPath)
	if err != nil {
		pairs = map[[2]string]bool{}
	}
	s.mu.Lock()
	s.whitelist = pairs
	s.mu.Unlock()
}

func (s *Store) loadBlacklist() {
	pairs, err := loadPairs(s.blacklistPath)
	if err != nil {
		pairs = map[[2]string]bool{}
	}
	s.mu.Lock()
	s.blacklist = pairs
	s.mu.Unlock()
}

// loadPairs reads the first two columns of row 2 onward as an
// unordered SKU pair. An empty path yields an empty set with no error;
// a file that cannot be opened returns an InvalidFeed error, which
// loadWhitelist and loadBlacklist turn into an empty override set,
// matching the original's "if os.path.exists" guard.
func loadPairs(path string) (map[[2]string]bool, error) {
	pairs := make(map[[2]string]bool)
	if path == "" {
		return pairs, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return pairs, apperrors.NewInvalidFeed("could not open override workbook", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return pairs, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return pairs, apperrors.NewInvalidFeed("could not read override workbook rows", path, err)
	}
	if len(rows) < 2 {
		return pairs, nil
	}

	for _, row := range rows[1:] {
		if len(row) < 2 {
			continue
		}
		a := entity.CanonicalSKU(strings.TrimSpace(row[0]))
		b := entity.CanonicalSKU(strings.TrimSpace(row[1]))
		if a == "" || b == "" || a == b {
			continue
		}
		pairs[entity.PairKey(a, b)] = true
	}

	return pairs, nil
}
