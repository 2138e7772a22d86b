// Package feed parses the vendor-supplied XLSX workbook into an
// in-memory catalog snapshot (C2), and holds the current snapshot
// behind a reader/writer lock so a long-running matcher always sees a
// consistent view even while a new feed is being swapped in.
package feed

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	apperrors "github.com/kirimku/smartseller-backend/internal/domain/errors"
	applog "github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
)

// stringColumns and decimalColumns are the recognized header names, each
// mapped to the Product field it fills. Headers not in these tables are preserved
// verbatim in Product.Attributes (spec §4.2).
var stringColumns = map[string]func(p *entity.Product, v string){
	"brand":                     func(p *entity.Product, v string) { p.Brand = strPtr(v) },
	"series":                    func(p *entity.Product, v string) { p.Series = strPtr(v) },
	"family":                    func(p *entity.Product, v string) { p.Family = strPtr(v) },
	"nominal dimensions":        func(p *entity.Product, v string) { p.NominalDimensions = strPtr(v) },
	"installation":              func(p *entity.Product, v string) { p.Installation = strPtr(v) },
	"has return panel":          func(p *entity.Product, v string) { p.HasReturnPanel = strPtr(v) },
	"fits return panel size":    func(p *entity.Product, v string) { p.FitsReturnPanelSize = strPtr(v) },
	"return panel size":         func(p *entity.Product, v string) { p.ReturnPanelSize = strPtr(v) },
	"cut to size":               func(p *entity.Product, v string) { p.CutToSize = strPtr(v) },
	"glass thickness":           func(p *entity.Product, v string) { p.GlassThickness = strPtr(v) },
	"glass":                     func(p *entity.Product, v string) { p.GlassThickness = strPtr(v) },
	"door type":                 func(p *entity.Product, v string) { p.DoorType = strPtr(v) },
	"material":                  func(p *entity.Product, v string) { p.Material = strPtr(v) },
	"type":                      func(p *entity.Product, v string) { p.Type = strPtr(v) },
	"reason doors can't fit":    func(p *entity.Product, v string) { p.ReasonDoorsCantFit = strPtr(v) },
	"reason walls can't fit":    func(p *entity.Product, v string) { p.ReasonWallsCantFit = strPtr(v) },
	"product name":              func(p *entity.Product, v string) { p.Name = strPtr(v) },
	"image url":                 func(p *entity.Product, v string) { p.ImageURL = strPtr(v) },
	"product page url":          func(p *entity.Product, v string) { p.ProductPageURL = strPtr(v) },
}

var decimalColumns = map[string]func(p *entity.Product, v *decimal.Decimal){
	"length":              func(p *entity.Product, v *decimal.Decimal) { p.Length = v },
	"width":               func(p *entity.Product, v *decimal.Decimal) { p.Width = v },
	"height":              func(p *entity.Product, v *decimal.Decimal) { p.Height = v },
	"max door width":      func(p *entity.Product, v *decimal.Decimal) { p.MaxDoorWidth = v },
	"max door height":     func(p *entity.Product, v *decimal.Decimal) { p.MaxDoorHeight = v },
	"minimum width":       func(p *entity.Product, v *decimal.Decimal) { p.MinimumWidth = v },
	"maximum width":       func(p *entity.Product, v *decimal.Decimal) { p.MaximumWidth = v },
	"maximum height":      func(p *entity.Product, v *decimal.Decimal) { p.MaximumHeight = v },
	"door width":          func(p *entity.Product, v *decimal.Decimal) { p.DoorWidth = v },
	"return panel width":  func(p *entity.Product, v *decimal.Decimal) { p.ReturnPanelWidth = v },
	"fixed panel width":   func(p *entity.Product, v *decimal.Decimal) { p.FixedPanelWidth = v },
}

const (
	colUniqueID    = "unique id"
	colProductName = "product name"
	colRanking     = "ranking"
)

// anchorSheets are the sheets that must declare "Nominal Dimensions"
// (spec §6).
var anchorSheets = map[entity.Category]bool{
	entity.CategoryShowerBases: true,
	entity.CategoryBathtubs:    true,
	entity.CategoryShowers:     true,
	entity.CategoryTubShowers:  true,
}

// Snapshot is an immutable, fully-parsed feed: every product indexed by
// category. Holder swaps snapshots atomically so readers in flight
// keep using the one they acquired.
type Snapshot struct {
	byCategory map[entity.Category][]entity.Product
	LoadedAt   time.Time
}

// ByCategory satisfies rules.Catalog.
func (s *Snapshot) ByCategory(c entity.Category) []entity.Product {
	if s == nil {
		return nil
	}
	return s.byCategory[c]
}

// AllProducts returns every product across every category, in
// entity.AllCategories order.
func (s *Snapshot) AllProducts() []entity.Product {
	if s == nil {
		return nil
	}
	var all []entity.Product
	for _, cat := range entity.AllCategories {
		all = append(all, s.byCategory[cat]...)
	}
	return all
}

// Holder guards the process-wide current Snapshot behind a
// reader/writer lock (spec §4.2, §5 "swap-under-lock").
type Holder struct {
	mu   sync.RWMutex
	snap *Snapshot
}

func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the presently loaded snapshot, or nil before the
// first successful Load.
func (h *Holder) Current() *Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

// Load parses path and, on success, atomically swaps it in as Current.
// A parse failure leaves the existing snapshot untouched.
func (h *Holder) Load(path string) (*Snapshot, error) {
	snap, err := ParseWorkbook(path)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	h.snap = snap
	h.mu.Unlock()
	return snap, nil
}

// ParseWorkbook reads an XLSX workbook at path into a Snapshot (spec
// §4.2). Fails with InvalidFeed when the workbook is unreadable, the
// anchor-installation sheet set is entirely absent, or a present sheet
// lacks SKU/ProductName headers.
func ParseWorkbook(path string) (*Snapshot, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewInvalidFeed("could not open vendor feed workbook", path, err)
	}
	defer f.Close()

	snap := &Snapshot{
		byCategory: make(map[entity.Category][]entity.Product, len(entity.AllCategories)),
		LoadedAt:   time.Now(),
	}

	sheetSet := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		sheetSet[name] = true
	}

	foundAnyAnchor := false
	for cat := range anchorSheets {
		if sheetSet[string(cat)] {
			foundAnyAnchor = true
		}
	}
	if !foundAnyAnchor {
		return nil, apperrors.NewInvalidFeed("vendor feed is missing every anchor sheet", "", nil)
	}

	for _, cat := range entity.AllCategories {
		name := string(cat)
		if !sheetSet[name] {
			warnSkippedSheet(name)
			continue
		}
		rows, err := parseSheet(f, name, cat)
		if err != nil {
			return nil, err
		}
		snap.byCategory[cat] = rows
	}

	return snap, nil
}

func warnSkippedSheet(name string) {
	applog.Logger.Warn().Str("type", "sync").Str("component", "ingestion").
		Str("sheet", name).Msg("optional sheet absent from feed, category skipped")
}

func parseSheet(f *excelize.File, sheetName string, category entity.Category) ([]entity.Product, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, apperrors.NewInvalidFeed("could not read sheet rows", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	colIndex := make(map[string]int, len(header))
	for i, h := range header {
		colIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}

	skuIdx, hasSKU := colIndex[colUniqueID]
	_, hasName := colIndex[colProductName]
	if !hasSKU || !hasName {
		return nil, apperrors.NewInvalidFeed("sheet is missing SKU or ProductName column", sheetName, nil)
	}
	if anchorSheets[category] {
		if _, ok := colIndex["nominal dimensions"]; !ok {
			return nil, apperrors.NewInvalidFeed("anchor sheet is missing Nominal Dimensions column", sheetName, nil)
		}
	}

	var products []entity.Product
	for _, row := range rows[1:] {
		rawSKU := cell(row, skuIdx)
		if strings.TrimSpace(rawSKU) == "" {
			continue
		}

		p := entity.Product{
			SKU:        entity.CanonicalSKU(rawSKU),
			Category:   category,
			Attributes: make(map[string]string),
		}

		for colName, idx := range colIndex {
			v := cell(row, idx)
			if v == "" {
				continue
			}
			switch {
			case colName == colUniqueID:
				continue
			case colName == colRanking:
				if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
					p.Ranking = n
				}
			case stringColumns[colName] != nil:
				stringColumns[colName](&p, v)
			case decimalColumns[colName] != nil:
				d, err := decimal.NewFromString(strings.TrimSpace(v))
				if err != nil {
					applog.Logger.Warn().Str("type", "sync").Str("component", "ingestion").
						Str("sheet", sheetName).Str("sku", p.SKU).
						Str("column", colName).Str("value", v).Msg("could not parse decimal cell, treating as absent")
					continue
				}
				decimalColumns[colName](&p, &d)
			default:
				p.Attributes[originalHeaderFor(header, idx)] = v
			}
		}

		products = append(products, p)
	}

	return products, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func originalHeaderFor(header []string, idx int) string {
	if idx < 0 || idx >= len(header) {
		return ""
	}
	return header[idx]
}

func strPtr(v string) *string {
	return &v
}
