package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	apperrors "github.com/kirimku/smartseller-backend/internal/domain/errors"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
	applog "github.com/kirimku/smartseller-backend/internal/infrastructure/logger"
)

// PostgreSQLCatalogRepository implements repository.CatalogRepository
// against the products/compatibility_edges tables.
type PostgreSQLCatalogRepository struct {
	db *sqlx.DB
}

func NewPostgreSQLCatalogRepository(db *sqlx.DB) repository.CatalogRepository {
	return &PostgreSQLCatalogRepository{db: db}
}

// productRow mirrors the products table; Attributes round-trips
// through a jsonb column.
type productRow struct {
	entity.Product
	AttributesJSON []byte `db:"attributes"`
}

func (r *PostgreSQLCatalogRepository) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	var row productRow
	query := `SELECT * FROM products WHERE sku = $1`
	if err := r.db.GetContext(ctx, &row, query, entity.CanonicalSKU(sku)); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, MapPostgreSQLError(err, "", "")
	}
	if err := decodeAttributes(&row); err != nil {
		return nil, err
	}
	return &row.Product, nil
}

func (r *PostgreSQLCatalogRepository) ListByCategory(ctx context.Context, category entity.Category) ([]entity.Product, error) {
	var rows []productRow
	query := `SELECT * FROM products WHERE category = $1 ORDER BY sku`
	if err := r.db.SelectContext(ctx, &rows, query, string(category)); err != nil {
		return nil, MapPostgreSQLError(err, "", "")
	}
	products := make([]entity.Product, 0, len(rows))
	for i := range rows {
		if err := decodeAttributes(&rows[i]); err != nil {
			return nil, err
		}
		products = append(products, rows[i].Product)
	}
	return products, nil
}

func (r *PostgreSQLCatalogRepository) ListAllSKUs(ctx context.Context) ([]string, error) {
	var skus []string
	if err := r.db.SelectContext(ctx, &skus, `SELECT sku FROM products`); err != nil {
		return nil, MapPostgreSQLError(err, "", "")
	}
	return skus, nil
}

// UpsertBatch applies single-writer-per-SKU semantics: later entries
// for the same SKU in the batch win (spec §4.1).
func (r *PostgreSQLCatalogRepository) UpsertBatch(ctx context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return nil
	}

	bySKU := make(map[string]entity.Product, len(products))
	order := make([]string, 0, len(products))
	for _, p := range products {
		if _, exists := bySKU[p.SKU]; !exists {
			order = append(order, p.SKU)
		}
		bySKU[p.SKU] = p
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewTransientStorage("could not start upsert transaction", err)
	}
	defer tx.Rollback()

	now := time.Now()
	const query = `
		INSERT INTO products (
			sku, category, brand, series, family, length, width, height,
			nominal_dimensions, installation, max_door_width, max_door_height,
			minimum_width, maximum_width, maximum_height,
			has_return_panel, fits_return_panel_size, return_panel_size,
			door_width, return_panel_width, cut_to_size, fixed_panel_width,
			glass_thickness, door_type, material, type,
			reason_doors_cant_fit, reason_walls_cant_fit, ranking,
			name, image_url, product_page_url, attributes,
			created_at, updated_at
		) VALUES (
			:sku, :category, :brand, :series, :family, :length, :width, :height,
			:nominal_dimensions, :installation, :max_door_width, :max_door_height,
			:minimum_width, :maximum_width, :maximum_height,
			:has_return_panel, :fits_return_panel_size, :return_panel_size,
			:door_width, :return_panel_width, :cut_to_size, :fixed_panel_width,
			:glass_thickness, :door_type, :material, :type,
			:reason_doors_cant_fit, :reason_walls_cant_fit, :ranking,
			:name, :image_url, :product_page_url, :attributes,
			:created_at, :updated_at
		)
		ON CONFLICT (sku) DO UPDATE SET
			category = EXCLUDED.category, brand = EXCLUDED.brand,
			series = EXCLUDED.series, family = EXCLUDED.family,
			length = EXCLUDED.length, width = EXCLUDED.width, height = EXCLUDED.height,
			nominal_dimensions = EXCLUDED.nominal_dimensions, installation = EXCLUDED.installation,
			max_door_width = EXCLUDED.max_door_width, max_door_height = EXCLUDED.max_door_height,
			minimum_width = EXCLUDED.minimum_width, maximum_width = EXCLUDED.maximum_width,
			maximum_height = EXCLUDED.maximum_height,
			has_return_panel = EXCLUDED.has_return_panel,
			fits_return_panel_size = EXCLUDED.fits_return_panel_size,
			return_panel_size = EXCLUDED.return_panel_size,
			door_width = EXCLUDED.door_width, return_panel_width = EXCLUDED.return_panel_width,
			cut_to_size = EXCLUDED.cut_to_size, fixed_panel_width = EXCLUDED.fixed_panel_width,
			glass_thickness = EXCLUDED.glass_thickness, door_type = EXCLUDED.door_type,
			material = EXCLUDED.material, type = EXCLUDED.type,
			reason_doors_cant_fit = EXCLUDED.reason_doors_cant_fit,
			reason_walls_cant_fit = EXCLUDED.reason_walls_cant_fit,
			ranking = EXCLUDED.ranking, name = EXCLUDED.name,
			image_url = EXCLUDED.image_url, product_page_url = EXCLUDED.product_page_url,
			attributes = EXCLUDED.attributes, updated_at = EXCLUDED.updated_at`

	for _, sku := range order {
		p := bySKU[sku]
		p.SKU = entity.CanonicalSKU(p.SKU)
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now

		attrs, err := json.Marshal(p.Attributes)
		if err != nil {
			tx.Rollback()
			return apperrors.NewInvalidInput("could not encode product attributes", err)
		}

		row := productRow{Product: p, AttributesJSON: attrs}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			tx.Rollback()
			return MapPostgreSQLError(err, "", "")
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewTransientStorage("could not commit upsert batch", err)
	}
	return nil
}

func (r *PostgreSQLCatalogRepository) DeleteBatch(ctx context.Context, skus []string) error {
	if len(skus) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM products WHERE sku IN (?)`, canonicalize(skus))
	if err != nil {
		return apperrors.NewTransientStorage("could not build delete query", err)
	}
	query = r.db.Rebind(query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return MapPostgreSQLError(err, "", "")
	}
	return nil
}

func (r *PostgreSQLCatalogRepository) ListEdgesFrom(ctx context.Context, baseSKU string) ([]entity.CompatibilityEdge, error) {
	var edges []entity.CompatibilityEdge
	query := `SELECT * FROM compatibility_edges WHERE base_sku = $1 ORDER BY score DESC`
	if err := r.db.SelectContext(ctx, &edges, query, entity.CanonicalSKU(baseSKU)); err != nil {
		return nil, MapPostgreSQLError(err, "", "")
	}
	return edges, nil
}

// ReplaceEdgesFrom removes then inserts in a single transaction so
// concurrent readers never observe baseSKU with zero outgoing edges
// unless that is genuinely the final state (spec §4.1, §5).
func (r *PostgreSQLCatalogRepository) ReplaceEdgesFrom(ctx context.Context, baseSKU string, edges []entity.CompatibilityEdge) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewTransientStorage("could not start replace-edges transaction", err)
	}
	defer tx.Rollback()

	canon := entity.CanonicalSKU(baseSKU)
	if _, err := tx.ExecContext(ctx, `DELETE FROM compatibility_edges WHERE base_sku = $1`, canon); err != nil {
		return MapPostgreSQLError(err, "", "")
	}

	if err := insertEdgesTx(ctx, tx, edges); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewTransientStorage("could not commit replace-edges transaction", err)
	}
	return nil
}

func (r *PostgreSQLCatalogRepository) DeleteEdgesTouching(ctx context.Context, skus []string) error {
	if len(skus) == 0 {
		return nil
	}
	canon := canonicalize(skus)
	query, args, err := sqlx.In(
		`DELETE FROM compatibility_edges WHERE base_sku IN (?) OR partner_sku IN (?)`,
		canon, canon,
	)
	if err != nil {
		return apperrors.NewTransientStorage("could not build delete-edges query", err)
	}
	query = r.db.Rebind(query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return MapPostgreSQLError(err, "", "")
	}
	return nil
}

// edgeBatchSize bounds a single parameterized insert to stay under
// PostgreSQL's placeholder limit (spec §4.6 step 5).
const edgeBatchSize = 500

func (r *PostgreSQLCatalogRepository) BulkInsertEdges(ctx context.Context, edges []entity.CompatibilityEdge) error {
	if len(edges) == 0 {
		return nil
	}

	deduped := dedupeEdges(edges)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewTransientStorage("could not start bulk-insert transaction", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(deduped); start += edgeBatchSize {
		end := start + edgeBatchSize
		if end > len(deduped) {
			end = len(deduped)
		}
		if err := insertEdgesTx(ctx, tx, deduped[start:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewTransientStorage("could not commit bulk-insert transaction", err)
	}
	return nil
}

func (r *PostgreSQLCatalogRepository) SKUsWithoutOutgoingEdges(ctx context.Context, limit int) ([]string, error) {
	var skus []string
	query := `
		SELECT p.sku FROM products p
		LEFT JOIN compatibility_edges e ON e.base_sku = p.sku
		WHERE e.base_sku IS NULL
		ORDER BY p.sku
		LIMIT $1`
	if err := r.db.SelectContext(ctx, &skus, query, limit); err != nil {
		return nil, MapPostgreSQLError(err, "", "")
	}
	return skus, nil
}

// insertEdgesTx upserts edges on (base_sku, partner_sku), ignoring
// collisions with the existing set per spec §4.1's "BulkInsertEdges...
// ignores collisions with the existing set (upsert semantics)".
func insertEdgesTx(ctx context.Context, tx *sqlx.Tx, edges []entity.CompatibilityEdge) error {
	if len(edges) == 0 {
		return nil
	}
	const query = `
		INSERT INTO compatibility_edges (
			base_sku, partner_sku, partner_category, score, match_reason,
			incompatibility_reason, created_at
		) VALUES (
			:base_sku, :partner_sku, :partner_category, :score, :match_reason,
			:incompatibility_reason, :created_at
		)
		ON CONFLICT (base_sku, partner_sku) DO UPDATE SET
			partner_category = EXCLUDED.partner_category,
			score = EXCLUDED.score,
			match_reason = EXCLUDED.match_reason,
			incompatibility_reason = EXCLUDED.incompatibility_reason`

	now := time.Now()
	for i := range edges {
		if edges[i].CreatedAt.IsZero() {
			edges[i].CreatedAt = now
		}
	}

	if _, err := tx.NamedExecContext(ctx, query, edges); err != nil {
		if apperrors.Is(MapPostgreSQLError(err, edges[0].BaseSKU, edges[0].PartnerSKU), apperrors.ErrorTypeDuplicateEdge) {
			applog.Logger.Debug().Str("type", "sync").Msg("duplicate edge collision treated as idempotent success")
			return nil
		}
		return MapPostgreSQLError(err, edges[0].BaseSKU, edges[0].PartnerSKU)
	}
	return nil
}

func dedupeEdges(edges []entity.CompatibilityEdge) []entity.CompatibilityEdge {
	seen := make(map[string]bool, len(edges))
	out := make([]entity.CompatibilityEdge, 0, len(edges))
	for _, e := range edges {
		key := e.BaseSKU + "\x00" + e.PartnerSKU
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

func canonicalize(skus []string) []string {
	out := make([]string, len(skus))
	for i, s := range skus {
		out[i] = entity.CanonicalSKU(s)
	}
	return out
}

func decodeAttributes(row *productRow) error {
	if len(row.AttributesJSON) == 0 {
		row.Product.Attributes = nil
		return nil
	}
	var attrs map[string]string
	if err := json.Unmarshal(row.AttributesJSON, &attrs); err != nil {
		return apperrors.NewTransientStorage("could not decode stored product attributes", err)
	}
	row.Product.Attributes = attrs
	return nil
}
