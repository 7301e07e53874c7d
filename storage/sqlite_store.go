package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"supplynorm/catalog"
	"supplynorm/normalizer"
)

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var ErrSupplierOfferExists = errors.New("supplier offer already stored")

// OfferListing is a stored supplier offer with its import statistics.
type OfferListing struct {
	Offer           catalog.SupplierOffer
	Items           int
	RowsProcessed   int
	ProductsSkipped int
	ErrorCount      int
}

// SaveStats reports what one SaveResult call wrote.
type SaveStats struct {
	ProductsInserted int
	ProductsUpdated  int
	OfferItems       int
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	// Products are shared across offers; a non-empty identifier is unique.
	const schema = `
CREATE TABLE IF NOT EXISTS supplier_offers (
	id TEXT PRIMARY KEY,
	supplier_name TEXT NOT NULL,
	source_file TEXT NOT NULL,
	created_at TEXT NOT NULL,
	rows_processed INTEGER NOT NULL DEFAULT 0,
	products_skipped INTEGER NOT NULL DEFAULT 0,
	error_count INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	identifier TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	properties TEXT NOT NULL DEFAULT '{}',
	updated_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS products_identifier_unique
	ON products(identifier) WHERE identifier <> '';
CREATE TABLE IF NOT EXISTS offer_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	supplier_offer_id TEXT NOT NULL REFERENCES supplier_offers(id),
	product_id INTEGER NOT NULL REFERENCES products(id),
	row_index INTEGER NOT NULL,
	price TEXT,
	quantity INTEGER,
	properties TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS offer_items_supplier_offer ON offer_items(supplier_offer_id);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveResult stores one normalized file in a single transaction: the
// supplier offer, its products merged by identifier, and one offer item per
// record.
func (s *SQLiteStore) SaveResult(result *normalizer.Result) (SaveStats, error) {
	var stats SaveStats
	if result == nil || result.SupplierOffer == nil {
		return stats, fmt.Errorf("result has no supplier offer")
	}
	offer := result.SupplierOffer

	tx, err := s.db.Begin()
	if err != nil {
		return stats, fmt.Errorf("begin transaction: %w", err)
	}

	res, err := tx.Exec(`
INSERT OR IGNORE INTO supplier_offers (
	id,
	supplier_name,
	source_file,
	created_at,
	rows_processed,
	products_skipped,
	error_count
) VALUES (?, ?, ?, ?, ?, ?, ?);`,
		offer.ID,
		offer.SupplierName,
		offer.SourceFile,
		offer.CreatedAt.UTC().Format(time.RFC3339Nano),
		result.Statistics.RowsProcessed,
		result.Statistics.ProductsSkipped,
		result.Statistics.ErrorCount,
	)
	if err != nil {
		_ = tx.Rollback()
		return stats, fmt.Errorf("insert supplier offer: %w", err)
	}
	if inserted, err := res.RowsAffected(); err == nil && inserted == 0 {
		_ = tx.Rollback()
		return stats, fmt.Errorf("%w: %s", ErrSupplierOfferExists, offer.ID)
	}

	itemStmt, err := tx.Prepare(`
INSERT INTO offer_items (
	supplier_offer_id,
	product_id,
	row_index,
	price,
	quantity,
	properties
) VALUES (?, ?, ?, ?, ?, ?);`)
	if err != nil {
		_ = tx.Rollback()
		return stats, fmt.Errorf("prepare offer item statement: %w", err)
	}
	defer itemStmt.Close()

	updatedAt := s.now().UTC().Format(time.RFC3339Nano)
	for _, record := range result.Records {
		if record.Product == nil {
			continue
		}
		productID, inserted, err := upsertProduct(tx, record.Product, updatedAt)
		if err != nil {
			_ = tx.Rollback()
			return stats, fmt.Errorf("store product from row %d: %w", record.RowIndex, err)
		}
		if inserted {
			stats.ProductsInserted++
		} else {
			stats.ProductsUpdated++
		}

		var (
			price      sql.NullString
			quantity   sql.NullInt64
			properties = "{}"
		)
		if record.Offer != nil {
			if record.Offer.Price != nil {
				price = sql.NullString{String: record.Offer.Price.String(), Valid: true}
			}
			if record.Offer.Quantity != nil {
				quantity = sql.NullInt64{Int64: *record.Offer.Quantity, Valid: true}
			}
			properties, err = encodeProperties(record.Offer.Properties)
			if err != nil {
				_ = tx.Rollback()
				return stats, err
			}
		}

		if _, err := itemStmt.Exec(offer.ID, productID, record.RowIndex, price, quantity, properties); err != nil {
			_ = tx.Rollback()
			return stats, fmt.Errorf("insert offer item for row %d: %w", record.RowIndex, err)
		}
		stats.OfferItems++
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit transaction: %w", err)
	}
	return stats, nil
}

// upsertProduct inserts a product or merges it into the stored product with
// the same identifier. Non-empty incoming fields win; properties are merged.
func upsertProduct(tx *sql.Tx, product *catalog.Product, updatedAt string) (int64, bool, error) {
	identifier := strings.TrimSpace(product.Identifier)

	if identifier != "" {
		var (
			id          int64
			name        string
			description string
			rawProps    string
		)
		err := tx.QueryRow(
			`SELECT id, name, description, properties FROM products WHERE identifier = ?;`,
			identifier,
		).Scan(&id, &name, &description, &rawProps)
		switch {
		case err == nil:
			merged, err := decodeProperties(rawProps)
			if err != nil {
				return 0, false, err
			}
			merged.Merge(product.Properties)
			encoded, err := encodeProperties(merged)
			if err != nil {
				return 0, false, err
			}
			if _, err := tx.Exec(
				`UPDATE products SET name = ?, description = ?, properties = ?, updated_at = ? WHERE id = ?;`,
				firstNonEmpty(product.Name, name),
				firstNonEmpty(product.Description, description),
				encoded,
				updatedAt,
				id,
			); err != nil {
				return 0, false, fmt.Errorf("update product %s: %w", identifier, err)
			}
			return id, false, nil
		case !errors.Is(err, sql.ErrNoRows):
			return 0, false, fmt.Errorf("query product %s: %w", identifier, err)
		}
	}

	encoded, err := encodeProperties(product.Properties)
	if err != nil {
		return 0, false, err
	}
	res, err := tx.Exec(
		`INSERT INTO products (identifier, name, description, properties, updated_at) VALUES (?, ?, ?, ?, ?);`,
		identifier,
		product.Name,
		product.Description,
		encoded,
		updatedAt,
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("read inserted product id: %w", err)
	}
	return id, true, nil
}

// GetSupplierOffer returns one stored supplier offer by ID.
func (s *SQLiteStore) GetSupplierOffer(id string) (catalog.SupplierOffer, bool, error) {
	var (
		offer      catalog.SupplierOffer
		createdRaw string
	)
	err := s.db.QueryRow(
		`SELECT id, supplier_name, source_file, created_at FROM supplier_offers WHERE id = ?;`,
		strings.TrimSpace(id),
	).Scan(&offer.ID, &offer.SupplierName, &offer.SourceFile, &createdRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.SupplierOffer{}, false, nil
		}
		return catalog.SupplierOffer{}, false, fmt.Errorf("query supplier offer %s: %w", id, err)
	}

	offer.CreatedAt, err = time.Parse(time.RFC3339Nano, createdRaw)
	if err != nil {
		return catalog.SupplierOffer{}, false, fmt.Errorf("parse created_at %q: %w", createdRaw, err)
	}
	return offer, true, nil
}

func (s *SQLiteStore) ListSupplierOffers() ([]OfferListing, error) {
	const query = `
SELECT
	o.id,
	o.supplier_name,
	o.source_file,
	o.created_at,
	o.rows_processed,
	o.products_skipped,
	o.error_count,
	COUNT(i.id)
FROM supplier_offers o
LEFT JOIN offer_items i ON i.supplier_offer_id = o.id
GROUP BY o.id
ORDER BY o.created_at, o.id;
`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query supplier offers: %w", err)
	}
	defer rows.Close()

	listings := make([]OfferListing, 0, 16)
	for rows.Next() {
		var (
			listing    OfferListing
			createdRaw string
		)
		if err := rows.Scan(
			&listing.Offer.ID,
			&listing.Offer.SupplierName,
			&listing.Offer.SourceFile,
			&createdRaw,
			&listing.RowsProcessed,
			&listing.ProductsSkipped,
			&listing.ErrorCount,
			&listing.Items,
		); err != nil {
			return nil, fmt.Errorf("scan supplier offer: %w", err)
		}
		listing.Offer.CreatedAt, err = time.Parse(time.RFC3339Nano, createdRaw)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdRaw, err)
		}
		listings = append(listings, listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate supplier offers: %w", err)
	}
	return listings, nil
}

// ListRecords returns the records of one supplier offer in row order. An
// empty offer ID lists the records of every offer.
func (s *SQLiteStore) ListRecords(supplierOfferID string) ([]catalog.Record, error) {
	query := `
SELECT
	i.row_index,
	i.price,
	i.quantity,
	i.properties,
	p.identifier,
	p.name,
	p.description,
	p.properties
FROM offer_items i
JOIN products p ON p.id = i.product_id
`
	args := []any{}
	if id := strings.TrimSpace(supplierOfferID); id != "" {
		query += "WHERE i.supplier_offer_id = ?\n"
		args = append(args, id)
	}
	query += "ORDER BY i.supplier_offer_id, i.row_index, i.id;"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := make([]catalog.Record, 0, 256)
	for rows.Next() {
		var (
			record       catalog.Record
			product      = catalog.NewProduct()
			price        sql.NullString
			quantity     sql.NullInt64
			offerProps   string
			productProps string
		)
		if err := rows.Scan(
			&record.RowIndex,
			&price,
			&quantity,
			&offerProps,
			&product.Identifier,
			&product.Name,
			&product.Description,
			&productProps,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		product.Properties, err = decodeProperties(productProps)
		if err != nil {
			return nil, err
		}
		record.Product = product

		offerProperties, err := decodeProperties(offerProps)
		if err != nil {
			return nil, err
		}
		if price.Valid || quantity.Valid || offerProperties.Len() > 0 {
			item := &catalog.OfferLineItem{Properties: offerProperties}
			if price.Valid {
				parsed, err := decimal.NewFromString(price.String)
				if err != nil {
					return nil, fmt.Errorf("parse price %q: %w", price.String, err)
				}
				item.Price = &parsed
			}
			if quantity.Valid {
				value := quantity.Int64
				item.Quantity = &value
			}
			record.Offer = item
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// DeleteSupplierOffer removes one supplier offer and its offer items.
// Products stay in the catalog.
func (s *SQLiteStore) DeleteSupplierOffer(id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, fmt.Errorf("supplier offer id must not be empty")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM offer_items WHERE supplier_offer_id = ?;`, id); err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("delete offer items of %s: %w", id, err)
	}
	res, err := tx.Exec(`DELETE FROM supplier_offers WHERE id = ?;`, id)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("delete supplier offer %s: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("read deleted row count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete transaction: %w", err)
	}
	return rowsAffected > 0, nil
}

// DeleteAll empties every table and returns the number of deleted supplier
// offers.
func (s *SQLiteStore) DeleteAll() (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM offer_items;`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete offer items: %w", err)
	}
	res, err := tx.Exec(`DELETE FROM supplier_offers;`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete supplier offers: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM products;`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete products: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("read deleted row count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit delete transaction: %w", err)
	}
	return rows, nil
}

// CountProducts returns the number of catalog products.
func (s *SQLiteStore) CountProducts() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM products;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

// encodeProperties stores values in their text form; typed values do not
// survive a round trip.
func encodeProperties(props catalog.Properties) (string, error) {
	flat := make(map[string]string, props.Len())
	for _, key := range props.Keys() {
		value, _ := props.Get(key)
		if value == nil {
			continue
		}
		flat[key] = catalog.FormatValue(value)
	}
	encoded, err := json.Marshal(flat)
	if err != nil {
		return "", fmt.Errorf("encode properties: %w", err)
	}
	return string(encoded), nil
}

func decodeProperties(raw string) (catalog.Properties, error) {
	props := catalog.NewProperties()
	if strings.TrimSpace(raw) == "" {
		return props, nil
	}
	var flat map[string]string
	if err := json.Unmarshal([]byte(raw), &flat); err != nil {
		return props, fmt.Errorf("decode properties: %w", err)
	}
	for key, value := range flat {
		props.Set(key, value)
	}
	return props, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
