package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"kettle-backoffice/internal/db"
)

// backoffice migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations from the migrations directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		ctx := context.Background()

		pool, err := db.NewPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		conn, err := acquireMigrationLock(ctx, pool)
		if err != nil {
			return err
		}
		defer conn.Release()

		if err := setupSchemaMigrations(ctx, pool); err != nil {
			return err
		}

		migrations, err := discoverMigrations()
		if err != nil {
			return err
		}
		for _, filename := range migrations {
			if err := applyMigration(ctx, pool, filename); err != nil {
				return err
			}
		}

		log.Println("[DONE] All migrations processed.")
		return nil
	},
}

func acquireMigrationLock(ctx context.Context, pool *pgxpool.Pool) (*pgxpool.Conn, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection for lock: %w", err)
	}

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock(5318008)").Scan(&locked); err != nil {
		conn.Release()
		return nil, fmt.Errorf("query advisory lock: %w", err)
	}
	if !locked {
		conn.Release()
		return nil, fmt.Errorf("another migrator is currently running")
	}
	return conn, nil
}

func setupSchemaMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func discoverMigrations() ([]string, error) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var filenames []string
	versions := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, err := extractVersion(entry.Name())
		if err != nil {
			return nil, err
		}
		if versions[version] {
			return nil, fmt.Errorf("duplicate migration version %s", version)
		}
		versions[version] = true
		filenames = append(filenames, entry.Name())
	}

	sort.Strings(filenames)
	return filenames, nil
}

func extractVersion(filename string) (string, error) {
	parts := strings.SplitN(filename, "_", 2)
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid migration filename %s, expected NNN_description.sql", filename)
	}
	return parts[0], nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, filename string) error {
	version, err := extractVersion(filename)
	if err != nil {
		return err
	}

	sqlBytes, err := os.ReadFile(filepath.Join("migrations", filename))
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filename, err)
	}
	hash := sha256.Sum256(sqlBytes)
	checksum := hex.EncodeToString(hash[:])

	var existing string
	err = pool.QueryRow(ctx,
		"SELECT checksum FROM schema_migrations WHERE version = $1", version,
	).Scan(&existing)
	switch {
	case err == nil:
		if existing != checksum {
			return fmt.Errorf("checksum mismatch for %s: recorded %s, file %s", filename, existing, checksum)
		}
		log.Printf("[SKIP] %s", filename)
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		// not applied yet
	default:
		return fmt.Errorf("query schema_migrations for %s: %w", filename, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for %s: %w", filename, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
		return fmt.Errorf("execute migration %s: %w", filename, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		version, filename, checksum,
	); err != nil {
		return fmt.Errorf("record migration %s: %w", filename, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", filename, err)
	}

	log.Printf("[APPLY] %s", filename)
	return nil
}

// backoffice verify-db
var verifyDBCmd = &cobra.Command{
	Use:   "verify-db",
	Short: "Check that every expected table exists and report row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		ctx := context.Background()

		pool, err := db.NewPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		tables := []string{
			"brands", "locations", "products", "suppliers",
			"stock_quantities", "stock_movements",
			"bundles", "bundle_products",
			"procurement_orders", "proc_order_items",
			"product_catalogues", "bundle_catalogues", "discount_codes",
			"users", "leave_quotas",
		}

		var missing []string
		for _, table := range tables {
			var regclass *string
			if err := pool.QueryRow(ctx, "SELECT to_regclass($1)::text", table).Scan(&regclass); err != nil {
				return fmt.Errorf("check table %s: %w", table, err)
			}
			if regclass == nil {
				missing = append(missing, table)
				continue
			}

			var count int64
			if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
				return fmt.Errorf("count rows in %s: %w", table, err)
			}
			log.Printf("[OK]   %-20s %6d rows", table, count)
		}

		if len(missing) > 0 {
			return fmt.Errorf("missing tables: %s (run migrate first)", strings.Join(missing, ", "))
		}
		log.Println("[DONE] Database schema verified.")
		return nil
	},
}

// backoffice seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo dataset: brands, products, warehouses, bundles, catalogue, discount codes and users",
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		ctx := context.Background()

		pool, err := db.NewPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		log.Println("Seeding brands and warehouses...")
		if _, err := tx.Exec(ctx, `
			INSERT INTO brands (name) VALUES
			  ('The Kettle Gourmet'),
			  ('Popcorn Maker')
			ON CONFLICT (name) DO NOTHING;

			INSERT INTO locations (name, address) VALUES
			  ('Punggol Warehouse', 'Blk 303B Punggol Central #05-792'),
			  ('Bishan Warehouse', 'Blk 117 Ang Mo Kio Ave 4 #08-467')
			ON CONFLICT (name) DO NOTHING;
		`); err != nil {
			return fmt.Errorf("seed brands and locations: %w", err)
		}

		log.Println("Seeding products...")
		if _, err := tx.Exec(ctx, `
			INSERT INTO products (sku, name, brand_id, qty_threshold)
			SELECT p.sku, p.name, b.id, 20
			FROM brands b
			CROSS JOIN (VALUES
			    ('SKU123', 'Nasi Lemak Popcorn'),
			    ('SKU124', 'Fish Head Curry Popcorn'),
			    ('SKU125', 'Salted Caramel Popcorn'),
			    ('SKU126', 'Chocolate Popcorn'),
			    ('SKU127', 'Pulut Hitam Popcorn')
			) AS p(sku, name)
			WHERE b.name = 'The Kettle Gourmet'
			ON CONFLICT (sku) DO UPDATE
			  SET name = EXCLUDED.name,
			      qty_threshold = EXCLUDED.qty_threshold;
		`); err != nil {
			return fmt.Errorf("seed products: %w", err)
		}

		log.Println("Seeding opening stock...")
		if _, err := tx.Exec(ctx, `
			INSERT INTO stock_quantities (product_sku, location_id, quantity)
			SELECT s.sku, l.id, s.qty
			FROM locations l
			JOIN (VALUES
			    ('SKU123', 'Punggol Warehouse', 20),
			    ('SKU124', 'Punggol Warehouse', 50),
			    ('SKU125', 'Punggol Warehouse', 50),
			    ('SKU126', 'Punggol Warehouse', 50),
			    ('SKU127', 'Punggol Warehouse', 50)
			) AS s(sku, loc, qty) ON s.loc = l.name
			ON CONFLICT (product_sku, location_id) DO NOTHING;
		`); err != nil {
			return fmt.Errorf("seed stock: %w", err)
		}

		log.Println("Seeding suppliers...")
		if _, err := tx.Exec(ctx, `
			INSERT INTO suppliers (email, name, address, currency) VALUES
			  ('tanwk@comp.nus.edu.sg', 'Wee Kek', 'Blk 117 Ang Mo Kio Ave 4 #08-467', 'SGD')
			ON CONFLICT (email) DO NOTHING;
		`); err != nil {
			return fmt.Errorf("seed suppliers: %w", err)
		}

		log.Println("Seeding bundles...")
		if _, err := tx.Exec(ctx, `
			INSERT INTO bundles (name, description) VALUES
			  ('Nasi Lemak Mega Bundle (8 x 65g)', '8 x Nasi Lemak Popcorn'),
			  ('Fish Head Curry Mega Bundle (8 x 65g)', '8 x Fish Head Curry Popcorn'),
			  ('Classic Flavours Mini Bundle (4 x 65g)', '4 x Classic Flavours Popcorn'),
			  ('Shiok Ah! Specialty Bundle (6 x 65g)', '6 x Specialty Popcorn')
			ON CONFLICT (name) DO NOTHING;

			INSERT INTO bundle_products (bundle_id, product_sku, quantity)
			SELECT b.id, v.sku, v.qty
			FROM (VALUES
			    ('Nasi Lemak Mega Bundle (8 x 65g)',      'SKU123', 8),
			    ('Fish Head Curry Mega Bundle (8 x 65g)', 'SKU124', 8),
			    ('Classic Flavours Mini Bundle (4 x 65g)', 'SKU125', 2),
			    ('Classic Flavours Mini Bundle (4 x 65g)', 'SKU126', 2),
			    ('Shiok Ah! Specialty Bundle (6 x 65g)',  'SKU124', 3),
			    ('Shiok Ah! Specialty Bundle (6 x 65g)',  'SKU127', 3)
			) AS v(bundle, sku, qty)
			JOIN bundles b ON b.name = v.bundle
			ON CONFLICT (bundle_id, product_sku) DO NOTHING;
		`); err != nil {
			return fmt.Errorf("seed bundles: %w", err)
		}

		log.Println("Seeding catalogue and discount codes...")
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_catalogues (product_sku, price, description)
			SELECT v.sku, v.price::numeric, v.descr
			FROM (VALUES
			    ('SKU123', '5.00', 'Our signature flavour. You won''t be able to tell the difference between this and the real thing!'),
			    ('SKU125', '5.00', 'Can''t go wrong with the classics. Sweet and salty at the same time.'),
			    ('SKU126', '5.00', 'Combining our favourite dessert with our favourite snack. Meet our take on Chocolate Popcorn!')
			) AS v(sku, price, descr)
			ON CONFLICT (product_sku) DO UPDATE SET price = EXCLUDED.price;

			INSERT INTO bundle_catalogues (bundle_id, price, description)
			SELECT b.id, v.price::numeric, v.descr
			FROM (VALUES
			    ('Nasi Lemak Mega Bundle (8 x 65g)', '34.99', 'For those that just can''t get enough of Nasi Lemak. Cheaper as a bundle!'),
			    ('Shiok Ah! Specialty Bundle (6 x 65g)', '27.99', 'For those who love specialty flavours. Cheaper when you buy a bundle!')
			) AS v(bundle, price, descr)
			JOIN bundles b ON b.name = v.bundle
			ON CONFLICT (bundle_id) DO UPDATE SET price = EXCLUDED.price;

			INSERT INTO discount_codes (code, type, amount, min_order_amount, start_date, end_date) VALUES
			  ('XMAS2020',  'FLAT_AMOUNT', 10, 20, '2022-09-10', '2022-12-10'),
			  ('10PERCENT', 'PERCENTAGE',  10, 20, '2022-09-10', '2022-12-10')
			ON CONFLICT (code) DO NOTHING;
		`); err != nil {
			return fmt.Errorf("seed catalogue: %w", err)
		}

		log.Println("Seeding a pending procurement order...")
		if _, err := tx.Exec(ctx, `
			WITH new_order AS (
			    INSERT INTO procurement_orders
			        (order_date, supplier_id, supplier_name, supplier_email, supplier_address,
			         location_id, location_name, currency, total_amount)
			    SELECT CURRENT_DATE, s.id, s.name, s.email, s.address,
			           l.id, l.name, s.currency, 320.00
			    FROM suppliers s, locations l
			    WHERE s.email = 'tanwk@comp.nus.edu.sg'
			      AND l.name = 'Punggol Warehouse'
			      AND NOT EXISTS (SELECT 1 FROM procurement_orders)
			    RETURNING id
			)
			INSERT INTO proc_order_items
			    (order_id, line_number, product_sku, product_name, quantity, rate, line_total)
			SELECT o.id, 1, p.sku, p.name, 20, 16.00, 320.00
			FROM new_order o, products p
			WHERE p.sku = 'SKU123';
		`); err != nil {
			return fmt.Errorf("seed procurement order: %w", err)
		}

		log.Println("Seeding users and leave quotas...")
		if _, err := tx.Exec(ctx, `
			INSERT INTO leave_quotas (tier, annual, childcare, compassionate, parental, sick, unpaid) VALUES
			  ('Tier 1', 10, 10, 10, 10, 10, 10),
			  ('Tier 2', 15, 15, 15, 15, 15, 15),
			  ('Tier 3', 20, 20, 20, 20, 20, 20)
			ON CONFLICT (tier) DO NOTHING;

			-- bcrypt of the demo password, cost 10
			INSERT INTO users (first_name, last_name, email, password, role, tier, is_verified) VALUES
			  ('Destinee', 'Ow',  'destineeow32@gmail.com',     '$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy', 'ADMIN',    'Tier 3', true),
			  ('Wee Kek',  'Tan', 'tanwk@comp.nus.edu.sg',      '$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy', 'ADMIN',    'Tier 2', false),
			  ('Kelly',    'Ng',  'ng.kelly.jl@gmail.com',      '$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy', 'ADMIN',    'Tier 1', true),
			  ('Wee Kek',  'Tan', 'tanwk+user@comp.nus.edu.sg', '$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy', 'FULLTIME', 'Tier 2', false),
			  ('Zi Kun',   'Teng', 'meleenoob971+b2b@gmail.com', '$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy', 'B2B',     'Tier 3', false)
			ON CONFLICT (email) DO NOTHING;
		`); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit seed: %w", err)
		}

		log.Println("Seed data loaded.")
		return nil
	},
}
