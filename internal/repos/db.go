package repos

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// tsLayout is fixed-width so that text ordering matches time ordering.
const tsLayout = "2006-01-02T15:04:05.000000Z"

func now() string { return time.Now().UTC().Format(tsLayout) }

func open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite has a single writer, and every :memory: connection is its own database.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenDB opens the shop database, ensures the schema and seeds reference data.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := open(dsn)
	if err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("shop schema: %w", err)
	}
	if err := seedCatalog(db); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	if err := seedUsers(db); err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	return db, nil
}

// OpenSdetDB opens the SDET database. It shares no tables with the shop.
func OpenSdetDB(dsn string) (*sqlx.DB, error) {
	db, err := open(dsn)
	if err != nil {
		return nil, err
	}
	if err := ensureSdetSchema(db); err != nil {
		return nil, fmt.Errorf("sdet schema: %w", err)
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Catalog
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  image_url TEXT NOT NULL DEFAULT '',
  featured INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);

-- Pricelist: several rows per product over time, "active" by convention only
CREATE TABLE IF NOT EXISTS pricelist(
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  price INTEGER NOT NULL CHECK (price >= 0),
  currency TEXT NOT NULL DEFAULT 'USD',
  is_active INTEGER NOT NULL DEFAULT 1,
  effective_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pricelist_active ON pricelist(is_active, product_id);

-- Carts
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  subtotal INTEGER NOT NULL DEFAULT 0,
  discount INTEGER NOT NULL DEFAULT 0,
  total INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','checked_out')),
  linked_order_id TEXT NOT NULL DEFAULT '',
  version INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_carts_user ON carts(user_id);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id    TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  position   INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  name       TEXT NOT NULL,
  price      INTEGER NOT NULL,
  quantity   INTEGER NOT NULL CHECK (quantity >= 1),
  item_total INTEGER NOT NULL,
  PRIMARY KEY (cart_id, product_id)
);

-- Soft pointer to the current cart; deliberately no foreign key
CREATE TABLE IF NOT EXISTS user_state(
  user_id TEXT PRIMARY KEY,
  current_cart_id TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  cart_id TEXT NOT NULL,
  subtotal INTEGER NOT NULL,
  discount INTEGER NOT NULL,
  total INTEGER NOT NULL,
  payment_method TEXT NOT NULL CHECK (payment_method IN ('card','cash')),
  is_paid INTEGER NOT NULL DEFAULT 0,
  card_last4 TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL CHECK (status IN ('success','failed')),
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at);

CREATE TABLE IF NOT EXISTS order_items(
  order_id   TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  position   INTEGER NOT NULL,
  product_id TEXT NOT NULL,
  name       TEXT NOT NULL,
  price      INTEGER NOT NULL,
  quantity   INTEGER NOT NULL,
  PRIMARY KEY (order_id, position)
);

-- Identity
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));
`
	_, err := db.Exec(schema)
	return err
}

func ensureSdetSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sdet_user(
  uid TEXT PRIMARY KEY,
  email TEXT,
  display_name TEXT,
  name TEXT NOT NULL DEFAULT '',
  bugs_enabled INTEGER NOT NULL DEFAULT 5,
  bugs_found INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`
	_, err := db.Exec(schema)
	return err
}

// seedCatalog inserts demo categories, products and prices.
// Safe to run on every startup (idempotent).
func seedCatalog(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	slog.Info("seed: inserting demo categories/products/pricelist")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT INTO categories(id,name) VALUES
	  ('audio','Audio'),
	  ('peripherals','Peripherals'),
	  ('accessories','Accessories')`); err != nil {
		return err
	}

	if _, err := tx.Exec(`INSERT INTO products(id,category_id,name,description,image_url,featured) VALUES
	  ('headphones-01','audio','Studio Headphones','Closed-back monitoring headphones','headphones-01.jpg',1),
	  ('speaker-01','audio','Bookshelf Speaker','Passive two-way speaker','speaker-01.jpg',0),
	  ('keyboard-01','peripherals','Mechanical Keyboard','Tenkeyless, brown switches','keyboard-01.jpg',1),
	  ('mouse-01','peripherals','Wireless Mouse','Ergonomic, 2.4 GHz','mouse-01.jpg',0),
	  ('cable-01','accessories','USB-C Cable','1 m braided cable','cable-01.jpg',0),
	  ('stand-01','accessories','Laptop Stand','Aluminium, adjustable (not yet priced)','stand-01.jpg',0)`); err != nil {
		return err
	}

	ts := now()
	if _, err := tx.Exec(`INSERT INTO pricelist(id,product_id,price,currency,is_active,effective_at) VALUES
	  ('price-headphones-01','headphones-01',8999,'USD',1,?),
	  ('price-speaker-01','speaker-01',12950,'USD',1,?),
	  ('price-keyboard-01','keyboard-01',7450,'USD',1,?),
	  ('price-mouse-01','mouse-01',2999,'USD',1,?),
	  ('price-cable-01-old','cable-01',1299,'USD',0,?),
	  ('price-cable-01','cable-01',999,'USD',1,?)`, ts, ts, ts, ts, ts, ts); err != nil {
		return err
	}

	return tx.Commit()
}

// seedUsers ensures a demo shopper exists (idempotent).
func seedUsers(db *sqlx.DB) error {
	h, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		INSERT INTO users(id,email,name,password_hash)
		SELECT 'u-demo','demo@shop.test','Demo Shopper',?
		WHERE NOT EXISTS (SELECT 1 FROM users WHERE LOWER(email)='demo@shop.test')
	`, string(h))
	return err
}
