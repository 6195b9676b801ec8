package repos

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// OpenDB opens the ledger store. sqlite is the default and self-provisions
// its schema; mysql deployments are expected to be provisioned externally
// (see schema below for the reference DDL).
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	switch driver {
	case "sqlite":
		// Single writer: serialize every transaction on one connection so
		// concurrent placements queue instead of surfacing SQLITE_BUSY.
		// Also required for :memory: DSNs, where each pooled connection
		// would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	case "mysql":
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		if err := ensureSchema(db); err != nil {
			return nil, err
		}
		if err := seedIfEmpty(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// IsTransient reports whether a store error is a serialization/lock conflict
// worth retrying, as opposed to a business failure or a dead connection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || // sqlite
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "deadlock found") || // mysql 1213
		strings.Contains(msg, "lock wait timeout") // mysql 1205
}

// IsDuplicateKey reports a unique/primary key violation. Services treat it
// as a conflict when two writers race to create the same keyed row.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate entry") // mysql 1062
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS cards(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  game TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_cards_name ON cards(LOWER(name));

CREATE TABLE IF NOT EXISTS card_sets(
  id TEXT PRIMARY KEY,
  card_id TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
  set_code TEXT NOT NULL,
  number TEXT NOT NULL,
  rarity TEXT NOT NULL,
  edition TEXT NOT NULL DEFAULT 'UNLIMITED',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(card_id, set_code, number, edition)
);
CREATE INDEX IF NOT EXISTS idx_card_sets_card ON card_sets(card_id);

CREATE TABLE IF NOT EXISTS prices(
  id TEXT PRIMARY KEY,
  card_set_id TEXT NOT NULL REFERENCES card_sets(id) ON DELETE CASCADE,
  market TEXT NOT NULL,
  amount NUMERIC NOT NULL CHECK (amount >= 0),
  recorded_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_prices_card_set ON prices(card_set_id, recorded_at);

CREATE TABLE IF NOT EXISTS collections(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_collections_user ON collections(user_id);

CREATE TABLE IF NOT EXISTS collection_items(
  collection_id TEXT NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
  card_set_id TEXT NOT NULL REFERENCES card_sets(id) ON DELETE RESTRICT,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  condition TEXT NOT NULL DEFAULT 'NEAR_MINT',
  purchase_price NUMERIC,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT,
  PRIMARY KEY(collection_id, card_set_id)
);

CREATE TABLE IF NOT EXISTS decks(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  format TEXT NOT NULL DEFAULT 'STANDARD',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_decks_user ON decks(user_id);

CREATE TABLE IF NOT EXISTS deck_slots(
  deck_id TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
  card_set_id TEXT NOT NULL REFERENCES card_sets(id) ON DELETE RESTRICT,
  section TEXT NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT,
  PRIMARY KEY(deck_id, card_set_id, section)
);

CREATE TABLE IF NOT EXISTS listings(
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  card_set_id TEXT NOT NULL REFERENCES card_sets(id) ON DELETE RESTRICT,
  condition TEXT NOT NULL DEFAULT 'NEAR_MINT',
  price NUMERIC NOT NULL CHECK (price >= 0),
  quantity INTEGER NOT NULL CHECK (quantity >= 0),
  original_quantity INTEGER NOT NULL CHECK (original_quantity >= 1),
  status TEXT NOT NULL DEFAULT 'ACTIVE' CHECK (status IN ('ACTIVE','SOLD_OUT','CANCELLED')),
  version INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_listings_card_set ON listings(card_set_id, status);
CREATE INDEX IF NOT EXISTS idx_listings_seller ON listings(seller_id);

CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL REFERENCES users(id),
  listing_id TEXT NOT NULL REFERENCES listings(id),
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  total NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING','COMPLETED','CANCELLED','REFUNDED')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_orders_listing ON orders(listing_id);
CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id);
`
	_, err := db.Exec(schema)
	return err
}

// seedIfEmpty loads a demo catalog, two traders, and a couple of active
// listings so a fresh checkout is browsable immediately.
func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM cards`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo cards/printings/users/listings")

	hash := func(raw string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(raw), 12)
		if err != nil {
			return ""
		}
		return string(h)
	}
	aliceHash := hash("Passw0rd!")
	bobHash := hash("Passw0rd!")
	if aliceHash == "" || bobHash == "" {
		return errors.New("seed: bcrypt failure")
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO users(id,email,name,password_hash) VALUES
	  ('u-alice','alice@cardbazaar.test','Alice',?),
	  ('u-bob','bob@cardbazaar.test','Bob',?)`, aliceHash, bobHash)

	tx.MustExec(`INSERT INTO cards(id,name,game) VALUES
	  ('card-bolt','Lightning Bolt','MTG'),
	  ('card-charizard','Charizard','POKEMON'),
	  ('card-bluem','Blue-Eyes White Dragon','YUGIOH')`)

	tx.MustExec(`INSERT INTO card_sets(id,card_id,set_code,number,rarity,edition) VALUES
	  ('cs-bolt-lea','card-bolt','LEA','161','COMMON','FIRST'),
	  ('cs-bolt-m10','card-bolt','M10','146','COMMON','UNLIMITED'),
	  ('cs-bolt-sta','card-bolt','STA','42','RARE','UNLIMITED'),
	  ('cs-char-base','card-charizard','BASE','4','HOLO_RARE','FIRST'),
	  ('cs-bluem-lob','card-bluem','LOB','001','ULTRA_RARE','FIRST')`)

	tx.MustExec(`INSERT INTO prices(id,card_set_id,market,amount) VALUES
	  ('pr-1','cs-bolt-lea','TCGPLAYER',349.99),
	  ('pr-2','cs-bolt-m10','TCGPLAYER',2.49),
	  ('pr-3','cs-char-base','CARDMARKET',420.00),
	  ('pr-4','cs-bluem-lob','TCGPLAYER',89.50)`)

	tx.MustExec(`INSERT INTO collections(id,user_id,name) VALUES
	  ('col-alice','u-alice','Alice Binder'),
	  ('col-bob','u-bob','Bob Box')`)

	tx.MustExec(`INSERT INTO collection_items(collection_id,card_set_id,quantity,condition) VALUES
	  ('col-alice','cs-bolt-m10',8,'NEAR_MINT'),
	  ('col-bob','cs-char-base',1,'EXCELLENT')`)

	tx.MustExec(`INSERT INTO decks(id,user_id,name,format) VALUES
	  ('deck-alice','u-alice','Mono Red','STANDARD')`)

	tx.MustExec(`INSERT INTO listings(id,seller_id,card_set_id,condition,price,quantity,original_quantity) VALUES
	  ('lst-bolt','u-alice','cs-bolt-m10','NEAR_MINT',2.25,4,4),
	  ('lst-char','u-bob','cs-char-base','EXCELLENT',399.00,1,1)`)

	return tx.Commit()
}
