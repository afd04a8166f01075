package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'user')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- ID allocation. Bottle IDs start at 1, cellar IDs at 10001; the two
-- counters are independent and never reset, so the spaces cannot
-- collide and burned IDs are never reused.
CREATE TABLE IF NOT EXISTS counters (
    kind TEXT PRIMARY KEY,
    next INTEGER NOT NULL
);
INSERT OR IGNORE INTO counters (kind, next) VALUES ('bottle', 1);
INSERT OR IGNORE INTO counters (kind, next) VALUES ('cellar', 10001);

CREATE TABLE IF NOT EXISTS bottles (
    id              INTEGER PRIMARY KEY,
    domain          TEXT NOT NULL,
    vintage         INTEGER NOT NULL,
    format          TEXT,
    label_condition TEXT NOT NULL CHECK (label_condition IN ('poor', 'medium', 'excellent')),
    cork_condition  TEXT NOT NULL CHECK (cork_condition IN ('poor', 'medium', 'excellent')),
    fill_level      TEXT,
    photo_uri       TEXT,
    photo           BLOB,
    photo_mime      TEXT,
    max_value       INTEGER NOT NULL CHECK (max_value >= 0),
    optimal_age     INTEGER NOT NULL CHECK (optimal_age > 0),
    minted_year     INTEGER NOT NULL,
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS cellars (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    owner_address TEXT NOT NULL,
    location      TEXT,
    reputation    INTEGER NOT NULL DEFAULT 0 CHECK (reputation >= 0),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Ordered containment list. Position preserves insertion order; there
-- is deliberately no uniqueness on bottle_id (the list is a historical
-- record, not current custody).
CREATE TABLE IF NOT EXISTS cellar_bottles (
    cellar_id INTEGER NOT NULL REFERENCES cellars(id),
    position  INTEGER NOT NULL,
    bottle_id INTEGER NOT NULL,
    PRIMARY KEY (cellar_id, position)
);

-- Authoritative ownership ledger for both bottles and cellars.
-- Retired rows keep their asset_id forever so IDs cannot be re-minted.
CREATE TABLE IF NOT EXISTS ledger (
    asset_id INTEGER PRIMARY KEY,
    owner    TEXT NOT NULL,
    retired  INTEGER NOT NULL DEFAULT 0
);

-- Swap-bookkeeping owner index, separate from the ledger.
CREATE TABLE IF NOT EXISTS holdings (
    bottle_id INTEGER PRIMARY KEY,
    owner     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_holdings_owner ON holdings(owner);

-- Registered Ed25519 public keys for off-band swap authorization.
CREATE TABLE IF NOT EXISTS signers (
    address    TEXT PRIMARY KEY,
    public_key BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS token_balances (
    token   TEXT NOT NULL,
    address TEXT NOT NULL,
    amount  INTEGER NOT NULL CHECK (amount >= 0),
    PRIMARY KEY (token, address)
);

CREATE TABLE IF NOT EXISTS token_allowances (
    token   TEXT NOT NULL,
    owner   TEXT NOT NULL,
    spender TEXT NOT NULL,
    amount  INTEGER NOT NULL CHECK (amount >= 0),
    PRIMARY KEY (token, owner, spender)
);

-- Versioned sale configuration; the latest row is the active one.
CREATE TABLE IF NOT EXISTS sale_config (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    token      TEXT NOT NULL,
    price      INTEGER NOT NULL CHECK (price >= 0),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS events (
    id         TEXT PRIMARY KEY,
    kind       TEXT NOT NULL,
    payload    TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
