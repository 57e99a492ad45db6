package db

import "database/sql"

// MigrateUp creates the schema. Every statement is idempotent so the
// migration can run on every startup.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS users (
    id                  SERIAL PRIMARY KEY,
    email               TEXT NOT NULL UNIQUE,
    password_hash       TEXT NOT NULL,
    email_frequency     VARCHAR(10) NOT NULL DEFAULT 'never',
    favorite_topics     TEXT[] NOT NULL DEFAULT '{}',
    last_digest_sent_at TIMESTAMPTZ,
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS collections (
    id         SERIAL PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS collection_articles (
    id            SERIAL PRIMARY KEY,
    collection_id INTEGER NOT NULL REFERENCES collections(id) ON DELETE CASCADE,
    title         TEXT NOT NULL,
    description   TEXT,
    url           TEXT NOT NULL,
    image_url     TEXT,
    published_at  TIMESTAMPTZ,
    source_name   TEXT,
    author        TEXT,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (url, collection_id)
)`); err != nil {
		return err
	}

	indexes := []string{
		// digest sweeps load users by cadence
		`CREATE INDEX IF NOT EXISTS idx_users_email_frequency ON users(email_frequency)`,
		// collection listing is always owner-scoped
		`CREATE INDEX IF NOT EXISTS idx_collections_user_id ON collections(user_id)`,
		// article lookups inside a collection, ordered by publication
		`CREATE INDEX IF NOT EXISTS idx_collection_articles_collection_id ON collection_articles(collection_id)`,
		`CREATE INDEX IF NOT EXISTS idx_collection_articles_published_at ON collection_articles(published_at DESC)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// Valid cadences only; enforced here as well as in the domain layer.
	// The DO block avoids an error when the constraint already exists.
	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_email_frequency'
    ) THEN
        ALTER TABLE users ADD CONSTRAINT chk_email_frequency
        CHECK (email_frequency IN ('daily', 'weekly', 'never'));
    END IF;
END $$;
`)

	return nil
}

// MigrateDown rolls back the database schema.
// Use with caution: this will delete all data in the affected tables.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS collection_articles CASCADE`,
		`DROP TABLE IF EXISTS collections CASCADE`,
		`DROP TABLE IF EXISTS users CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
