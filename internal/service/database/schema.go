package database

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS uploads (
		id          UUID PRIMARY KEY,
		guild       TEXT NOT NULL,
		label       TEXT NOT NULL DEFAULT '',
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS upload_players (
		upload_id      UUID NOT NULL REFERENCES uploads(id) ON DELETE CASCADE,
		position       INTEGER NOT NULL,
		family_name    TEXT NOT NULL DEFAULT '',
		character_name TEXT NOT NULL DEFAULT '',
		main_class     TEXT NOT NULL DEFAULT '',
		ap             DOUBLE PRECISION NOT NULL DEFAULT 0,
		aap            DOUBLE PRECISION NOT NULL DEFAULT 0,
		dp             DOUBLE PRECISION NOT NULL DEFAULT 0,
		gearscore      DOUBLE PRECISION NOT NULL DEFAULT 0,
		kills          INTEGER NOT NULL DEFAULT 0,
		deaths         INTEGER NOT NULL DEFAULT 0,
		eligible       BOOLEAN NOT NULL DEFAULT TRUE,
		PRIMARY KEY (upload_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS upload_stats (
		upload_id   UUID PRIMARY KEY REFERENCES uploads(id) ON DELETE CASCADE,
		stats       JSONB NOT NULL,
		computed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_uploads_guild ON uploads (guild, uploaded_at DESC)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS scraped_profiles (
		id         BIGINT AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(64) NOT NULL,
		source_url VARCHAR(2048) NOT NULL,
		url_hash   CHAR(64) NOT NULL,
		max_power  INT NULL,
		is_private TINYINT(1) NOT NULL DEFAULT 0,
		scraped_at DATETIME(3) NOT NULL,
		INDEX idx_scraped_profiles_url (url_hash, scraped_at)
	) CHARACTER SET utf8mb4`,
}
