package repository

// SchemaStatements holds the DDL for the two durable tables. Applied by
// scripts/migrate and by the test helper; every statement is idempotent.
var SchemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS rooms (
		code          VARCHAR(16) PRIMARY KEY,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_activity TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id         BIGSERIAL PRIMARY KEY,
		room_code  VARCHAR(16) NOT NULL REFERENCES rooms(code) ON DELETE CASCADE,
		type       TEXT NOT NULL,
		content    TEXT NOT NULL,
		metadata   JSONB,
		sender_id  TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_room_code_id ON messages (room_code, id)`,
	`CREATE INDEX IF NOT EXISTS idx_rooms_last_activity ON rooms (last_activity)`,
}
