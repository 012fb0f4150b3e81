package sqlite

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS venues (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	type       TEXT NOT NULL,
	capacity   INTEGER NOT NULL CHECK (capacity > 0),
	features   TEXT NOT NULL DEFAULT '[]',
	location   TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS resources (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL UNIQUE,
	type               TEXT NOT NULL,
	total_capacity     INTEGER NOT NULL CHECK (total_capacity > 0),
	description        TEXT,
	maintenance_status TEXT NOT NULL DEFAULT 'Available',
	created_at         TEXT NOT NULL,
	updated_at         TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	id                    TEXT PRIMARY KEY,
	title                 TEXT NOT NULL,
	type                  TEXT NOT NULL,
	description           TEXT,
	start_at              TEXT NOT NULL,
	end_at                TEXT NOT NULL,
	venue_id              TEXT REFERENCES venues(id),
	venue_preference      TEXT NOT NULL,
	participant_count     INTEGER NOT NULL DEFAULT 0 CHECK (participant_count >= 0),
	mandatory_resources   TEXT NOT NULL DEFAULT '[]',
	optional_resources    TEXT NOT NULL DEFAULT '[]',
	status                TEXT NOT NULL,
	execution_state       TEXT NOT NULL,
	requester_role        TEXT NOT NULL,
	requester_id          TEXT NOT NULL,
	department            TEXT NOT NULL DEFAULT '',
	school                TEXT NOT NULL DEFAULT '',
	rejection_reason      TEXT,
	approval_chain        TEXT NOT NULL DEFAULT '[]',
	modification_requests TEXT NOT NULL DEFAULT '[]',
	is_modifiable         INTEGER NOT NULL DEFAULT 0,
	conflict_acknowledged INTEGER NOT NULL DEFAULT 0,
	marked_start_at       TEXT,
	marked_complete_at    TEXT,
	venue_released_at     TEXT,
	resources_released_at TEXT,
	post_event_summary    TEXT,
	actual_participants   INTEGER,
	created_at            TEXT NOT NULL,
	updated_at            TEXT NOT NULL,
	version               INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_events_venue ON events(venue_id);
CREATE INDEX IF NOT EXISTS idx_events_requester ON events(requester_id);
CREATE INDEX IF NOT EXISTS idx_events_status ON events(status);
`

// Migrate applies the schema. Statements are idempotent so startup can run
// it unconditionally.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
