package db

// SchemaSQL is the complete schema of the local record store.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Tests load it via
// GetSchemaSQL() instead of declaring their own tables.
//
// The layout mirrors the two Notion collections: members with their category
// tags, and one assignment record per week whose participants form the
// relation in both directions.
const SchemaSQL = `
-- Members (the member collection)
CREATE TABLE IF NOT EXISTS members (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	email TEXT,
	icon TEXT,
	exit_date TEXT,
	onboarding_status TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS member_categories (
	member_id TEXT NOT NULL,
	category TEXT NOT NULL,
	FOREIGN KEY (member_id) REFERENCES members(id) ON DELETE CASCADE,
	UNIQUE(member_id, category)
);

-- Assignments (the weekly crew records)
CREATE TABLE IF NOT EXISTS assignments (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	week INTEGER NOT NULL,
	week_start TEXT,
	template_id TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS assignment_participants (
	assignment_id TEXT NOT NULL,
	member_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	FOREIGN KEY (assignment_id) REFERENCES assignments(id) ON DELETE CASCADE,
	FOREIGN KEY (member_id) REFERENCES members(id),
	UNIQUE(assignment_id, member_id)
);

CREATE INDEX IF NOT EXISTS idx_assignments_week ON assignments(week);
CREATE INDEX IF NOT EXISTS idx_assignment_participants_member ON assignment_participants(member_id);
`

// GetSchemaSQL returns the authoritative schema.
func GetSchemaSQL() string {
	return SchemaSQL
}
