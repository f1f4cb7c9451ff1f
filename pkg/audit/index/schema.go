package index

// SchemaVersion is the current index schema version.
const SchemaVersion = 1

// Schema creates the index tables.
const Schema = `
CREATE TABLE IF NOT EXISTS records (
    audit_id TEXT PRIMARY KEY,
    timestamp_ms INTEGER NOT NULL,
    event_type TEXT NOT NULL,
    level TEXT NOT NULL,
    category TEXT NOT NULL,
    chain_index INTEGER NOT NULL,
    hash TEXT NOT NULL,
    compliance_valid BOOLEAN NOT NULL,
    file TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_timestamp ON records(timestamp_ms);
CREATE INDEX IF NOT EXISTS idx_records_event_type ON records(event_type);
CREATE INDEX IF NOT EXISTS idx_records_level ON records(level);
CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);
`

// InsertSchemaVersion records the schema version.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the newest schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertRecord = `
INSERT INTO records (
    audit_id, timestamp_ms, event_type, level, category,
    chain_index, hash, compliance_valid, file
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectColumns = `audit_id, timestamp_ms, event_type, level, category, chain_index, hash, compliance_valid, file`
