package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS exports (
    file_path            TEXT PRIMARY KEY,
    shape                TEXT NOT NULL,
    record_count         INTEGER NOT NULL,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    zone                 TEXT NOT NULL,
    parsed_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS records (
    file_path            TEXT NOT NULL REFERENCES exports(file_path) ON DELETE CASCADE,
    seq                  INTEGER NOT NULL,
    date                 TEXT,
    start_time           INTEGER,
    end_time             INTEGER,
    user_id              TEXT,
    user_email           TEXT,
    project_id           TEXT,
    api_key_id           TEXT,
    line_item            TEXT,
    amount_value         REAL,
    amount_currency      TEXT,
    PRIMARY KEY (file_path, seq)
);

CREATE INDEX IF NOT EXISTS idx_records_project ON records(project_id);
`
