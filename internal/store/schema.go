package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS responses (
    cache_key            TEXT PRIMARY KEY,
    endpoint             TEXT NOT NULL,
    body                 BLOB NOT NULL,
    size_bytes           INTEGER NOT NULL,
    fetched_at_ns        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_responses_endpoint ON responses(endpoint);
CREATE INDEX IF NOT EXISTS idx_responses_fetched ON responses(fetched_at_ns);
`
