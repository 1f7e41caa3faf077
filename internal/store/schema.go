package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS batches (
    batch_id               TEXT PRIMARY KEY,
    created_at             TEXT NOT NULL,
    run_count              INTEGER NOT NULL,
    mode                   TEXT NOT NULL,
    bankrupt_count         INTEGER NOT NULL,
    bankruptcy_probability REAL NOT NULL,
    average_bankruptcy_age REAL,
    terminal_net_worth     TEXT NOT NULL,
    p10                    TEXT,
    p25                    TEXT,
    p50                    TEXT,
    p75                    TEXT,
    p90                    TEXT,
    elapsed_ns             INTEGER,
    parameters             TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS batch_years (
    batch_id             TEXT NOT NULL REFERENCES batches(batch_id) ON DELETE CASCADE,
    year_index           INTEGER NOT NULL,
    age                  INTEGER NOT NULL,
    income               TEXT,
    taxable_income       TEXT,
    federal_tax          TEXT,
    state_tax            TEXT,
    expense              TEXT,
    leftover             TEXT,
    cashed_savings       TEXT,
    net_worth            TEXT,
    retired              INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (batch_id, year_index)
);

CREATE INDEX IF NOT EXISTS idx_batches_created ON batches(created_at);
`
