// Package postgres provides a PostgreSQL implementation of the fact store and
// the vector index. Embeddings use the pgvector extension and are ranked in
// the database with the cosine distance operator.
package postgres

// Schema creates the tables. Every statement is idempotent.
const Schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS facts (
    subject   TEXT      NOT NULL,
    predicate TEXT      NOT NULL,
    name      TEXT      NOT NULL DEFAULT '',
    value     TEXT      NOT NULL,
    position  BIGSERIAL NOT NULL,
    PRIMARY KEY (subject, predicate, name, value)
);

CREATE INDEX IF NOT EXISTS idx_facts_subject_position ON facts(subject, position);
CREATE INDEX IF NOT EXISTS idx_facts_lookup ON facts(predicate, name, value);

CREATE TABLE IF NOT EXISTS embeddings (
    product_id  TEXT        PRIMARY KEY,
    description TEXT        NOT NULL,
    embedding   vector      NOT NULL,
    dimensions  INTEGER     NOT NULL,
    metadata    JSONB       NOT NULL DEFAULT '{}',
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
