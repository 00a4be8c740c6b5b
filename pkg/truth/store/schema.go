package store

// Schema is the SQLite schema for the truth store. List-valued columns are
// stored as JSON documents; timestamps are RFC3339 text. The UNIQUE
// constraints back the duplicate-key checks the engine relies on.
const Schema = `
CREATE TABLE IF NOT EXISTS verticals (
    id           TEXT PRIMARY KEY,
    key          TEXT NOT NULL UNIQUE,
    name         TEXT NOT NULL,
    region_scope TEXT NOT NULL,
    active       INTEGER NOT NULL DEFAULT 1,
    created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sub_verticals (
    id                    TEXT PRIMARY KEY,
    vertical_id           TEXT NOT NULL REFERENCES verticals(id),
    key                   TEXT NOT NULL,
    name                  TEXT NOT NULL,
    primary_entity_type   TEXT NOT NULL,
    related_entity_types  TEXT NOT NULL,
    active_mvt_version_id TEXT NOT NULL DEFAULT '',
    buyer_role            TEXT NOT NULL DEFAULT '',
    decision_owner        TEXT NOT NULL DEFAULT '',
    policy_source_text    TEXT NOT NULL DEFAULT '',
    policy_source_format  TEXT NOT NULL DEFAULT '',
    active                INTEGER NOT NULL DEFAULT 1,
    created_at            TEXT NOT NULL,
    UNIQUE (vertical_id, key)
);

CREATE TABLE IF NOT EXISTS mvt_versions (
    id              TEXT PRIMARY KEY,
    sub_vertical_id TEXT NOT NULL REFERENCES sub_verticals(id),
    version         INTEGER NOT NULL,
    buyer_role      TEXT NOT NULL,
    decision_owner  TEXT NOT NULL,
    signals         TEXT NOT NULL,
    kill_rules      TEXT NOT NULL,
    scenarios       TEXT NOT NULL,
    valid           INTEGER NOT NULL,
    validated_at    TEXT NOT NULL,
    status          TEXT NOT NULL,
    created_at      TEXT NOT NULL,
    UNIQUE (sub_vertical_id, version)
);

CREATE INDEX IF NOT EXISTS idx_mvt_versions_sub_vertical
    ON mvt_versions(sub_vertical_id);

CREATE TABLE IF NOT EXISTS personas (
    id              TEXT PRIMARY KEY,
    sub_vertical_id TEXT NOT NULL REFERENCES sub_verticals(id),
    key             TEXT NOT NULL,
    name            TEXT NOT NULL,
    mission         TEXT NOT NULL,
    decision_lens   TEXT NOT NULL,
    scope           TEXT NOT NULL,
    region_code     TEXT NOT NULL DEFAULT '',
    active          INTEGER NOT NULL DEFAULT 1,
    created_at      TEXT NOT NULL,
    UNIQUE (sub_vertical_id, key)
);

CREATE TABLE IF NOT EXISTS persona_policies (
    id             TEXT PRIMARY KEY,
    persona_id     TEXT NOT NULL REFERENCES personas(id),
    policy_version INTEGER NOT NULL,
    status         TEXT NOT NULL,
    body           TEXT NOT NULL,
    activated_at   TEXT,
    created_at     TEXT NOT NULL,
    UNIQUE (persona_id, policy_version)
);

CREATE INDEX IF NOT EXISTS idx_persona_policies_persona
    ON persona_policies(persona_id);

CREATE TABLE IF NOT EXISTS policy_text_versions (
    id                 TEXT PRIMARY KEY,
    sub_vertical_id    TEXT NOT NULL REFERENCES sub_verticals(id),
    version            INTEGER NOT NULL,
    source_format      TEXT NOT NULL,
    source_text        TEXT NOT NULL,
    policy_hash        TEXT NOT NULL,
    ipr                TEXT,
    confidence         REAL NOT NULL DEFAULT 0,
    warnings           TEXT,
    compiler_version   TEXT NOT NULL,
    status             TEXT NOT NULL,
    runtime_binding    TEXT NOT NULL DEFAULT '',
    contract_validated INTEGER NOT NULL DEFAULT 0,
    approved_by        TEXT NOT NULL DEFAULT '',
    approved_at        TEXT,
    created_at         TEXT NOT NULL,
    UNIQUE (sub_vertical_id, version)
);

CREATE INDEX IF NOT EXISTS idx_policy_text_versions_sub_vertical
    ON policy_text_versions(sub_vertical_id);
`
