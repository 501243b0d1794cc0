package postgres

// Enum columns store the integer wire codes.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS recovery_request (
		id               UUID PRIMARY KEY,
		date_found       TIMESTAMPTZ NOT NULL,
		marker           TEXT NOT NULL DEFAULT '',
		finder           TEXT NOT NULL DEFAULT '',
		bodies_found     INTEGER NOT NULL DEFAULT 0 CHECK (bodies_found BETWEEN 0 AND 99999),
		bodies_recovered INTEGER NOT NULL DEFAULT 0 CHECK (bodies_recovered >= 0 AND bodies_recovered <= bodies_found),
		description      TEXT NOT NULL DEFAULT '',
		location         TEXT NOT NULL,
		status           SMALLINT NOT NULL DEFAULT 1,
		assigned_to      TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS recovery_request_listing_idx ON recovery_request (date_found DESC, id DESC)`,

	`CREATE TABLE IF NOT EXISTS morgue (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL CHECK (name <> ''),
		description TEXT NOT NULL DEFAULT '',
		location    TEXT NOT NULL,
		retired_at  TIMESTAMPTZ,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS morgue_live_name_idx ON morgue (name) WHERE retired_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS body (
		id                   UUID PRIMARY KEY,
		label                TEXT NOT NULL CHECK (label <> ''),
		morgue_id            UUID REFERENCES morgue (id) ON DELETE RESTRICT,
		recovery_request_id  UUID REFERENCES recovery_request (id) ON DELETE RESTRICT,
		date_of_recovery     TIMESTAMPTZ NOT NULL,
		recovery_details     TEXT NOT NULL DEFAULT '',
		apparent_gender      SMALLINT NOT NULL DEFAULT 1,
		apparent_age_group   SMALLINT NOT NULL DEFAULT 1,
		place_of_recovery    TEXT NOT NULL,
		incomplete           BOOLEAN NOT NULL DEFAULT FALSE,
		major_outward_damage BOOLEAN NOT NULL DEFAULT FALSE,
		burned_or_charred    BOOLEAN NOT NULL DEFAULT FALSE,
		decomposed           BOOLEAN NOT NULL DEFAULT FALSE,
		claim_count          INTEGER NOT NULL DEFAULT 0,
		created_at           TIMESTAMPTZ NOT NULL,
		updated_at           TIMESTAMPTZ NOT NULL,
		CONSTRAINT body_label_key UNIQUE (label)
	)`,
	`CREATE INDEX IF NOT EXISTS body_morgue_idx ON body (morgue_id)`,
	`CREATE INDEX IF NOT EXISTS body_recovery_request_idx ON body (recovery_request_id)`,

	`CREATE TABLE IF NOT EXISTS checklist (
		body_id          UUID PRIMARY KEY REFERENCES body (id) ON DELETE CASCADE,
		personal_effects SMALLINT NOT NULL DEFAULT 1,
		body_radiology   SMALLINT NOT NULL DEFAULT 1,
		fingerprints     SMALLINT NOT NULL DEFAULT 1,
		anthropology     SMALLINT NOT NULL DEFAULT 1,
		pathology        SMALLINT NOT NULL DEFAULT 1,
		embalming        SMALLINT NOT NULL DEFAULT 1,
		dna              SMALLINT NOT NULL DEFAULT 1,
		dental           SMALLINT NOT NULL DEFAULT 1,
		updated_at       TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS personal_effects (
		body_id    UUID PRIMARY KEY REFERENCES body (id) ON DELETE CASCADE,
		clothing   TEXT NOT NULL DEFAULT '',
		jewellery  TEXT NOT NULL DEFAULT '',
		footwear   TEXT NOT NULL DEFAULT '',
		watch      TEXT NOT NULL DEFAULT '',
		other      TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS identification_claim (
		id               UUID PRIMARY KEY,
		body_id          UUID NOT NULL REFERENCES body (id) ON DELETE RESTRICT,
		claimed_identity TEXT NOT NULL,
		identified_by    TEXT NOT NULL,
		method           SMALLINT NOT NULL,
		status           SMALLINT NOT NULL DEFAULT 1,
		comment          TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL,
		confirmed_at     TIMESTAMPTZ,
		revoked_at       TIMESTAMPTZ,
		revoked_by       TEXT NOT NULL DEFAULT '',
		revoke_reason    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS claim_live_identity_idx ON identification_claim (body_id, claimed_identity) WHERE revoked_at IS NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS claim_single_confirmed_idx ON identification_claim (body_id) WHERE status = 3`,
	`CREATE INDEX IF NOT EXISTS claim_identity_idx ON identification_claim (claimed_identity, created_at)`,

	`CREATE TABLE IF NOT EXISTS presence_event (
		seq         BIGSERIAL PRIMARY KEY,
		entity_id   TEXT NOT NULL,
		location    TEXT NOT NULL,
		at          TIMESTAMPTZ NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS presence_entity_idx ON presence_event (entity_id, at DESC, seq DESC)`,

	`CREATE TABLE IF NOT EXISTS outbox (
		seq            BIGSERIAL PRIMARY KEY,
		id             UUID NOT NULL UNIQUE,
		aggregate_type TEXT NOT NULL,
		aggregate_id   TEXT NOT NULL,
		event_type     TEXT NOT NULL,
		payload        JSONB NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		published_at   TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS outbox_unpublished_idx ON outbox (seq) WHERE published_at IS NULL`,
}
