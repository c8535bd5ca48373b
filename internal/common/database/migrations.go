// internal/common/database/migrations.go
package database

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS psychometric_assessments (
		assessment_id   TEXT        NOT NULL,
		user_id         TEXT        NOT NULL,
		assessment_type TEXT        NOT NULL,
		questions_data  JSONB       NOT NULL,
		status          TEXT        NOT NULL DEFAULT 'pending',
		evaluation_id   TEXT,
		generated_at    TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (assessment_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_psychometric_assessments_user
		ON psychometric_assessments (user_id, generated_at DESC)`,

	`CREATE TABLE IF NOT EXISTS psychometric_evaluations (
		evaluation_id      TEXT PRIMARY KEY,
		user_id            TEXT,
		user_name          TEXT,
		assessment_id      TEXT        NOT NULL,
		assessment_type    TEXT        NOT NULL,
		overall_score      NUMERIC(5,2) NOT NULL,
		completion_rate    NUMERIC(5,1) NOT NULL,
		questions_answered INTEGER     NOT NULL,
		evaluation         JSONB       NOT NULL,
		evaluated_at       TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_psychometric_evaluations_user
		ON psychometric_evaluations (user_id, evaluated_at DESC)`,

	`CREATE TABLE IF NOT EXISTS psychometric_profiles (
		user_id      TEXT        NOT NULL,
		profile_type TEXT        NOT NULL,
		profile      JSONB       NOT NULL,
		history      JSONB       NOT NULL DEFAULT '[]'::jsonb,
		created_at   TIMESTAMPTZ NOT NULL,
		last_updated TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, profile_type)
	)`,

	`ALTER TABLE users ADD COLUMN IF NOT EXISTS psychometric_done BOOLEAN NOT NULL DEFAULT false`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS psychometric_score NUMERIC(5,2)`,
	`ALTER TABLE users ADD COLUMN IF NOT EXISTS psychometric_completed_at TIMESTAMPTZ`,
}
