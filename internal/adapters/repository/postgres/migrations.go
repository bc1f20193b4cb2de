package postgres

// migrationUp creates the progress tables. Statements are idempotent so
// Migrate may run on every start.
const migrationUp = `
CREATE TABLE IF NOT EXISTS progress_sessions (
    session_id  TEXT PRIMARY KEY,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS session_progress (
    session_id  TEXT NOT NULL REFERENCES progress_sessions(session_id) ON DELETE CASCADE,
    course_code TEXT NOT NULL,
    status      TEXT NOT NULL CHECK (status IN ('NO_CURSADA', 'REGULAR', 'APROBADA')),
    grade       DOUBLE PRECISION CHECK (grade IS NULL OR (grade >= 0 AND grade <= 10)),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (session_id, course_code)
);

CREATE INDEX IF NOT EXISTS idx_session_progress_session ON session_progress(session_id);
`
