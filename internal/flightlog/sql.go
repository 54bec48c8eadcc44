package flightlog

const initSchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    start_time DATETIME NOT NULL,
    vehicle    TEXT     NOT NULL,
    config     TEXT
);

CREATE TABLE IF NOT EXISTS transitions (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER  NOT NULL REFERENCES sessions (id),
    timestamp  DATETIME NOT NULL,
    phase_from TEXT     NOT NULL,
    phase_to   TEXT     NOT NULL,
    event      TEXT     NOT NULL,
    error      TEXT
);

CREATE TABLE IF NOT EXISTS targets (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER  NOT NULL REFERENCES sessions (id),
    timestamp  DATETIME NOT NULL,
    latitude   REAL     NOT NULL,
    longitude  REAL     NOT NULL,
    altitude   REAL     NOT NULL
);`

// Indexes are created on close, once the write load is over.
const initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_transitions_session ON transitions (session_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_targets_session ON targets (session_id, timestamp);`

const (
	insertSessionSQL = `
INSERT INTO sessions (start_time, vehicle, config)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	selectSessionSQL = `
SELECT id, start_time, vehicle, config
FROM sessions
WHERE id = ?`

	selectSessionsSQL = `
SELECT id, start_time, vehicle, config
FROM sessions
ORDER BY start_time`

	insertTransitionSQL = `
INSERT INTO transitions (session_id, timestamp, phase_from, phase_to, event, error)
VALUES (?, ?, ?, ?, ?, ?)`

	selectTransitionsSQL = `
SELECT timestamp, phase_from, phase_to, event, error
FROM transitions
WHERE session_id = ?
ORDER BY id`

	insertTargetSQL = `
INSERT INTO targets (session_id, timestamp, latitude, longitude, altitude)
VALUES `

	selectTrackSQL = `
SELECT timestamp, latitude, longitude, altitude
FROM targets
WHERE session_id = ?`
)
