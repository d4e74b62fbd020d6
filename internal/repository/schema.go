package repository

const schema = `
CREATE TABLE IF NOT EXISTS teams (
	id              TEXT PRIMARY KEY,
	abbreviation    TEXT NOT NULL,
	name            TEXT NOT NULL,
	city            TEXT NOT NULL,
	conference      TEXT NOT NULL,
	division        TEXT NOT NULL,
	primary_color   TEXT NOT NULL DEFAULT '',
	secondary_color TEXT NOT NULL DEFAULT '',
	placeholder     BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS games (
	id                       TEXT PRIMARY KEY,
	week                     INTEGER NOT NULL CHECK (week BETWEEN 1 AND 18),
	season                   INTEGER NOT NULL,
	home_team_id             TEXT NOT NULL REFERENCES teams(id),
	away_team_id             TEXT NOT NULL REFERENCES teams(id),
	kickoff                  TIMESTAMPTZ NOT NULL,
	home_score               INTEGER,
	away_score               INTEGER,
	status                   TEXT NOT NULL,
	is_completed             BOOLEAN NOT NULL DEFAULT FALSE,
	is_prime_time            BOOLEAN NOT NULL DEFAULT FALSE,
	is_divisional            BOOLEAN NOT NULL DEFAULT FALSE,
	has_playoff_implications BOOLEAN NOT NULL DEFAULT FALSE,
	synthetic                BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at               TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	CHECK (home_team_id <> away_team_id)
);

CREATE INDEX IF NOT EXISTS games_season_week_idx ON games (season, week);

CREATE TABLE IF NOT EXISTS team_stats (
	team_id        TEXT NOT NULL REFERENCES teams(id),
	season         INTEGER NOT NULL,
	wins           INTEGER NOT NULL CHECK (wins >= 0),
	losses         INTEGER NOT NULL CHECK (losses >= 0),
	points_for     INTEGER NOT NULL CHECK (points_for >= 0),
	points_against INTEGER NOT NULL CHECK (points_against >= 0),
	synthetic      BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (team_id, season)
);

CREATE TABLE IF NOT EXISTS odds (
	game_id        TEXT PRIMARY KEY REFERENCES games(id) ON DELETE CASCADE,
	home_spread    DOUBLE PRECISION,
	away_spread    DOUBLE PRECISION,
	spread_price   INTEGER,
	total_points   DOUBLE PRECISION,
	total_price    INTEGER,
	home_moneyline INTEGER,
	away_moneyline INTEGER,
	bookmaker      TEXT NOT NULL,
	synthetic      BOOLEAN NOT NULL DEFAULT FALSE,
	fetched_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS predictions (
	game_id              TEXT PRIMARY KEY REFERENCES games(id) ON DELETE CASCADE,
	predicted_winner     TEXT NOT NULL,
	confidence           INTEGER NOT NULL CHECK (confidence BETWEEN 50 AND 100),
	win_probability      DOUBLE PRECISION CHECK (win_probability BETWEEN 0.5 AND 1.0),
	analysis             TEXT NOT NULL,
	recommended_bet      TEXT NOT NULL,
	key_factors          TEXT[] NOT NULL DEFAULT '{}',
	predicted_spread     DOUBLE PRECISION,
	predicted_home_score INTEGER,
	predicted_away_score INTEGER,
	sentiment_score      DOUBLE PRECISION CHECK (sentiment_score BETWEEN -1 AND 1),
	method               TEXT NOT NULL,
	risk_factors         TEXT[] NOT NULL DEFAULT '{}',
	sentiment_impact     TEXT NOT NULL DEFAULT '',
	weather_impact       TEXT NOT NULL DEFAULT '',
	coaching_edge        TEXT NOT NULL DEFAULT '',
	value_play           TEXT NOT NULL DEFAULT '',
	confidence_factors   JSONB,
	created_at           TIMESTAMPTZ NOT NULL
);

ALTER TABLE predictions ADD COLUMN IF NOT EXISTS predicted_spread DOUBLE PRECISION;
ALTER TABLE predictions ADD COLUMN IF NOT EXISTS predicted_home_score INTEGER;
ALTER TABLE predictions ADD COLUMN IF NOT EXISTS predicted_away_score INTEGER;
ALTER TABLE predictions ADD COLUMN IF NOT EXISTS sentiment_score DOUBLE PRECISION;

CREATE TABLE IF NOT EXISTS advice (
	id             UUID PRIMARY KEY,
	game_id        TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	source         TEXT NOT NULL,
	content        VARCHAR(500) NOT NULL,
	recommendation TEXT,
	captured_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS advice_game_idx ON advice (game_id, captured_at);
`
