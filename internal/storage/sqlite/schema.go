package sqlite

// schemaSQL is idempotent; it runs on every startup.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS profiles (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	unique_id       TEXT NOT NULL UNIQUE,
	nickname        TEXT NOT NULL DEFAULT '',
	avatar_url      TEXT NOT NULL DEFAULT '',
	signature       TEXT NOT NULL DEFAULT '',
	following_count INTEGER NOT NULL DEFAULT 0,
	follower_count  INTEGER NOT NULL DEFAULT 0,
	heart_count     INTEGER NOT NULL DEFAULT 0,
	video_count     INTEGER NOT NULL DEFAULT 0,
	verified        INTEGER NOT NULL DEFAULT 0,
	private         INTEGER NOT NULL DEFAULT 0,
	sec_uid         TEXT NOT NULL DEFAULT '',
	user_id         TEXT NOT NULL DEFAULT '',
	last_scraped    TIMESTAMP NOT NULL,
	raw             TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS videos (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	profile_id    INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
	video_id      TEXT NOT NULL UNIQUE,
	description   TEXT NOT NULL DEFAULT '',
	create_time   TIMESTAMP,
	play_url      TEXT NOT NULL DEFAULT '',
	cover_url     TEXT NOT NULL DEFAULT '',
	like_count    INTEGER NOT NULL DEFAULT 0,
	comment_count INTEGER NOT NULL DEFAULT 0,
	share_count   INTEGER NOT NULL DEFAULT 0,
	view_count    INTEGER NOT NULL DEFAULT 0,
	duration      INTEGER NOT NULL DEFAULT 0,
	music_title   TEXT NOT NULL DEFAULT '',
	music_author  TEXT NOT NULL DEFAULT '',
	music_url     TEXT NOT NULL DEFAULT '',
	hashtags      TEXT NOT NULL DEFAULT '[]',
	mentions      TEXT NOT NULL DEFAULT '[]',
	last_scraped  TIMESTAMP NOT NULL,
	raw           TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_videos_profile_id ON videos(profile_id);
CREATE INDEX IF NOT EXISTS idx_videos_create_time ON videos(create_time);
CREATE INDEX IF NOT EXISTS idx_profiles_last_scraped ON profiles(last_scraped);
`
