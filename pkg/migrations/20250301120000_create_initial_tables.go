package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				username TEXT NOT NULL,
				email TEXT NOT NULL,
				password_hash TEXT NOT NULL,
				role TEXT NOT NULL DEFAULT 'READER',
				avatar_path TEXT
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_users_username ON users (username COLLATE NOCASE)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_users_email ON users (email COLLATE NOCASE)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE author_profiles (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				pen_name TEXT NOT NULL DEFAULT '',
				bio TEXT NOT NULL DEFAULT ''
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_author_profiles_user_id ON author_profiles (user_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE novels (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				author_id INTEGER NOT NULL REFERENCES author_profiles (id) ON DELETE CASCADE,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				cover_path TEXT,
				status TEXT NOT NULL DEFAULT 'ONGOING',
				category TEXT NOT NULL DEFAULT 'OTHERS',
				views INTEGER NOT NULL DEFAULT 0
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_novels_author_id ON novels (author_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE volumes (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				novel_id INTEGER NOT NULL REFERENCES novels (id) ON DELETE CASCADE,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				cover_path TEXT,
				sort_order INTEGER NOT NULL
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_volumes_novel_id ON volumes (novel_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		// No two volumes of a novel may share an order value.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_volumes_novel_sort ON volumes (novel_id, sort_order)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE chapters (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				novel_id INTEGER NOT NULL REFERENCES novels (id) ON DELETE CASCADE,
				volume_id INTEGER REFERENCES volumes (id) ON DELETE SET NULL,
				title TEXT NOT NULL,
				content TEXT NOT NULL DEFAULT '',
				sort_order INTEGER NOT NULL,
				status TEXT NOT NULL DEFAULT 'DRAFT',
				published_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				views INTEGER NOT NULL DEFAULT 0
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_chapters_novel_id ON chapters (novel_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_chapters_volume_id ON chapters (volume_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		// Chapter order is one flat sequence per novel, across all volumes.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_chapters_novel_sort ON chapters (novel_id, sort_order)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`
			CREATE TABLE reading_progress (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				novel_id INTEGER NOT NULL REFERENCES novels (id) ON DELETE CASCADE,
				last_read_chapter_id INTEGER REFERENCES chapters (id) ON DELETE SET NULL,
				added_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
			)
`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_reading_progress_user_novel ON reading_progress (user_id, novel_id)`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`CREATE INDEX ix_reading_progress_novel_id ON reading_progress (novel_id)`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("DROP TABLE IF EXISTS reading_progress")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS chapters")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS volumes")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS novels")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS author_profiles")
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec("DROP TABLE IF EXISTS users")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
