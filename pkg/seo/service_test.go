package seo

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/inkstonebooks/inkstone/pkg/migrations"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

const testIndexHTML = `<!doctype html><html><head><title>Inkstone</title></head><body><div id="app"></div></body></html>`

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	// a single connection so every query sees the same in-memory database
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	// foreign_keys is per-connection state that migrations cannot set
	_, err = db.Exec("PRAGMA foreign_keys=ON")
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func newTestService(t *testing.T, db *bun.DB) *Service {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(testIndexHTML), 0o644))
	return NewService(db, dir)
}

func TestServiceNovelPage(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	now := time.Now()
	user := &models.User{CreatedAt: now, UpdatedAt: now, Username: "scribbler", Email: "s@example.com", PasswordHash: "hash", Role: models.RoleAuthor}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)
	profile := &models.AuthorProfile{CreatedAt: now, UpdatedAt: now, UserID: user.ID, PenName: "Ming River"}
	_, err = db.NewInsert().Model(profile).Exec(ctx)
	require.NoError(t, err)

	novel := &models.Novel{
		CreatedAt: now, UpdatedAt: now,
		AuthorID: profile.ID,
		Title:    "Ascending the <Jade> Peak",
		Description: "<p>An outer disciple&nbsp;climbs.</p>",
		Status:   models.NovelStatusOngoing,
		Category: models.CategoryFantasy,
	}
	_, err = db.NewInsert().Model(novel).Exec(ctx)
	require.NoError(t, err)

	page, err := svc.NovelPage(ctx, novel.ID)
	require.NoError(t, err)

	assert.Contains(t, page, `og:title`)
	assert.Contains(t, page, "Ascending the &lt;Jade&gt; Peak")
	assert.Contains(t, page, "An outer disciple climbs.")
	assert.NotContains(t, page, "<p>An outer disciple")
	assert.Contains(t, page, `<div style="display:none"><h1>`)
}

func TestServiceNovelPage_MissingNovelUntouched(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	page, err := svc.NovelPage(context.Background(), 9999)
	require.NoError(t, err)
	assert.Equal(t, testIndexHTML, page)
}

func TestServiceAuthorPage(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	now := time.Now()
	avatar := "/media/avatar.png"
	user := &models.User{CreatedAt: now, UpdatedAt: now, Username: "scribbler", Email: "s@example.com", PasswordHash: "hash", Role: models.RoleAuthor, AvatarPath: &avatar}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)
	profile := &models.AuthorProfile{CreatedAt: now, UpdatedAt: now, UserID: user.ID, PenName: "Ming River", Bio: "Writes slow-burn xianxia."}
	_, err = db.NewInsert().Model(profile).Exec(ctx)
	require.NoError(t, err)

	page, err := svc.AuthorPage(ctx, user.ID)
	require.NoError(t, err)

	assert.Contains(t, page, "Ming River")
	assert.Contains(t, page, "Writes slow-burn xianxia.")
	assert.Contains(t, page, "/media/avatar.png")
}
