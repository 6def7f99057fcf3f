package chapters

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/inkstonebooks/inkstone/pkg/errcodes"
	"github.com/inkstonebooks/inkstone/pkg/migrations"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

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

func createTestNovel(ctx context.Context, t *testing.T, db *bun.DB) *models.Novel {
	t.Helper()

	now := time.Now()
	user := &models.User{CreatedAt: now, UpdatedAt: now, Username: "scribbler", Email: "s@example.com", PasswordHash: "hash", Role: models.RoleAuthor}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	profile := &models.AuthorProfile{CreatedAt: now, UpdatedAt: now, UserID: user.ID, PenName: "scribbler"}
	_, err = db.NewInsert().Model(profile).Exec(ctx)
	require.NoError(t, err)

	novel := &models.Novel{CreatedAt: now, UpdatedAt: now, AuthorID: profile.ID, Title: "Novel", Status: models.NovelStatusOngoing, Category: models.CategoryOthers}
	_, err = db.NewInsert().Model(novel).Exec(ctx)
	require.NoError(t, err)
	return novel
}

func createTestVolume(ctx context.Context, t *testing.T, db *bun.DB, novelID, order int) *models.Volume {
	t.Helper()

	now := time.Now()
	volume := &models.Volume{CreatedAt: now, UpdatedAt: now, NovelID: novelID, Title: "Volume", SortOrder: order}
	_, err := db.NewInsert().Model(volume).Exec(ctx)
	require.NoError(t, err)
	return volume
}

func TestServiceCreate_FlatOrderAcrossVolumes(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	novel := createTestNovel(ctx, t, db)
	volume := createTestVolume(ctx, t, db, novel.ID, 1)

	// order runs across the whole novel, volume membership doesn't matter
	inVolume, err := svc.Create(ctx, CreateChapterOptions{NovelID: novel.ID, VolumeID: &volume.ID, Title: "One", Content: "words", Status: models.ChapterStatusPublished})
	require.NoError(t, err)
	loose, err := svc.Create(ctx, CreateChapterOptions{NovelID: novel.ID, Title: "Two", Content: "words", Status: models.ChapterStatusPublished})
	require.NoError(t, err)
	backInVolume, err := svc.Create(ctx, CreateChapterOptions{NovelID: novel.ID, VolumeID: &volume.ID, Title: "Three", Content: "words", Status: models.ChapterStatusDraft})
	require.NoError(t, err)

	assert.Equal(t, 1, inVolume.SortOrder)
	assert.Equal(t, 2, loose.SortOrder)
	assert.Equal(t, 3, backInVolume.SortOrder)
}

func TestServiceCreate_RejectsForeignVolume(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	novel := createTestNovel(ctx, t, db)

	now := time.Now()
	otherNovel := &models.Novel{CreatedAt: now, UpdatedAt: now, AuthorID: novel.AuthorID, Title: "Other", Status: models.NovelStatusOngoing, Category: models.CategoryOthers}
	_, err := db.NewInsert().Model(otherNovel).Exec(ctx)
	require.NoError(t, err)
	foreignVolume := createTestVolume(ctx, t, db, otherNovel.ID, 1)

	_, err = svc.Create(ctx, CreateChapterOptions{NovelID: novel.ID, VolumeID: &foreignVolume.ID, Title: "One", Content: "words", Status: models.ChapterStatusDraft})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "validation_error", codeErr.Code)

	// nothing was inserted
	count, err := db.NewSelect().Model((*models.Chapter)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestServiceIncrementViews_BumpsChapterAndNovel(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	novel := createTestNovel(ctx, t, db)
	chapter, err := svc.Create(ctx, CreateChapterOptions{NovelID: novel.ID, Title: "One", Content: "words", Status: models.ChapterStatusPublished})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		require.NoError(t, svc.IncrementViews(ctx, chapter))
	}

	got, err := svc.Retrieve(ctx, chapter.ID, novel.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Views)

	gotNovel, err := svc.RetrieveNovel(ctx, novel.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, gotNovel.Views)
}

func TestServiceList_VisibilityFiltering(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	novel := createTestNovel(ctx, t, db)
	_, err := svc.Create(ctx, CreateChapterOptions{NovelID: novel.ID, Title: "Published", Content: "words", Status: models.ChapterStatusPublished})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateChapterOptions{NovelID: novel.ID, Title: "Draft", Content: "words", Status: models.ChapterStatusDraft})
	require.NoError(t, err)

	public, err := svc.List(ctx, novel.ID, false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Published", public[0].Title)
	// list responses carry no content
	assert.Empty(t, public[0].Content)

	owner, err := svc.List(ctx, novel.ID, true)
	require.NoError(t, err)
	assert.Len(t, owner, 2)
}

func TestServiceRetrieve_WrongNovelIsNotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	novel := createTestNovel(ctx, t, db)
	chapter, err := svc.Create(ctx, CreateChapterOptions{NovelID: novel.ID, Title: "One", Content: "words", Status: models.ChapterStatusPublished})
	require.NoError(t, err)

	_, err = svc.Retrieve(ctx, chapter.ID, novel.ID+1)
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "not_found", codeErr.Code)
}
