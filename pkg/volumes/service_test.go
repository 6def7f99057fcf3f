package volumes

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

func TestServiceCreate_AssignsSequentialOrder(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	novel := createTestNovel(ctx, t, db)

	for i := 1; i <= 3; i++ {
		volume, err := svc.Create(ctx, CreateVolumeOptions{NovelID: novel.ID, Title: "Volume"})
		require.NoError(t, err)
		assert.Equal(t, i, volume.SortOrder)
	}
}

func TestServiceCreate_OrderIsPerNovel(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	novel := createTestNovel(ctx, t, db)

	now := time.Now()
	otherNovel := &models.Novel{CreatedAt: now, UpdatedAt: now, AuthorID: novel.AuthorID, Title: "Other", Status: models.NovelStatusOngoing, Category: models.CategoryOthers}
	_, err := db.NewInsert().Model(otherNovel).Exec(ctx)
	require.NoError(t, err)

	first, err := svc.Create(ctx, CreateVolumeOptions{NovelID: novel.ID, Title: "Volume"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, CreateVolumeOptions{NovelID: otherNovel.ID, Title: "Volume"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.SortOrder)
	assert.Equal(t, 1, other.SortOrder)
}

func TestServiceDelete_DemotesChaptersKeepingOrder(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	novel := createTestNovel(ctx, t, db)
	volume, err := svc.Create(ctx, CreateVolumeOptions{NovelID: novel.ID, Title: "Volume"})
	require.NoError(t, err)

	now := time.Now()
	chapter := &models.Chapter{
		CreatedAt: now, UpdatedAt: now, PublishedAt: now,
		NovelID: novel.ID, VolumeID: &volume.ID,
		Title: "Chapter", Content: "words",
		SortOrder: 4, Status: models.ChapterStatusPublished,
	}
	_, err = db.NewInsert().Model(chapter).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, volume))

	got := &models.Chapter{}
	err = db.NewSelect().Model(got).Where("c.id = ?", chapter.ID).Scan(ctx)
	require.NoError(t, err)
	assert.Nil(t, got.VolumeID)
	assert.Equal(t, 4, got.SortOrder)
}

func TestServiceRetrieve_FiltersDraftsForPublicView(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	novel := createTestNovel(ctx, t, db)
	volume, err := svc.Create(ctx, CreateVolumeOptions{NovelID: novel.ID, Title: "Volume"})
	require.NoError(t, err)

	now := time.Now()
	for i, status := range []string{models.ChapterStatusPublished, models.ChapterStatusDraft} {
		chapter := &models.Chapter{
			CreatedAt: now, UpdatedAt: now, PublishedAt: now,
			NovelID: novel.ID, VolumeID: &volume.ID,
			Title: "Chapter", Content: "words",
			SortOrder: i + 1, Status: status,
		}
		_, err = db.NewInsert().Model(chapter).Exec(ctx)
		require.NoError(t, err)
	}

	public, err := svc.Retrieve(ctx, volume.ID, novel.ID, false)
	require.NoError(t, err)
	assert.Len(t, public.Chapters, 1)

	owner, err := svc.Retrieve(ctx, volume.ID, novel.ID, true)
	require.NoError(t, err)
	assert.Len(t, owner.Chapters, 2)
}
