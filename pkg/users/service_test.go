package users

import (
	"context"
	"database/sql"
	"testing"

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

func createTestUser(ctx context.Context, t *testing.T, db *bun.DB, username, role string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)
	return user
}

func TestServiceChangeRole_PromotesToAuthor(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "scribbler", models.RoleReader)

	updated, err := svc.ChangeRole(ctx, user.ID, models.RoleAuthor)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAuthor, updated.Role)
	require.NotNil(t, updated.AuthorProfile)
	assert.Equal(t, "scribbler", updated.AuthorProfile.PenName)
}

func TestServiceChangeRole_ProfileNeverRecreated(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "scribbler", models.RoleReader)

	first, err := svc.ChangeRole(ctx, user.ID, models.RoleAuthor)
	require.NoError(t, err)
	require.NotNil(t, first.AuthorProfile)

	penName := "Ming River"
	_, err = svc.UpdateProfile(ctx, first, UpdateProfileOptions{PenName: &penName})
	require.NoError(t, err)

	// demote and promote again; the profile keeps its pen name
	_, err = svc.ChangeRole(ctx, user.ID, models.RoleReader)
	require.NoError(t, err)
	again, err := svc.ChangeRole(ctx, user.ID, models.RoleAuthor)
	require.NoError(t, err)

	require.NotNil(t, again.AuthorProfile)
	assert.Equal(t, first.AuthorProfile.ID, again.AuthorProfile.ID)
	assert.Equal(t, "Ming River", again.AuthorProfile.PenName)
}

func TestServiceChangeRole_UserNotFound(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.ChangeRole(ctx, 9999, models.RoleAuthor)
	require.Error(t, err)
}

func TestServiceUpdateProfile(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "scribbler", models.RoleReader)
	user, err := svc.ChangeRole(ctx, user.ID, models.RoleAuthor)
	require.NoError(t, err)

	penName := "Ming River"
	bio := "Writes slow-burn xianxia."
	avatar := "/media/avatar-abc.png"
	updated, err := svc.UpdateProfile(ctx, user, UpdateProfileOptions{
		PenName:    &penName,
		Bio:        &bio,
		AvatarPath: &avatar,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ming River", updated.AuthorProfile.PenName)
	assert.Equal(t, "Writes slow-burn xianxia.", updated.AuthorProfile.Bio)
	require.NotNil(t, updated.AvatarPath)
	assert.Equal(t, avatar, *updated.AvatarPath)
}

func TestServiceUpdateProfile_ReaderPenNameIgnored(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	user := createTestUser(ctx, t, db, "justreading", models.RoleReader)
	loaded, err := svc.Retrieve(ctx, user.ID)
	require.NoError(t, err)

	penName := "Should Not Stick"
	updated, err := svc.UpdateProfile(ctx, loaded, UpdateProfileOptions{PenName: &penName})
	require.NoError(t, err)
	assert.Nil(t, updated.AuthorProfile)
}
