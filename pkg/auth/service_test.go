package auth

import (
	"context"
	"database/sql"
	"testing"

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

func TestServiceRegister(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterUserOptions{
		Username: "inkreader",
		Email:    "reader@example.com",
		Password: "securepassword123",
	})
	require.NoError(t, err)
	assert.Equal(t, "inkreader", user.Username)
	assert.Equal(t, models.RoleReader, user.Role)
	assert.NotEqual(t, "securepassword123", user.PasswordHash)
	assert.True(t, CheckPassword("securepassword123", user.PasswordHash))
}

func TestServiceRegister_DuplicateUsernameCaseInsensitive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterUserOptions{
		Username: "inkreader",
		Email:    "reader@example.com",
		Password: "securepassword123",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterUserOptions{
		Username: "InkReader",
		Email:    "other@example.com",
		Password: "securepassword123",
	})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Contains(t, codeErr.Message, "username")
}

func TestServiceRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterUserOptions{
		Username: "inkreader",
		Email:    "reader@example.com",
		Password: "securepassword123",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterUserOptions{
		Username: "otherreader",
		Email:    "Reader@Example.com",
		Password: "securepassword123",
	})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Contains(t, codeErr.Message, "email")
}

func TestServiceAuthenticate(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterUserOptions{
		Username: "inkreader",
		Email:    "reader@example.com",
		Password: "securepassword123",
	})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "inkreader", "securepassword123")
	require.NoError(t, err)
	assert.Equal(t, "inkreader", user.Username)

	_, err = svc.Authenticate(ctx, "inkreader", "wrongpassword")
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "unauthorized", codeErr.Code)
}

func TestServiceTokenRoundTrip(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db, "test-secret")
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterUserOptions{
		Username: "inkreader",
		Email:    "reader@example.com",
		Password: "securepassword123",
	})
	require.NoError(t, err)

	token, expiry, err := svc.GenerateToken(user, false)
	require.NoError(t, err)
	assert.Equal(t, TokenExpiry, expiry)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "inkreader", claims.Username)
	assert.Equal(t, models.RoleReader, claims.Role)

	_, rememberExpiry, err := svc.GenerateToken(user, true)
	require.NoError(t, err)
	assert.Equal(t, RememberMeExpiry, rememberExpiry)

	_, err = svc.ValidateToken("not-a-token")
	require.Error(t, err)

	otherSvc := NewService(db, "different-secret")
	_, err = otherSvc.ValidateToken(token)
	require.Error(t, err)
}
