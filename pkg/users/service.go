package users

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/inkstonebooks/inkstone/pkg/errcodes"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

// Service handles user profile and role operations.
type Service struct {
	db *bun.DB
}

// NewService creates a new user service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// Retrieve returns a user by ID with their author profile, if any.
func (s *Service) Retrieve(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	err := s.db.NewSelect().
		Model(user).
		Relation("AuthorProfile").
		Where("u.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("User")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return user, nil
}

// UpdateProfileOptions are the options for UpdateProfile.
type UpdateProfileOptions struct {
	PenName    *string
	Bio        *string
	AvatarPath *string
}

// UpdateProfile updates a user's avatar and, when they have an author
// profile, their pen name and bio. Pen name and bio on a profileless user are
// ignored.
func (s *Service) UpdateProfile(ctx context.Context, user *models.User, opts UpdateProfileOptions) (*models.User, error) {
	now := time.Now()

	if opts.AvatarPath != nil {
		user.AvatarPath = opts.AvatarPath
		user.UpdatedAt = now
		_, err := s.db.NewUpdate().
			Model(user).
			Column("avatar_path", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	if user.AuthorProfile != nil && (opts.PenName != nil || opts.Bio != nil) {
		profile := user.AuthorProfile
		profile.UpdatedAt = now
		columns := []string{"updated_at"}
		if opts.PenName != nil {
			profile.PenName = *opts.PenName
			columns = append(columns, "pen_name")
		}
		if opts.Bio != nil {
			profile.Bio = *opts.Bio
			columns = append(columns, "bio")
		}

		_, err := s.db.NewUpdate().
			Model(profile).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return s.Retrieve(ctx, user.ID)
}

// ChangeRole sets a user's role. Promoting to AUTHOR ensures an author
// profile exists; an existing profile is never recreated or reset.
func (s *Service) ChangeRole(ctx context.Context, id int, role string) (*models.User, error) {
	user, err := s.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user.Role = role
		user.UpdatedAt = time.Now()
		_, err := tx.NewUpdate().
			Model(user).
			Column("role", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if role == models.RoleAuthor {
			return s.ensureAuthorProfile(ctx, tx, user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Retrieve(ctx, id)
}

// EnsureAuthorProfile creates an author profile for the user if one doesn't
// exist yet. The pen name defaults to the username.
func (s *Service) EnsureAuthorProfile(ctx context.Context, user *models.User) error {
	return s.ensureAuthorProfile(ctx, s.db, user)
}

func (s *Service) ensureAuthorProfile(ctx context.Context, idb bun.IDB, user *models.User) error {
	exists, err := idb.NewSelect().
		Model((*models.AuthorProfile)(nil)).
		Where("user_id = ?", user.ID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return nil
	}

	now := time.Now()
	profile := &models.AuthorProfile{
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    user.ID,
		PenName:   user.Username,
	}
	_, err = idb.NewInsert().Model(profile).Exec(ctx)
	return errors.WithStack(err)
}
