package authors

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/inkstonebooks/inkstone/pkg/errcodes"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

// Service handles public author page reads.
type Service struct {
	db *bun.DB
}

// NewService creates a new author service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// Retrieve returns an author's profile by user ID along with their novels,
// newest-updated first.
func (s *Service) Retrieve(ctx context.Context, userID int) (*models.AuthorProfile, error) {
	profile := &models.AuthorProfile{}
	err := s.db.NewSelect().
		Model(profile).
		Relation("User").
		Relation("Novels", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("updated_at DESC")
		}).
		Where("ap.user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Author")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return profile, nil
}
