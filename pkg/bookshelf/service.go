package bookshelf

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/inkstonebooks/inkstone/pkg/errcodes"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

// Service handles bookshelf operations.
type Service struct {
	db *bun.DB
}

// NewService creates a new bookshelf service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// List returns a user's bookshelf entries, newest-added first, with novel and
// last-read chapter details.
func (s *Service) List(ctx context.Context, userID int) ([]*models.ReadingProgress, error) {
	entries := []*models.ReadingProgress{}
	err := s.db.NewSelect().
		Model(&entries).
		Relation("Novel").
		Relation("Novel.Author").
		Relation("Novel.Author.User").
		Relation("LastReadChapter", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.ExcludeColumn("content")
		}).
		Where("rp.user_id = ?", userID).
		Order("rp.added_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return entries, nil
}

// UpsertOptions are the options for Upsert.
type UpsertOptions struct {
	UserID            int
	NovelID           int
	LastReadChapterID *int
}

// Upsert adds a novel to a user's bookshelf or updates the existing entry's
// reading position. The bool result reports whether a new entry was created.
// A chapter pointer outside the novel is rejected before any mutation.
func (s *Service) Upsert(ctx context.Context, opts UpsertOptions) (*models.ReadingProgress, bool, error) {
	exists, err := s.db.NewSelect().
		Model((*models.Novel)(nil)).
		Where("id = ?", opts.NovelID).
		Exists(ctx)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}
	if !exists {
		return nil, false, errcodes.NotFound("Novel")
	}

	if opts.LastReadChapterID != nil {
		ok, err := s.db.NewSelect().
			Model((*models.Chapter)(nil)).
			Where("id = ?", *opts.LastReadChapterID).
			Where("novel_id = ?", opts.NovelID).
			Exists(ctx)
		if err != nil {
			return nil, false, errors.WithStack(err)
		}
		if !ok {
			return nil, false, errcodes.ValidationError("Chapter does not belong to this novel")
		}
	}

	now := time.Now()

	entry := &models.ReadingProgress{}
	err = s.db.NewSelect().
		Model(entry).
		Where("rp.user_id = ?", opts.UserID).
		Where("rp.novel_id = ?", opts.NovelID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		entry = &models.ReadingProgress{
			CreatedAt:         now,
			UpdatedAt:         now,
			UserID:            opts.UserID,
			NovelID:           opts.NovelID,
			LastReadChapterID: opts.LastReadChapterID,
			AddedAt:           now,
		}
		_, err = s.db.NewInsert().Model(entry).Exec(ctx)
		if err == nil {
			entry, err = s.retrieve(ctx, entry.ID)
			return entry, true, err
		}
		// A concurrent first add can slip past the existence check; the
		// unique index on (user_id, novel_id) turns the loser into an update.
		if !strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, false, errors.WithStack(err)
		}

		entry = &models.ReadingProgress{}
		err = s.db.NewSelect().
			Model(entry).
			Where("rp.user_id = ?", opts.UserID).
			Where("rp.novel_id = ?", opts.NovelID).
			Scan(ctx)
		if err != nil {
			return nil, false, errors.WithStack(err)
		}
		return s.update(ctx, entry, opts.LastReadChapterID, now)
	}
	if err != nil {
		return nil, false, errors.WithStack(err)
	}

	return s.update(ctx, entry, opts.LastReadChapterID, now)
}

// update refreshes an existing entry. An absent chapter id leaves the saved
// reading position alone.
func (s *Service) update(ctx context.Context, entry *models.ReadingProgress, lastReadChapterID *int, now time.Time) (*models.ReadingProgress, bool, error) {
	columns := []string{"updated_at"}
	entry.UpdatedAt = now
	if lastReadChapterID != nil {
		entry.LastReadChapterID = lastReadChapterID
		columns = append(columns, "last_read_chapter_id")
	}

	_, err := s.db.NewUpdate().
		Model(entry).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, false, errors.WithStack(err)
	}

	entry, err = s.retrieve(ctx, entry.ID)
	return entry, false, err
}

func (s *Service) retrieve(ctx context.Context, id int) (*models.ReadingProgress, error) {
	entry := &models.ReadingProgress{}
	err := s.db.NewSelect().
		Model(entry).
		Relation("Novel").
		Relation("Novel.Author").
		Relation("Novel.Author.User").
		Relation("LastReadChapter", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.ExcludeColumn("content")
		}).
		Where("rp.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Bookshelf entry")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return entry, nil
}

// Delete removes one of the user's own bookshelf entries.
func (s *Service) Delete(ctx context.Context, id, userID int) error {
	entry := &models.ReadingProgress{}
	err := s.db.NewSelect().
		Model(entry).
		Where("rp.id = ?", id).
		Where("rp.user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return errcodes.NotFound("Bookshelf entry")
	}
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = s.db.NewDelete().Model(entry).WherePK().Exec(ctx)
	return errors.WithStack(err)
}
