package chapters

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/inkstonebooks/inkstone/pkg/errcodes"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

// Service handles chapter operations.
type Service struct {
	db *bun.DB
}

// NewService creates a new chapter service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// RetrieveNovel loads a chapter's parent novel with its author for ownership
// checks.
func (s *Service) RetrieveNovel(ctx context.Context, novelID int) (*models.Novel, error) {
	novel := &models.Novel{}
	err := s.db.NewSelect().
		Model(novel).
		Relation("Author").
		Where("n.id = ?", novelID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Novel")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return novel, nil
}

// List returns a novel's chapters in flat reading order, without content.
// ownerView includes drafts.
func (s *Service) List(ctx context.Context, novelID int, ownerView bool) ([]*models.Chapter, error) {
	chapters := []*models.Chapter{}
	q := s.db.NewSelect().
		Model(&chapters).
		ExcludeColumn("content").
		Where("c.novel_id = ?", novelID).
		Order("c.sort_order ASC")
	if !ownerView {
		q = q.Where("c.status = ?", models.ChapterStatusPublished)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return chapters, nil
}

// Retrieve returns one chapter of a novel including its content.
func (s *Service) Retrieve(ctx context.Context, id, novelID int) (*models.Chapter, error) {
	chapter := &models.Chapter{}
	err := s.db.NewSelect().
		Model(chapter).
		Where("c.id = ?", id).
		Where("c.novel_id = ?", novelID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Chapter")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return chapter, nil
}

// validateVolume checks that a volume exists and belongs to the given novel.
func (s *Service) validateVolume(ctx context.Context, volumeID, novelID int) error {
	exists, err := s.db.NewSelect().
		Model((*models.Volume)(nil)).
		Where("id = ?", volumeID).
		Where("novel_id = ?", novelID).
		Exists(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if !exists {
		return errcodes.ValidationError("Volume does not belong to this novel")
	}
	return nil
}

// CreateChapterOptions are the options for Create.
type CreateChapterOptions struct {
	NovelID  int
	VolumeID *int
	Title    string
	Content  string
	Status   string
}

// Create inserts a chapter at the end of the novel's flat chapter order,
// regardless of volume membership. The order value is assigned inside the
// INSERT so concurrent creates never collide; the unique index on (novel_id,
// sort_order) backs that up.
func (s *Service) Create(ctx context.Context, opts CreateChapterOptions) (*models.Chapter, error) {
	if opts.VolumeID != nil {
		if err := s.validateVolume(ctx, *opts.VolumeID, opts.NovelID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	chapter := &models.Chapter{
		CreatedAt:   now,
		UpdatedAt:   now,
		NovelID:     opts.NovelID,
		VolumeID:    opts.VolumeID,
		Title:       opts.Title,
		Content:     opts.Content,
		Status:      opts.Status,
		PublishedAt: now,
	}

	_, err := s.db.NewInsert().
		Model(chapter).
		Value("sort_order", "(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM chapters WHERE novel_id = ?)", opts.NovelID).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// reload to pick up the assigned order
	err = s.db.NewSelect().Model(chapter).WherePK().Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return chapter, nil
}

// UpdateChapterOptions are the options for Update.
type UpdateChapterOptions struct {
	Columns []string
}

// Update saves the given columns of an already-mutated chapter. Order is not
// updatable. Volume membership must have been validated by the caller.
func (s *Service) Update(ctx context.Context, chapter *models.Chapter, opts UpdateChapterOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	chapter.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := s.db.NewUpdate().
		Model(chapter).
		Column(columns...).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// ValidateVolumeMembership checks a target volume for a chapter move.
func (s *Service) ValidateVolumeMembership(ctx context.Context, volumeID, novelID int) error {
	return s.validateVolume(ctx, volumeID, novelID)
}

// Delete removes a chapter.
func (s *Service) Delete(ctx context.Context, chapter *models.Chapter) error {
	_, err := s.db.NewDelete().Model(chapter).WherePK().Exec(ctx)
	return errors.WithStack(err)
}

// IncrementViews bumps both the chapter's and the parent novel's view
// counters by one. Both increments happen in SQL so concurrent reads never
// lose updates.
func (s *Service) IncrementViews(ctx context.Context, chapter *models.Chapter) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*models.Chapter)(nil)).
			Set("views = views + 1").
			Where("id = ?", chapter.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewUpdate().
			Model((*models.Novel)(nil)).
			Set("views = views + 1").
			Where("id = ?", chapter.NovelID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}
