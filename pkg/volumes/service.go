package volumes

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/inkstonebooks/inkstone/pkg/errcodes"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

// Service handles volume operations.
type Service struct {
	db *bun.DB
}

// NewService creates a new volume service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// RetrieveNovel loads a volume's parent novel with its author for ownership
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

// List returns a novel's volumes in reading order.
func (s *Service) List(ctx context.Context, novelID int) ([]*models.Volume, error) {
	volumes := []*models.Volume{}
	err := s.db.NewSelect().
		Model(&volumes).
		Where("v.novel_id = ?", novelID).
		Order("v.sort_order ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return volumes, nil
}

// Retrieve returns one volume of a novel with its chapters in reading order.
// ownerView includes drafts.
func (s *Service) Retrieve(ctx context.Context, id, novelID int, ownerView bool) (*models.Volume, error) {
	volume := &models.Volume{}
	err := s.db.NewSelect().
		Model(volume).
		Where("v.id = ?", id).
		Where("v.novel_id = ?", novelID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Volume")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	chapters := []*models.Chapter{}
	q := s.db.NewSelect().
		Model(&chapters).
		ExcludeColumn("content").
		Where("c.volume_id = ?", id).
		Order("c.sort_order ASC")
	if !ownerView {
		q = q.Where("c.status = ?", models.ChapterStatusPublished)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	volume.Chapters = chapters

	return volume, nil
}

// CreateVolumeOptions are the options for Create.
type CreateVolumeOptions struct {
	NovelID     int
	Title       string
	Description string
	CoverPath   *string
}

// Create inserts a volume at the end of the novel's volume order. The order
// value is assigned inside the INSERT so concurrent creates never collide;
// the unique index on (novel_id, sort_order) backs that up.
func (s *Service) Create(ctx context.Context, opts CreateVolumeOptions) (*models.Volume, error) {
	now := time.Now()
	volume := &models.Volume{
		CreatedAt:   now,
		UpdatedAt:   now,
		NovelID:     opts.NovelID,
		Title:       opts.Title,
		Description: opts.Description,
		CoverPath:   opts.CoverPath,
	}

	_, err := s.db.NewInsert().
		Model(volume).
		Value("sort_order", "(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM volumes WHERE novel_id = ?)", opts.NovelID).
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// reload to pick up the assigned order
	err = s.db.NewSelect().Model(volume).WherePK().Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	volume.Chapters = []*models.Chapter{}

	return volume, nil
}

// UpdateVolumeOptions are the options for Update.
type UpdateVolumeOptions struct {
	Columns []string
}

// Update saves the given columns of an already-mutated volume. Order is not
// updatable.
func (s *Service) Update(ctx context.Context, volume *models.Volume, opts UpdateVolumeOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	volume.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := s.db.NewUpdate().
		Model(volume).
		Column(columns...).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// Delete removes a volume and demotes its chapters to loose chapters of the
// novel. The chapters keep their order values.
func (s *Service) Delete(ctx context.Context, volume *models.Volume) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*models.Chapter)(nil)).
			Set("volume_id = NULL").
			Where("volume_id = ?", volume.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().Model(volume).WherePK().Exec(ctx)
		return errors.WithStack(err)
	})
}
