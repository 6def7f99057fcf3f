package novels

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/inkstonebooks/inkstone/pkg/errcodes"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

// Service handles novel operations.
type Service struct {
	db *bun.DB
}

// NewService creates a new novel service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// CreateNovelOptions are the options for Create.
type CreateNovelOptions struct {
	AuthorID    int
	Title       string
	Description string
	CoverPath   *string
	Status      string
	Category    string
}

// Create inserts a new novel owned by the given author profile.
func (s *Service) Create(ctx context.Context, opts CreateNovelOptions) (*models.Novel, error) {
	now := time.Now()
	novel := &models.Novel{
		CreatedAt:   now,
		UpdatedAt:   now,
		AuthorID:    opts.AuthorID,
		Title:       opts.Title,
		Description: opts.Description,
		CoverPath:   opts.CoverPath,
		Status:      opts.Status,
		Category:    opts.Category,
	}

	_, err := s.db.NewInsert().Model(novel).Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return s.Retrieve(ctx, novel.ID, true)
}

// Retrieve returns a novel with its author, assembled volumes and chapters,
// and aggregated view total. ownerView includes draft chapters.
func (s *Service) Retrieve(ctx context.Context, id int, ownerView bool) (*models.Novel, error) {
	novel := &models.Novel{}
	err := s.db.NewSelect().
		Model(novel).
		Relation("Author").
		Relation("Author.User").
		Where("n.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errcodes.NotFound("Novel")
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := s.assemble(ctx, []*models.Novel{novel}, ownerView); err != nil {
		return nil, err
	}

	return novel, nil
}

// ListNovelsOptions are the options for List. When AuthorID is set the list is
// scoped to that author's novels and OwnerView controls draft visibility.
type ListNovelsOptions struct {
	AuthorID  *int
	OwnerView bool
	Category  *string
	Status    *string
	Limit     int
	Offset    int
}

// List returns novels newest-updated first with assembled volumes, chapters,
// and view totals. Assembly runs a constant number of queries regardless of
// how many novels are returned.
func (s *Service) List(ctx context.Context, opts ListNovelsOptions) ([]*models.Novel, int, error) {
	novels := []*models.Novel{}

	q := s.db.NewSelect().
		Model(&novels).
		Relation("Author").
		Relation("Author.User").
		Order("n.updated_at DESC")

	if opts.AuthorID != nil {
		q = q.Where("n.author_id = ?", *opts.AuthorID)
	}
	if opts.Category != nil {
		q = q.Where("n.category = ?", *opts.Category)
	}
	if opts.Status != nil {
		q = q.Where("n.status = ?", *opts.Status)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	if err := s.assemble(ctx, novels, opts.OwnerView); err != nil {
		return nil, 0, err
	}

	return novels, total, nil
}

// UpdateNovelOptions are the options for Update.
type UpdateNovelOptions struct {
	Columns []string
}

// Update saves the given columns of an already-mutated novel.
func (s *Service) Update(ctx context.Context, novel *models.Novel, opts UpdateNovelOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	novel.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := s.db.NewUpdate().
		Model(novel).
		Column(columns...).
		WherePK().
		Exec(ctx)
	return errors.WithStack(err)
}

// Delete removes a novel. Volumes and chapters go with it via the schema.
func (s *Service) Delete(ctx context.Context, novel *models.Novel) error {
	_, err := s.db.NewDelete().Model(novel).WherePK().Exec(ctx)
	return errors.WithStack(err)
}

// IncrementViews bumps a novel's view counter by one. The increment happens
// in SQL so concurrent reads never lose updates.
func (s *Service) IncrementViews(ctx context.Context, id int) error {
	_, err := s.db.NewUpdate().
		Model((*models.Novel)(nil)).
		Set("views = views + 1").
		Where("id = ?", id).
		Exec(ctx)
	return errors.WithStack(err)
}

// ChapterAnalytics is one chapter's row in the analytics series.
type ChapterAnalytics struct {
	ChapterID int    `bun:"id" json:"chapter_id"`
	Title     string `bun:"title" json:"title"`
	Status    string `bun:"status" json:"status"`
	Order     int    `bun:"sort_order" json:"order"`
	Views     int    `bun:"views" json:"views"`
}

// Analytics returns the per-chapter view series for a novel in reading order.
func (s *Service) Analytics(ctx context.Context, novelID int) ([]ChapterAnalytics, error) {
	rows := []ChapterAnalytics{}
	err := s.db.NewSelect().
		Model((*models.Chapter)(nil)).
		Column("id", "title", "status", "sort_order", "views").
		Where("novel_id = ?", novelID).
		Order("sort_order ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return rows, nil
}

// novelViews carries an aggregated view total for one novel.
type novelViews struct {
	NovelID    int `bun:"novel_id"`
	TotalViews int `bun:"total_views"`
}

// assemble attaches volumes, chapters, and view totals to the given novels
// with three queries. total_views always sums published chapters only, even
// in owner view; the chapter lists are visibility filtered.
func (s *Service) assemble(ctx context.Context, novels []*models.Novel, ownerView bool) error {
	if len(novels) == 0 {
		return nil
	}

	byID := make(map[int]*models.Novel, len(novels))
	ids := make([]int, 0, len(novels))
	for _, novel := range novels {
		novel.Volumes = []*models.Volume{}
		novel.LooseChapters = []*models.Chapter{}
		byID[novel.ID] = novel
		ids = append(ids, novel.ID)
	}

	volumes := []*models.Volume{}
	err := s.db.NewSelect().
		Model(&volumes).
		Where("v.novel_id IN (?)", bun.In(ids)).
		Order("v.novel_id ASC", "v.sort_order ASC").
		Scan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	volumesByID := make(map[int]*models.Volume, len(volumes))
	for _, volume := range volumes {
		volume.Chapters = []*models.Chapter{}
		volumesByID[volume.ID] = volume
		byID[volume.NovelID].Volumes = append(byID[volume.NovelID].Volumes, volume)
	}

	chapters := []*models.Chapter{}
	chapterQuery := s.db.NewSelect().
		Model(&chapters).
		ExcludeColumn("content").
		Where("c.novel_id IN (?)", bun.In(ids)).
		Order("c.novel_id ASC", "c.sort_order ASC")
	if !ownerView {
		chapterQuery = chapterQuery.Where("c.status = ?", models.ChapterStatusPublished)
	}
	err = chapterQuery.Scan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	for _, chapter := range chapters {
		if chapter.VolumeID != nil {
			if volume, ok := volumesByID[*chapter.VolumeID]; ok {
				volume.Chapters = append(volume.Chapters, chapter)
				continue
			}
		}
		byID[chapter.NovelID].LooseChapters = append(byID[chapter.NovelID].LooseChapters, chapter)
	}

	totals := []novelViews{}
	err = s.db.NewSelect().
		Model((*models.Chapter)(nil)).
		ColumnExpr("novel_id").
		ColumnExpr("SUM(views) AS total_views").
		Where("novel_id IN (?)", bun.In(ids)).
		Where("status = ?", models.ChapterStatusPublished).
		Group("novel_id").
		Scan(ctx, &totals)
	if err != nil {
		return errors.WithStack(err)
	}

	for _, row := range totals {
		byID[row.NovelID].TotalViews = row.TotalViews
	}

	return nil
}
