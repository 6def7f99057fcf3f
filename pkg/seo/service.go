package seo

import (
	"context"
	"database/sql"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/inkstonebooks/inkstone/pkg/htmlutil"
	"github.com/inkstonebooks/inkstone/pkg/models"
)

// descriptionLimit bounds meta descriptions; search engines truncate around
// there anyway.
const descriptionLimit = 200

// Service renders the frontend index.html with entity metadata injected for
// crawlers.
type Service struct {
	db      *bun.DB
	distDir string
}

// NewService creates a new SEO service reading from the frontend dist dir.
func NewService(db *bun.DB, distDir string) *Service {
	return &Service{db: db, distDir: distDir}
}

func (s *Service) indexHTML() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.distDir, "index.html"))
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(data), nil
}

// NovelPage returns index.html with the novel's metadata injected. A missing
// novel returns the untouched page so the frontend can render its own 404.
func (s *Service) NovelPage(ctx context.Context, id int) (string, error) {
	page, err := s.indexHTML()
	if err != nil {
		return "", err
	}

	novel := &models.Novel{}
	err = s.db.NewSelect().
		Model(novel).
		Relation("Author").
		Where("n.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return page, nil
	}
	if err != nil {
		return "", errors.WithStack(err)
	}

	title := novel.Title
	description := htmlutil.Truncate(htmlutil.StripTags(novel.Description), descriptionLimit)
	image := ""
	if novel.CoverPath != nil {
		image = *novel.CoverPath
	}

	return inject(page, title, description, image), nil
}

// AuthorPage returns index.html with the author's metadata injected. A
// missing author returns the untouched page.
func (s *Service) AuthorPage(ctx context.Context, userID int) (string, error) {
	page, err := s.indexHTML()
	if err != nil {
		return "", err
	}

	profile := &models.AuthorProfile{}
	err = s.db.NewSelect().
		Model(profile).
		Relation("User").
		Where("ap.user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return page, nil
	}
	if err != nil {
		return "", errors.WithStack(err)
	}

	title := profile.DisplayName()
	description := htmlutil.Truncate(htmlutil.StripTags(profile.Bio), descriptionLimit)
	image := ""
	if profile.User != nil && profile.User.AvatarPath != nil {
		image = *profile.User.AvatarPath
	}

	return inject(page, title, description, image), nil
}

// inject adds og/twitter meta tags to the head and a hidden text block to the
// body so crawlers without JS still see the entity.
func inject(page, title, description, image string) string {
	title = html.EscapeString(title)
	description = html.EscapeString(description)
	image = html.EscapeString(image)

	var meta strings.Builder
	fmt.Fprintf(&meta, "<meta property=\"og:title\" content=%q>\n", title)
	fmt.Fprintf(&meta, "<meta property=\"og:description\" content=%q>\n", description)
	if image != "" {
		fmt.Fprintf(&meta, "<meta property=\"og:image\" content=%q>\n", image)
	}
	fmt.Fprintf(&meta, "<meta name=\"twitter:card\" content=\"summary\">\n")
	fmt.Fprintf(&meta, "<meta name=\"twitter:title\" content=%q>\n", title)
	fmt.Fprintf(&meta, "<meta name=\"twitter:description\" content=%q>\n", description)

	page = strings.Replace(page, "</head>", meta.String()+"</head>", 1)

	hidden := fmt.Sprintf("<div style=\"display:none\"><h1>%s</h1><p>%s</p></div>", title, description)
	return strings.Replace(page, "</body>", hidden+"</body>", 1)
}
