package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"

	"github.com/inkstonebooks/inkstone/pkg/auth"
	"github.com/inkstonebooks/inkstone/pkg/authors"
	"github.com/inkstonebooks/inkstone/pkg/binder"
	"github.com/inkstonebooks/inkstone/pkg/bookshelf"
	"github.com/inkstonebooks/inkstone/pkg/chapters"
	"github.com/inkstonebooks/inkstone/pkg/config"
	"github.com/inkstonebooks/inkstone/pkg/errcodes"
	"github.com/inkstonebooks/inkstone/pkg/logsink"
	"github.com/inkstonebooks/inkstone/pkg/media"
	"github.com/inkstonebooks/inkstone/pkg/novels"
	"github.com/inkstonebooks/inkstone/pkg/seo"
	"github.com/inkstonebooks/inkstone/pkg/users"
	"github.com/inkstonebooks/inkstone/pkg/volumes"
)

func New(cfg *config.Config, db *bun.DB, sink logsink.Sink) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	// Register auth routes and get the auth middleware for the rest
	_, authMiddleware := auth.RegisterRoutes(e, db, cfg.JWTSecret)

	users.RegisterRoutes(e, db, authMiddleware)
	authors.RegisterRoutes(e, db)
	novels.RegisterRoutes(e, db, authMiddleware)
	volumes.RegisterRoutes(e, db, authMiddleware)
	chapters.RegisterRoutes(e, db, authMiddleware)
	bookshelf.RegisterRoutes(e, db, authMiddleware)
	media.RegisterRoutes(e, cfg.MediaDir, authMiddleware)
	seo.RegisterRoutes(e, db, cfg.FrontendDistDir)
	logsink.RegisterRoutes(e, sink)

	// Serve the built frontend. Unknown paths fall back to index.html so
	// client-side routing works on deep links.
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:  cfg.FrontendDistDir,
		Index: "index.html",
		HTML5: true,
	}))

	e.HTTPErrorHandler = errcodes.NewHandler(sink).Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}
