package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"

	"github.com/inkstonebooks/inkstone/pkg/backup"
	"github.com/inkstonebooks/inkstone/pkg/config"
	"github.com/inkstonebooks/inkstone/pkg/database"
	"github.com/inkstonebooks/inkstone/pkg/logsink"
	"github.com/inkstonebooks/inkstone/pkg/migrations"
	"github.com/inkstonebooks/inkstone/pkg/server"
	"github.com/inkstonebooks/inkstone/pkg/version"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting inkstone", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		log.Err(err).Fatal("media directory error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	var sink logsink.Sink = logsink.NopSink{}
	if cfg.DiscordWebhookURL != "" {
		sink = logsink.NewDiscordSink(cfg.DiscordWebhookURL)
		log.Info("discord log sink enabled")
	}

	srv, err := server.New(cfg, db, sink)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	backups := backup.New(cfg)

	graceful := signals.Setup()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort)
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}

		actualPort := listener.Addr().(*net.TCPAddr).Port
		log.Info("server started", logger.Data{"port": actualPort})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	backups.Start()
	log.Info("backup scheduler started")

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	backups.Shutdown()
	log.Info("backup scheduler shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}
