package backup

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"

	"github.com/inkstonebooks/inkstone/pkg/config"
)

const archivePrefix = "inkstone-"

// Scheduler periodically archives the database and media directory into the
// backup directory and prunes old archives.
type Scheduler struct {
	config *config.Config
	log    logger.Logger

	shutdown chan struct{}
	done     chan struct{}
}

// New creates a new backup scheduler.
func New(cfg *config.Config) *Scheduler {
	return &Scheduler{
		config:   cfg,
		log:      logger.New(),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the scheduler goroutine.
func (s *Scheduler) Start() {
	go s.run()
}

func (s *Scheduler) run() {
	interval := s.config.BackupInterval()
	timer := time.NewTimer(interval)

	for {
		select {
		case <-s.shutdown:
			s.done <- struct{}{}
			return
		case <-timer.C:
			if err := s.RunOnce(); err != nil {
				s.log.Err(err).Error("backup error")
			}
			timer.Reset(interval)
		}
	}
}

// Shutdown stops the scheduler and waits for the goroutine to exit.
func (s *Scheduler) Shutdown() {
	close(s.shutdown)
	<-s.done
}

// RunOnce writes one backup archive and prunes beyond the retention count.
func (s *Scheduler) RunOnce() error {
	path, err := writeArchive(s.config.BackupDir, s.config.DatabaseFilePath, s.config.MediaDir, time.Now())
	if err != nil {
		return err
	}
	s.log.Root(logger.Data{"path": path}).Info("backup written")

	return prune(s.config.BackupDir, s.config.BackupRetention)
}

// writeArchive zips the database file and the media directory into the backup
// dir, named after the given timestamp.
func writeArchive(backupDir, dbPath, mediaDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", errors.WithStack(err)
	}

	path := filepath.Join(backupDir, archivePrefix+now.Format("20060102-150405")+".zip")
	f, err := os.Create(path)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	if err := addFile(zw, dbPath, filepath.Base(dbPath)); err != nil {
		zw.Close()
		return "", err
	}

	// media dir may not exist yet on a fresh install
	if _, err := os.Stat(mediaDir); err == nil {
		err = filepath.Walk(mediaDir, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return errors.WithStack(err)
			}
			if info.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(mediaDir, p)
			if err != nil {
				return errors.WithStack(err)
			}
			return addFile(zw, p, filepath.Join("media", rel))
		})
		if err != nil {
			zw.Close()
			return "", err
		}
	}

	if err := zw.Close(); err != nil {
		return "", errors.WithStack(err)
	}
	return path, errors.WithStack(f.Sync())
}

func addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer src.Close()

	dst, err := zw.Create(name)
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = io.Copy(dst, src)
	return errors.WithStack(err)
}

// prune deletes the oldest archives beyond the retention count. Archive names
// embed their timestamp, so lexical order is chronological.
func prune(backupDir string, retention int) error {
	if retention <= 0 {
		return nil
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		return errors.WithStack(err)
	}

	archives := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), archivePrefix) && strings.HasSuffix(entry.Name(), ".zip") {
			archives = append(archives, entry.Name())
		}
	}
	if len(archives) <= retention {
		return nil
	}

	sort.Strings(archives)
	for _, name := range archives[:len(archives)-retention] {
		if err := os.Remove(filepath.Join(backupDir, name)); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
