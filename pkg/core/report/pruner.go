package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Pruner deletes generated report files past their retention window.
// Reports are served once and re-derivable, so there is no reason to keep
// them around.
type Pruner struct {
	dir    string
	maxAge time.Duration
	log    *logrus.Logger
}

func NewPruner(dir string, maxAge time.Duration, log *logrus.Logger) *Pruner {
	if log == nil {
		log = logrus.New()
	}
	return &Pruner{dir: dir, maxAge: maxAge, log: log}
}

// Prune removes PDFs older than maxAge. A missing directory is a no-op.
// Individual remove failures are logged and skipped; only an unreadable
// directory is reported to the caller.
func (p *Pruner) Prune() error {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("report prune: read dir %s: %w", p.dir, err)
	}

	cutoff := time.Now().Add(-p.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(p.dir, entry.Name())); err != nil {
			p.log.WithError(err).WithField("file", entry.Name()).Warn("report prune: remove failed")
			continue
		}
		removed++
	}
	if removed > 0 {
		p.log.WithField("removed", removed).Info("pruned old reports")
	}
	return nil
}
