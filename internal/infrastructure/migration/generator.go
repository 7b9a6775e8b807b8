package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/siteforge/siteforge/internal/shared/logger"
)

// Dialects lists the script directories every new migration is created in.
var Dialects = []string{"mysql", "postgres"}

// Generator handles creation of new migration files
type Generator struct {
	scriptsPath string
	now         func() time.Time
	logger      logger.Interface
}

// NewGenerator creates a new migration generator rooted at scriptsPath,
// normally internal/infrastructure/migration/scripts.
func NewGenerator(scriptsPath string, log logger.Interface) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		now:         time.Now,
		logger:      log.With("component", "migration.generator"),
	}
}

// CreateMigration writes an up/down pair for each dialect and returns the paths.
func (g *Generator) CreateMigration(name string) ([]string, error) {
	if name == "" {
		return nil, fmt.Errorf("migration name is required")
	}

	timestamp := g.now().UTC().Format("20060102150405")
	var created []string

	for _, dialect := range Dialects {
		dir := filepath.Join(g.scriptsPath, dialect)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return created, fmt.Errorf("failed to create scripts directory: %w", err)
		}

		up := filepath.Join(dir, fmt.Sprintf("%s_%s.up.sql", timestamp, name))
		down := filepath.Join(dir, fmt.Sprintf("%s_%s.down.sql", timestamp, name))

		if err := os.WriteFile(up, []byte(g.upTemplate(name, dialect)), 0o644); err != nil {
			return created, fmt.Errorf("failed to create up migration file: %w", err)
		}
		if err := os.WriteFile(down, []byte(g.downTemplate(name)), 0o644); err != nil {
			return created, fmt.Errorf("failed to create down migration file: %w", err)
		}
		created = append(created, up, down)
	}

	g.logger.Infow("migration files created successfully", "files", created)
	return created, nil
}

func (g *Generator) upTemplate(name, dialect string) string {
	return fmt.Sprintf(`-- Migration: %s (%s)
-- Created: %s

`, name, dialect, g.now().UTC().Format(time.DateTime))
}

func (g *Generator) downTemplate(name string) string {
	return fmt.Sprintf(`-- Rollback Migration: %s
-- Created: %s

`, name, g.now().UTC().Format(time.DateTime))
}
