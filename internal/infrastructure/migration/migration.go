package migration

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/siteforge/siteforge/internal/shared/logger"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks versioned SQL scripts for mysql and postgres and gorm
// AutoMigrate for sqlite, which has no script set.
func NewManager(driver string, log logger.Interface) *Manager {
	var strategy Strategy

	switch strings.ToLower(driver) {
	case "mysql", "":
		strategy = NewGolangMigrateStrategy("mysql", log)
	case "postgres":
		strategy = NewGolangMigrateStrategy("postgres", log)
	default:
		strategy = NewGormAutoMigrateStrategy(log)
	}

	return NewManagerWithStrategy(strategy, log)
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   log.With("component", "migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

// Down rolls back steps versions. Only the SQL strategy supports it.
func (m *Manager) Down(db *gorm.DB, steps int) error {
	s, ok := m.strategy.(*GolangMigrateStrategy)
	if !ok {
		return fmt.Errorf("strategy %s cannot roll back", m.strategy.GetName())
	}
	return s.MigrateDown(db, steps)
}

// Version reports the applied script version. AutoMigrate databases report 0.
func (m *Manager) Version(db *gorm.DB) (uint, bool, error) {
	s, ok := m.strategy.(*GolangMigrateStrategy)
	if !ok {
		return 0, false, nil
	}
	return s.GetVersion(db)
}

// Force sets the script version without running it.
func (m *Manager) Force(db *gorm.DB, version int) error {
	s, ok := m.strategy.(*GolangMigrateStrategy)
	if !ok {
		return fmt.Errorf("strategy %s has no versions", m.strategy.GetName())
	}
	return s.Force(db, version)
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}
