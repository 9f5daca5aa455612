package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed schema.sql
var initialSchema string

// Migrator handles database schema migrations
type Migrator interface {
	// Migrate applies all pending migrations
	Migrate(ctx context.Context) error

	// CurrentVersion returns the current schema version
	CurrentVersion(ctx context.Context) (int, error)

	// Rollback rolls back to a target version
	Rollback(ctx context.Context, targetVersion int) error

	// GetAppliedMigrations returns a list of all applied migrations
	GetAppliedMigrations(ctx context.Context) ([]MigrationInfo, error)
}

// migration represents a single database migration
type migration struct {
	version int
	name    string
	up      string
	down    string
}

// migrator implements the Migrator interface
type migrator struct {
	db         *DB
	migrations []migration
}

// NewMigrator creates a new database migrator
func NewMigrator(db *DB) Migrator {
	return &migrator{
		db:         db,
		migrations: getMigrations(),
	}
}

// getMigrations returns all available migrations in order
func getMigrations() []migration {
	migrations := []migration{
		{
			version: 1,
			name:    "initial_schema",
			up:      initialSchema,
			down:    getDownMigration1(),
		},
		{
			version: 2,
			name:    "default_settings",
			up:      getDefaultSettingsSchema(),
			down:    getDownMigration2(),
		},
		{
			version: 3,
			name:    "default_user",
			up:      getDefaultUserSchema(),
			down:    getDownMigration3(),
		},
		{
			version: 4,
			name:    "default_board",
			up:      getDefaultBoardSchema(),
			down:    getDownMigration4(),
		},
		// Future migrations will be added here
	}

	// Sort by version to ensure correct order
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})

	return migrations
}

// getDownMigration1 returns the rollback SQL for migration 1
func getDownMigration1() string {
	return `
-- Drop indexes
DROP INDEX IF EXISTS idx_files_user;
DROP INDEX IF EXISTS idx_usage_created;
DROP INDEX IF EXISTS idx_usage_user;
DROP INDEX IF EXISTS idx_usage_meeting;
DROP INDEX IF EXISTS idx_opinions_agent;
DROP INDEX IF EXISTS idx_opinions_meeting;
DROP INDEX IF EXISTS idx_meetings_status;
DROP INDEX IF EXISTS idx_meetings_user;
DROP INDEX IF EXISTS idx_agents_chair;
DROP INDEX IF EXISTS idx_agents_active;

-- Drop tables (do NOT drop migrations table - it's managed separately)
DROP TABLE IF EXISTS settings;
DROP TABLE IF EXISTS company_files;
DROP TABLE IF EXISTS token_usage;
DROP TABLE IF EXISTS opinions;
DROP TABLE IF EXISTS meetings;
DROP TABLE IF EXISTS agents;
DROP TABLE IF EXISTS users;
`
}

// getDefaultSettingsSchema seeds the settings table with the chair defaults
// used when no chair agent has been configured
func getDefaultSettingsSchema() string {
	return `
-- Default chair configuration, replaced by the admin UI when customized
INSERT OR IGNORE INTO settings (key, value) VALUES
    ('chair.model', '"gpt-4o"'),
    ('chair.name', '"The Chair"'),
    ('board.default_model', '"gpt-4o-mini"');
`
}

// getDownMigration2 returns the rollback SQL for migration 2
func getDownMigration2() string {
	return `
DELETE FROM settings WHERE key IN ('chair.model', 'chair.name', 'board.default_model');
`
}

// getDefaultUserSchema seeds a local user so single-user installs work
// without a registration step
func getDefaultUserSchema() string {
	return `
INSERT OR IGNORE INTO users (id, email, username, is_admin) VALUES
    (1, 'local@boardroom', 'local', 1);
`
}

// getDownMigration3 returns the rollback SQL for migration 3
func getDownMigration3() string {
	return `
DELETE FROM users WHERE id = 1 AND email = 'local@boardroom';
`
}

// getDefaultBoardSchema seeds the starter board roster and chair. IDs are
// fixed so reinstalls don't duplicate members.
func getDefaultBoardSchema() string {
	return `
INSERT OR IGNORE INTO agents (id, name, role, system_prompt, weights, model, avatar_color, is_active, is_chair, created_by) VALUES
    ('a1000000-0000-4000-8000-000000000001', 'Alexandra Sterling', 'CFO',
     'You are a seasoned Chief Financial Officer with 20+ years of experience in corporate finance, M&A, and financial strategy. You focus on ROI, cash flow management, risk assessment, and shareholder value. You''re analytically rigorous and always consider the financial implications of decisions.',
     '{"finance": 0.8, "technology": 0.1, "operations": 0.3, "people_hr": 0.1, "logistics": 0.2}',
     'gpt-4o-mini', '#10b981', 1, 0, 1),
    ('a1000000-0000-4000-8000-000000000002', 'Marcus Chen', 'CTO',
     'You are a visionary Chief Technology Officer with deep expertise in software architecture, AI/ML, cloud infrastructure, and digital transformation. You evaluate decisions through the lens of technical feasibility, scalability, security, and innovation potential.',
     '{"finance": 0.2, "technology": 0.9, "operations": 0.4, "people_hr": 0.2, "logistics": 0.1}',
     'gpt-4o-mini', '#6366f1', 1, 0, 1),
    ('a1000000-0000-4000-8000-000000000003', 'Sarah Mitchell', 'CPO',
     'You are an experienced Chief Product Officer who has launched successful products at Fortune 500 companies. You think in terms of product-market fit, user experience, competitive positioning, and go-to-market strategy. Customer value is your north star.',
     '{"finance": 0.3, "technology": 0.5, "operations": 0.4, "people_hr": 0.2, "logistics": 0.2}',
     'gpt-4o-mini', '#f59e0b', 1, 0, 1),
    ('a1000000-0000-4000-8000-000000000004', 'David Okonkwo', 'COO',
     'You are a methodical Chief Operating Officer who excels at operational excellence, process optimization, and scaling organizations. You focus on efficiency, quality control, supply chain management, and execution excellence.',
     '{"finance": 0.3, "technology": 0.2, "operations": 0.9, "people_hr": 0.3, "logistics": 0.7}',
     'gpt-4o-mini', '#ef4444', 1, 0, 1),
    ('a1000000-0000-4000-8000-000000000005', 'Elena Rodriguez', 'CHRO',
     'You are a people-focused Chief Human Resources Officer with expertise in talent management, organizational culture, leadership development, and employee engagement. You consider the human impact of every decision and advocate for sustainable, people-first practices.',
     '{"finance": 0.2, "technology": 0.1, "operations": 0.3, "people_hr": 0.9, "logistics": 0.1}',
     'gpt-4o-mini', '#ec4899', 1, 0, 1),
    ('a1000000-0000-4000-8000-000000000006', 'James Thompson', 'Chief Architect',
     'You are a brilliant Enterprise Architect with deep knowledge of system design, integration patterns, and technical strategy. You think in terms of long-term architecture decisions, technical debt, microservices, and enterprise-grade solutions.',
     '{"finance": 0.1, "technology": 0.8, "operations": 0.5, "people_hr": 0.1, "logistics": 0.2}',
     'gpt-4o-mini', '#8b5cf6', 1, 0, 1),
    ('a1000000-0000-4000-8000-00000000c4a1', 'Board Chair', 'Chair of the Board',
     'You are the Chair of the Board of Directors. Your role is to synthesize the opinions of all board members and provide a unified recommendation.

You must:
1. Consider all perspectives presented by board members
2. Weigh opinions based on their confidence levels and relevance to their expertise
3. Identify areas of consensus and disagreement
4. Formulate a clear, actionable recommendation',
     '{"finance": 0.2, "technology": 0.2, "operations": 0.2, "people_hr": 0.2, "logistics": 0.2}',
     'gpt-4o', '#f59e0b', 1, 1, 1);
`
}

// getDownMigration4 returns the rollback SQL for migration 4
func getDownMigration4() string {
	return `
DELETE FROM agents WHERE id LIKE 'a1000000-0000-4000-8000-%';
`
}

// Migrate applies all pending migrations
func (m *migrator) Migrate(ctx context.Context) error {
	// Ensure migrations table exists
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Get current version
	currentVersion, err := m.CurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	// Apply pending migrations
	for _, mig := range m.migrations {
		if mig.version <= currentVersion {
			continue // Skip already applied migrations
		}

		if err := m.applyMigration(ctx, mig); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", mig.version, mig.name, err)
		}
	}

	return nil
}

// CurrentVersion returns the current schema version
func (m *migrator) CurrentVersion(ctx context.Context) (int, error) {
	// Ensure migrations table exists
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return 0, fmt.Errorf("failed to ensure migrations table: %w", err)
	}

	var version int
	query := "SELECT COALESCE(MAX(version), 0) FROM migrations"
	err := m.db.conn.QueryRowContext(ctx, query).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to query current version: %w", err)
	}

	return version, nil
}

// Rollback rolls back to a target version
func (m *migrator) Rollback(ctx context.Context, targetVersion int) error {
	if targetVersion < 0 {
		return fmt.Errorf("invalid target version: %d", targetVersion)
	}

	// Get current version
	currentVersion, err := m.CurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	if targetVersion > currentVersion {
		return fmt.Errorf("cannot rollback to future version %d (current: %d)", targetVersion, currentVersion)
	}

	// Rollback migrations in reverse order
	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if mig.version <= targetVersion {
			break
		}
		if mig.version > currentVersion {
			continue // Skip unapplied migrations
		}

		if err := m.rollbackMigration(ctx, mig); err != nil {
			return fmt.Errorf("failed to rollback migration %d (%s): %w", mig.version, mig.name, err)
		}
	}

	return nil
}

// GetAppliedMigrations returns a list of all applied migrations
func (m *migrator) GetAppliedMigrations(ctx context.Context) ([]MigrationInfo, error) {
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure migrations table: %w", err)
	}

	query := "SELECT version, name, applied_at FROM migrations ORDER BY version"
	rows, err := m.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	var migrations []MigrationInfo
	for rows.Next() {
		var info MigrationInfo
		if err := rows.Scan(&info.Version, &info.Name, &info.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		migrations = append(migrations, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migrations: %w", err)
	}

	return migrations, nil
}

// MigrationInfo contains information about an applied migration
type MigrationInfo struct {
	Version   int
	Name      string
	AppliedAt string
}

// ensureMigrationsTable creates the migrations table if it doesn't exist
func (m *migrator) ensureMigrationsTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	_, err := m.db.conn.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	return nil
}

// applyMigration applies a single migration within a transaction
func (m *migrator) applyMigration(ctx context.Context, mig migration) error {
	return m.db.WithTx(ctx, func(tx *sql.Tx) error {
		statements := splitSQL(mig.up)
		for _, stmt := range statements {
			cleanStmt := removeComments(strings.TrimSpace(stmt))
			if cleanStmt == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, cleanStmt); err != nil {
				return fmt.Errorf("failed to execute statement: %w\nStatement: %s", err, cleanStmt)
			}
		}

		// Record migration in migrations table
		_, err := tx.ExecContext(ctx,
			"INSERT INTO migrations (version, name, applied_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
			mig.version, mig.name)
		if err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}

		return nil
	})
}

// rollbackMigration rolls back a single migration within a transaction
func (m *migrator) rollbackMigration(ctx context.Context, mig migration) error {
	return m.db.WithTx(ctx, func(tx *sql.Tx) error {
		statements := splitSQL(mig.down)
		for _, stmt := range statements {
			cleanStmt := removeComments(strings.TrimSpace(stmt))
			if cleanStmt == "" {
				continue
			}
			if _, err := tx.ExecContext(ctx, cleanStmt); err != nil {
				return fmt.Errorf("failed to execute rollback statement: %w\nStatement: %s", err, cleanStmt)
			}
		}

		// Remove migration record
		_, err := tx.ExecContext(ctx, "DELETE FROM migrations WHERE version = ?", mig.version)
		if err != nil {
			return fmt.Errorf("failed to remove migration record: %w", err)
		}

		return nil
	})
}

// splitSQL splits a SQL script into individual statements, respecting
// string literals so embedded semicolons don't break a statement apart
func splitSQL(script string) []string {
	var statements []string
	var current strings.Builder
	inString := false
	stringChar := rune(0)

	for i, ch := range script {
		switch {
		case ch == '\'' || ch == '"':
			if !inString {
				inString = true
				stringChar = ch
			} else if ch == stringChar {
				if i > 0 && script[i-1] != '\\' {
					inString = false
				}
			}
			current.WriteRune(ch)

		case ch == ';' && !inString:
			stmt := strings.TrimSpace(current.String())
			if stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()

		default:
			current.WriteRune(ch)
		}
	}

	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}

// removeComments strips SQL comment lines from a statement
func removeComments(stmt string) string {
	var result strings.Builder
	for _, line := range strings.Split(stmt, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") {
			continue
		}
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		if strings.TrimSpace(line) != "" {
			result.WriteString(line)
			result.WriteString("\n")
		}
	}
	return strings.TrimSpace(result.String())
}
