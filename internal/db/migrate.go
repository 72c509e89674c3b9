package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS technicians (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL,
		specialization      TEXT NOT NULL DEFAULT '[]',
		max_daily_tasks     INTEGER NOT NULL DEFAULT 8 CHECK(max_daily_tasks >= 0),
		location_preference TEXT NOT NULL DEFAULT '',
		active              INTEGER NOT NULL DEFAULT 1,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS work_items (
		id                     TEXT PRIMARY KEY,
		title                  TEXT NOT NULL,
		priority               TEXT NOT NULL DEFAULT 'medium'
		                       CHECK(priority IN ('low','medium','high','critical')),
		status                 TEXT NOT NULL DEFAULT 'pending'
		                       CHECK(status IN ('pending','scheduled','in_progress','completed','cancelled')),
		required_skill         TEXT NOT NULL DEFAULT '',
		location               TEXT NOT NULL DEFAULT '',
		assigned_technician_id TEXT REFERENCES technicians(id) ON DELETE SET NULL,
		due_deadline           TEXT,
		violation_count        INTEGER NOT NULL DEFAULT 0,
		escalated_to           TEXT,
		escalated_at           TEXT,
		status_changed_at      TEXT,
		completed_at           TEXT,
		created_at             TEXT NOT NULL,
		updated_at             TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_work_items_status ON work_items(status)`,
	`CREATE INDEX IF NOT EXISTS idx_work_items_assigned ON work_items(assigned_technician_id)`,
	`CREATE INDEX IF NOT EXISTS idx_work_items_created ON work_items(created_at)`,

	`CREATE TABLE IF NOT EXISTS rules (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		conditions  TEXT NOT NULL,
		actions     TEXT NOT NULL,
		severity    TEXT NOT NULL
		            CHECK(severity IN ('low','medium','high','critical')),
		enabled     INTEGER NOT NULL DEFAULT 1,
		priority    INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS violations (
		id             TEXT PRIMARY KEY,
		work_item_id   TEXT NOT NULL REFERENCES work_items(id),
		rule_id        TEXT NOT NULL,
		severity       TEXT NOT NULL
		               CHECK(severity IN ('low','medium','high','critical')),
		violation_data TEXT NOT NULL DEFAULT '{}',
		dedup_key      TEXT NOT NULL UNIQUE,
		resolved       INTEGER NOT NULL DEFAULT 0,
		resolved_at    TEXT,
		created_at     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_violations_item ON violations(work_item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_violations_unresolved ON violations(resolved) WHERE resolved = 0`,
	`CREATE INDEX IF NOT EXISTS idx_violations_created ON violations(created_at)`,

	`CREATE TABLE IF NOT EXISTS action_log (
		id           TEXT PRIMARY KEY,
		work_item_id TEXT NOT NULL REFERENCES work_items(id),
		violation_id TEXT REFERENCES violations(id),
		action_type  TEXT NOT NULL
		             CHECK(action_type IN ('escalate','notify','reassign','priority_boost','log')),
		action_data  TEXT NOT NULL DEFAULT '{}',
		message      TEXT NOT NULL DEFAULT '',
		success      INTEGER NOT NULL DEFAULT 1,
		executed_by  TEXT NOT NULL DEFAULT 'system',
		executed_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_action_log_item ON action_log(work_item_id)`,
	`CREATE INDEX IF NOT EXISTS idx_action_log_executed ON action_log(executed_at)`,

	`CREATE TABLE IF NOT EXISTS assignment_decisions (
		id                     TEXT PRIMARY KEY,
		work_item_id           TEXT NOT NULL REFERENCES work_items(id),
		technician_id          TEXT NOT NULL REFERENCES technicians(id),
		score                  REAL NOT NULL,
		algorithm_version      TEXT NOT NULL,
		decision_factors       TEXT NOT NULL DEFAULT '{}',
		alternative_candidates TEXT NOT NULL DEFAULT '[]',
		assigned_by            TEXT NOT NULL DEFAULT 'system',
		created_at             TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_assignment_decisions_item ON assignment_decisions(work_item_id)`,

	// Priority boost bookkeeping and rule linkage on the action log
	`ALTER TABLE work_items ADD COLUMN priority_boosted_at TEXT`,
	`ALTER TABLE action_log ADD COLUMN rule_id TEXT`,

	// Set once every action of the rule has a log entry; unset rows are
	// picked up again by the next sweep.
	`ALTER TABLE violations ADD COLUMN dispatched_at TEXT`,
}
