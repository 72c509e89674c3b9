package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/alexanderramin/slaguard/internal/domain"
)

// workItemColumns is the canonical SELECT column list for work_items.
const workItemColumns = `id, title, priority, status, required_skill, location,
		assigned_technician_id, due_deadline, violation_count, escalated_to, escalated_at,
		priority_boosted_at, status_changed_at, completed_at, created_at, updated_at`

const openStatusPredicate = `status NOT IN ('completed','cancelled')`

// SQLiteWorkItemRepo implements WorkItemRepo using a SQLite database.
type SQLiteWorkItemRepo struct {
	db db.DBTX
}

// NewSQLiteWorkItemRepo creates a new SQLiteWorkItemRepo.
func NewSQLiteWorkItemRepo(conn db.DBTX) *SQLiteWorkItemRepo {
	return &SQLiteWorkItemRepo{db: conn}
}

func (r *SQLiteWorkItemRepo) Create(ctx context.Context, w *domain.WorkItem) error {
	query := `INSERT INTO work_items (` + workItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		w.ID,
		w.Title,
		string(w.Priority),
		string(w.Status),
		w.RequiredSkill,
		w.Location,
		nullableString(w.AssignedTechnicianID),
		nullableTimeToString(w.DueDeadline, time.RFC3339),
		w.ViolationCount,
		nullableString(w.EscalatedTo),
		nullableTimeToString(w.EscalatedAt, time.RFC3339),
		nullableTimeToString(w.PriorityBoostedAt, time.RFC3339),
		nullableTimeToString(w.StatusChangedAt, time.RFC3339),
		nullableTimeToString(w.CompletedAt, time.RFC3339),
		formatTime(w.CreatedAt),
		formatTime(w.UpdatedAt),
	)
	if err != nil {
		return storeErr("inserting work item", err)
	}
	return nil
}

func (r *SQLiteWorkItemRepo) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanWorkItem(row)
}

// Update writes every mutable field. violation_count is owned by
// IncrementViolationCount and is never lowered here.
func (r *SQLiteWorkItemRepo) Update(ctx context.Context, w *domain.WorkItem) error {
	query := `UPDATE work_items SET title = ?, priority = ?, status = ?, required_skill = ?, location = ?,
		assigned_technician_id = ?, due_deadline = ?, violation_count = MAX(violation_count, ?),
		escalated_to = ?, escalated_at = ?, priority_boosted_at = ?, status_changed_at = ?,
		completed_at = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		w.Title,
		string(w.Priority),
		string(w.Status),
		w.RequiredSkill,
		w.Location,
		nullableString(w.AssignedTechnicianID),
		nullableTimeToString(w.DueDeadline, time.RFC3339),
		w.ViolationCount,
		nullableString(w.EscalatedTo),
		nullableTimeToString(w.EscalatedAt, time.RFC3339),
		nullableTimeToString(w.PriorityBoostedAt, time.RFC3339),
		nullableTimeToString(w.StatusChangedAt, time.RFC3339),
		nullableTimeToString(w.CompletedAt, time.RFC3339),
		formatTime(w.UpdatedAt),
		w.ID,
	)
	if err != nil {
		return storeErr("updating work item", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("work item %s: %w", w.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteWorkItemRepo) List(ctx context.Context, f WorkItemFilter) ([]*domain.WorkItem, error) {
	var where whereBuilder
	if f.Status != "" {
		where.add(`status = ?`, string(f.Status))
	} else if !f.IncludeTerminal {
		where.add(openStatusPredicate)
	}
	if f.TechnicianID != "" {
		where.add(`assigned_technician_id = ?`, f.TechnicianID)
	}
	query := `SELECT ` + workItemColumns + ` FROM work_items` + where.sql() +
		` ORDER BY created_at, id` + limitClause(f.Limit)
	return r.query(ctx, "listing work items", query, where.args...)
}

func (r *SQLiteWorkItemRepo) ListActive(ctx context.Context) ([]*domain.WorkItem, error) {
	return r.List(ctx, WorkItemFilter{})
}

func (r *SQLiteWorkItemRepo) ListUnassigned(ctx context.Context) ([]*domain.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items
		WHERE assigned_technician_id IS NULL AND ` + openStatusPredicate + `
		ORDER BY created_at, id`
	return r.query(ctx, "listing unassigned work items", query)
}

func (r *SQLiteWorkItemRepo) ListTouchedBetween(ctx context.Context, start, end time.Time) ([]*domain.WorkItem, error) {
	s, e := formatTime(start), formatTime(end)
	query := `SELECT ` + workItemColumns + ` FROM work_items
		WHERE (created_at >= ? AND created_at < ?)
		   OR (completed_at >= ? AND completed_at < ?)
		   OR (escalated_at >= ? AND escalated_at < ?)
		ORDER BY created_at, id`
	return r.query(ctx, "listing work items in window", query, s, e, s, e, s, e)
}

func (r *SQLiteWorkItemRepo) AssignedCounts(ctx context.Context) (map[string]int, error) {
	query := `SELECT assigned_technician_id, COUNT(*) FROM work_items
		WHERE assigned_technician_id IS NOT NULL AND ` + openStatusPredicate + `
		GROUP BY assigned_technician_id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("counting assigned work items", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var techID string
		var n int
		if err := rows.Scan(&techID, &n); err != nil {
			return nil, fmt.Errorf("scanning assigned count: %w", err)
		}
		counts[techID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating assigned counts", err)
	}
	return counts, nil
}

func (r *SQLiteWorkItemRepo) IncrementViolationCount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE work_items SET violation_count = violation_count + 1 WHERE id = ?`, id)
	if err != nil {
		return storeErr("incrementing violation count", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("work item %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteWorkItemRepo) query(ctx context.Context, op, query string, args ...any) ([]*domain.WorkItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()
	return r.scanWorkItems(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanWorkItem scans a single work item from a *sql.Row.
func (r *SQLiteWorkItemRepo) scanWorkItem(row *sql.Row) (*domain.WorkItem, error) {
	w, err := scanWorkItemRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("work item: %w", ErrNotFound)
		}
		return nil, storeErr("scanning work item", err)
	}
	return w, nil
}

// scanWorkItems scans multiple work items from *sql.Rows.
func (r *SQLiteWorkItemRepo) scanWorkItems(rows *sql.Rows) ([]*domain.WorkItem, error) {
	var items []*domain.WorkItem
	for rows.Next() {
		w, err := scanWorkItemRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning work item row: %w", err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating work items", err)
	}
	return items, nil
}

func scanWorkItemRow(s rowScanner) (*domain.WorkItem, error) {
	var w domain.WorkItem
	var priorityStr, statusStr string
	var assignedStr, dueStr, escalatedToStr, escalatedAtStr sql.NullString
	var boostedStr, statusChangedStr, completedStr sql.NullString
	var createdAtStr, updatedAtStr string

	err := s.Scan(
		&w.ID, &w.Title, &priorityStr, &statusStr, &w.RequiredSkill, &w.Location,
		&assignedStr, &dueStr, &w.ViolationCount, &escalatedToStr, &escalatedAtStr,
		&boostedStr, &statusChangedStr, &completedStr, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	w.Priority = domain.Priority(priorityStr)
	w.Status = domain.WorkItemStatus(statusStr)
	w.AssignedTechnicianID = parseNullableString(assignedStr)
	w.DueDeadline = parseNullableTime(dueStr, time.RFC3339)
	w.EscalatedTo = parseNullableString(escalatedToStr)
	w.EscalatedAt = parseNullableTime(escalatedAtStr, time.RFC3339)
	w.PriorityBoostedAt = parseNullableTime(boostedStr, time.RFC3339)
	w.StatusChangedAt = parseNullableTime(statusChangedStr, time.RFC3339)
	w.CompletedAt = parseNullableTime(completedStr, time.RFC3339)

	if w.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if w.UpdatedAt, err = parseTime("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &w, nil
}
