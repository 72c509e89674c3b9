package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/alexanderramin/slaguard/internal/domain"
)

const violationColumns = `id, work_item_id, rule_id, severity, violation_data, dedup_key,
		resolved, resolved_at, dispatched_at, created_at`

// SQLiteViolationRepo implements ViolationRepo. The UNIQUE dedup_key column
// enforces one record per item, rule and day.
type SQLiteViolationRepo struct {
	db db.DBTX
}

func NewSQLiteViolationRepo(conn db.DBTX) *SQLiteViolationRepo {
	return &SQLiteViolationRepo{db: conn}
}

func (r *SQLiteViolationRepo) Record(ctx context.Context, v *domain.Violation) (*domain.Violation, RecordOutcome, error) {
	data, err := marshalJSON(v.Data)
	if err != nil {
		return nil, RecordExisting, fmt.Errorf("encoding violation data: %w", err)
	}
	query := `INSERT INTO violations (` + violationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(dedup_key) DO NOTHING`
	res, err := r.db.ExecContext(ctx, query,
		v.ID,
		v.WorkItemID,
		v.RuleID,
		string(v.Severity),
		data,
		v.DedupKey,
		boolToInt(v.Resolved),
		nullableTimeToString(v.ResolvedAt, time.RFC3339),
		nullableTimeToString(v.DispatchedAt, time.RFC3339),
		formatTime(v.CreatedAt),
	)
	if err != nil {
		return nil, RecordExisting, storeErr("recording violation", err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return v, RecordCreated, nil
	}

	existing, err := r.getByDedupKey(ctx, v.DedupKey)
	if err != nil {
		return nil, RecordExisting, err
	}
	if existing.Resolved {
		_, err := r.db.ExecContext(ctx,
			`UPDATE violations SET resolved = 0, resolved_at = NULL WHERE id = ?`, existing.ID)
		if err != nil {
			return nil, RecordExisting, storeErr("reopening violation", err)
		}
		existing.Resolved = false
		existing.ResolvedAt = nil
		return existing, RecordReopened, nil
	}
	return existing, RecordExisting, nil
}

func (r *SQLiteViolationRepo) GetByID(ctx context.Context, id string) (*domain.Violation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+violationColumns+` FROM violations WHERE id = ?`, id)
	return scanViolationSingle(row)
}

func (r *SQLiteViolationRepo) getByDedupKey(ctx context.Context, key string) (*domain.Violation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+violationColumns+` FROM violations WHERE dedup_key = ?`, key)
	return scanViolationSingle(row)
}

func (r *SQLiteViolationRepo) ListUnresolved(ctx context.Context) ([]*domain.Violation, error) {
	resolved := false
	return r.List(ctx, ViolationFilter{Resolved: &resolved})
}

func (r *SQLiteViolationRepo) Resolve(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE violations SET resolved = 1, resolved_at = ? WHERE id = ? AND resolved = 0`,
		formatTime(at), id)
	if err != nil {
		return storeErr("resolving violation", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("unresolved violation %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkDispatched stamps the violation as fully dispatched. Stamping an
// already dispatched violation keeps the first timestamp.
func (r *SQLiteViolationRepo) MarkDispatched(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE violations SET dispatched_at = ? WHERE id = ? AND dispatched_at IS NULL`,
		formatTime(at), id)
	if err != nil {
		return storeErr("marking violation dispatched", err)
	}
	return nil
}

func (r *SQLiteViolationRepo) List(ctx context.Context, f ViolationFilter) ([]*domain.Violation, error) {
	var where whereBuilder
	if f.WorkItemID != "" {
		where.add(`work_item_id = ?`, f.WorkItemID)
	}
	if f.RuleID != "" {
		where.add(`rule_id = ?`, f.RuleID)
	}
	if f.From != nil {
		where.add(`created_at >= ?`, formatTime(*f.From))
	}
	if f.To != nil {
		where.add(`created_at < ?`, formatTime(*f.To))
	}
	if f.Resolved != nil {
		where.add(`resolved = ?`, boolToInt(*f.Resolved))
	}
	query := `SELECT ` + violationColumns + ` FROM violations` + where.sql() +
		` ORDER BY created_at, id` + limitClause(f.Limit)

	rows, err := r.db.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, storeErr("listing violations", err)
	}
	defer rows.Close()

	var out []*domain.Violation
	for rows.Next() {
		v, err := scanViolation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning violation row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating violations", err)
	}
	return out, nil
}

func (r *SQLiteViolationRepo) CountBetween(ctx context.Context, start, end time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM violations WHERE created_at >= ? AND created_at < ?`,
		formatTime(start), formatTime(end)).Scan(&n)
	if err != nil {
		return 0, storeErr("counting violations", err)
	}
	return n, nil
}

func (r *SQLiteViolationRepo) DailyStats(ctx context.Context, since time.Time) ([]domain.DailyViolationStat, error) {
	query := `SELECT substr(created_at, 1, 10) AS day, severity, COUNT(*)
		FROM violations
		WHERE created_at >= ?
		GROUP BY day, severity
		ORDER BY day DESC, severity`
	rows, err := r.db.QueryContext(ctx, query, formatTime(since))
	if err != nil {
		return nil, storeErr("aggregating violation stats", err)
	}
	defer rows.Close()

	var stats []domain.DailyViolationStat
	for rows.Next() {
		var s domain.DailyViolationStat
		var sev string
		if err := rows.Scan(&s.Day, &sev, &s.Count); err != nil {
			return nil, fmt.Errorf("scanning violation stat: %w", err)
		}
		s.Severity = domain.Severity(sev)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating violation stats", err)
	}
	return stats, nil
}

func scanViolationSingle(row *sql.Row) (*domain.Violation, error) {
	v, err := scanViolation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("violation: %w", ErrNotFound)
		}
		return nil, storeErr("scanning violation", err)
	}
	return v, nil
}

func scanViolation(s rowScanner) (*domain.Violation, error) {
	var v domain.Violation
	var severityStr, dataStr, createdAtStr string
	var resolvedInt int
	var resolvedAtStr, dispatchedAtStr sql.NullString
	if err := s.Scan(&v.ID, &v.WorkItemID, &v.RuleID, &severityStr, &dataStr, &v.DedupKey,
		&resolvedInt, &resolvedAtStr, &dispatchedAtStr, &createdAtStr); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(dataStr), &v.Data); err != nil {
		return nil, fmt.Errorf("decoding violation data: %w", err)
	}
	v.Severity = domain.Severity(severityStr)
	v.Resolved = intToBool(resolvedInt)
	v.ResolvedAt = parseNullableTime(resolvedAtStr, time.RFC3339)
	v.DispatchedAt = parseNullableTime(dispatchedAtStr, time.RFC3339)

	var err error
	if v.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return nil, err
	}
	return &v, nil
}
