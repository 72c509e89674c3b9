package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/alexanderramin/slaguard/internal/domain"
)

const actionLogColumns = `id, work_item_id, violation_id, rule_id, action_type, action_data,
		message, success, executed_by, executed_at`

// SQLiteActionLogRepo implements ActionLogRepo. The table is append-only;
// there is no update or delete path.
type SQLiteActionLogRepo struct {
	db db.DBTX
}

func NewSQLiteActionLogRepo(conn db.DBTX) *SQLiteActionLogRepo {
	return &SQLiteActionLogRepo{db: conn}
}

func (r *SQLiteActionLogRepo) Append(ctx context.Context, e *domain.ActionLogEntry) error {
	data := e.ActionData
	if data == nil {
		data = map[string]any{}
	}
	dataStr, err := marshalJSON(data)
	if err != nil {
		return fmt.Errorf("encoding action data: %w", err)
	}
	query := `INSERT INTO action_log (` + actionLogColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		e.ID,
		e.WorkItemID,
		nullableString(e.ViolationID),
		nullableString(e.RuleID),
		string(e.ActionType),
		dataStr,
		e.Message,
		boolToInt(e.Success),
		e.ExecutedBy,
		formatTime(e.ExecutedAt),
	)
	if err != nil {
		return storeErr("appending action log entry", err)
	}
	return nil
}

func (r *SQLiteActionLogRepo) List(ctx context.Context, f ActionLogFilter) ([]*domain.ActionLogEntry, error) {
	var where whereBuilder
	if f.WorkItemID != "" {
		where.add(`work_item_id = ?`, f.WorkItemID)
	}
	if f.RuleID != "" {
		where.add(`rule_id = ?`, f.RuleID)
	}
	if f.ViolationID != "" {
		where.add(`violation_id = ?`, f.ViolationID)
	}
	if f.From != nil {
		where.add(`executed_at >= ?`, formatTime(*f.From))
	}
	if f.To != nil {
		where.add(`executed_at < ?`, formatTime(*f.To))
	}
	query := `SELECT ` + actionLogColumns + ` FROM action_log` + where.sql() +
		` ORDER BY executed_at, rowid` + limitClause(f.Limit)

	rows, err := r.db.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, storeErr("listing action log", err)
	}
	defer rows.Close()

	var out []*domain.ActionLogEntry
	for rows.Next() {
		e, err := scanActionLogEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning action log row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating action log", err)
	}
	return out, nil
}

func (r *SQLiteActionLogRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM action_log`).Scan(&n); err != nil {
		return 0, storeErr("counting action log", err)
	}
	return n, nil
}

func scanActionLogEntry(s rowScanner) (*domain.ActionLogEntry, error) {
	var e domain.ActionLogEntry
	var violationStr, ruleStr sql.NullString
	var typeStr, dataStr, executedAtStr string
	var successInt int
	if err := s.Scan(&e.ID, &e.WorkItemID, &violationStr, &ruleStr, &typeStr, &dataStr,
		&e.Message, &successInt, &e.ExecutedBy, &executedAtStr); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(dataStr), &e.ActionData); err != nil {
		return nil, fmt.Errorf("decoding action data: %w", err)
	}
	e.ViolationID = parseNullableString(violationStr)
	e.RuleID = parseNullableString(ruleStr)
	e.ActionType = domain.ActionKind(typeStr)
	e.Success = intToBool(successInt)

	var err error
	if e.ExecutedAt, err = parseTime("executed_at", executedAtStr); err != nil {
		return nil, err
	}
	return &e, nil
}
