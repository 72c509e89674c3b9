package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/alexanderramin/slaguard/internal/domain"
)

const ruleColumns = `id, name, description, conditions, actions, severity, enabled, priority,
		created_at, updated_at`

// SQLiteRuleRepo implements RuleRepo. Conditions and actions are stored as
// JSON arrays of their tagged specs and decoded back into closed variants.
type SQLiteRuleRepo struct {
	db db.DBTX
}

func NewSQLiteRuleRepo(conn db.DBTX) *SQLiteRuleRepo {
	return &SQLiteRuleRepo{db: conn}
}

func (r *SQLiteRuleRepo) Create(ctx context.Context, rule *domain.Rule) error {
	conds, actions, err := encodeRuleBody(rule)
	if err != nil {
		return err
	}
	query := `INSERT INTO rules (` + ruleColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		rule.ID,
		rule.Name,
		rule.Description,
		conds,
		actions,
		string(rule.Severity),
		boolToInt(rule.Enabled),
		rule.Priority,
		formatTime(rule.CreatedAt),
		formatTime(rule.UpdatedAt),
	)
	if err != nil {
		return storeErr("inserting rule", err)
	}
	return nil
}

func (r *SQLiteRuleRepo) GetByID(ctx context.Context, id string) (*domain.Rule, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM rules WHERE id = ?`, id)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("rule: %w", ErrNotFound)
		}
		return nil, storeErr("scanning rule", err)
	}
	return rule, nil
}

func (r *SQLiteRuleRepo) Update(ctx context.Context, rule *domain.Rule) error {
	conds, actions, err := encodeRuleBody(rule)
	if err != nil {
		return err
	}
	query := `UPDATE rules SET name = ?, description = ?, conditions = ?, actions = ?,
		severity = ?, enabled = ?, priority = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		rule.Name,
		rule.Description,
		conds,
		actions,
		string(rule.Severity),
		boolToInt(rule.Enabled),
		rule.Priority,
		formatTime(rule.UpdatedAt),
		rule.ID,
	)
	if err != nil {
		return storeErr("updating rule", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rule %s: %w", rule.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRuleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return storeErr("deleting rule", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRuleRepo) List(ctx context.Context, enabledOnly bool) ([]*domain.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules`
	if enabledOnly {
		query += ` WHERE enabled = 1`
	}
	query += ` ORDER BY priority DESC, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("listing rules", err)
	}
	defer rows.Close()

	var rules []*domain.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rule row: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating rules", err)
	}
	return rules, nil
}

func encodeRuleBody(rule *domain.Rule) (conds, actions string, err error) {
	conds, err = marshalJSON(domain.EncodeConditions(rule.Conditions))
	if err != nil {
		return "", "", fmt.Errorf("encoding conditions: %w", err)
	}
	actions, err = marshalJSON(domain.EncodeActions(rule.Actions))
	if err != nil {
		return "", "", fmt.Errorf("encoding actions: %w", err)
	}
	return conds, actions, nil
}

func scanRule(s rowScanner) (*domain.Rule, error) {
	var rule domain.Rule
	var condStr, actionStr, severityStr, createdAtStr, updatedAtStr string
	var enabledInt int
	if err := s.Scan(&rule.ID, &rule.Name, &rule.Description, &condStr, &actionStr,
		&severityStr, &enabledInt, &rule.Priority, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}

	var condSpecs []domain.ConditionSpec
	if err := json.Unmarshal([]byte(condStr), &condSpecs); err != nil {
		return nil, fmt.Errorf("decoding conditions of rule %s: %w", rule.ID, err)
	}
	var actionSpecs []domain.ActionSpec
	if err := json.Unmarshal([]byte(actionStr), &actionSpecs); err != nil {
		return nil, fmt.Errorf("decoding actions of rule %s: %w", rule.ID, err)
	}

	var err error
	if rule.Conditions, err = domain.DecodeConditions(rule.ID, condSpecs); err != nil {
		return nil, err
	}
	if rule.Actions, err = domain.DecodeActions(rule.ID, actionSpecs); err != nil {
		return nil, err
	}
	rule.Severity = domain.Severity(severityStr)
	rule.Enabled = intToBool(enabledInt)

	if rule.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if rule.UpdatedAt, err = parseTime("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &rule, nil
}
