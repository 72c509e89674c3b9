package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/slaguard/internal/db"
	"github.com/alexanderramin/slaguard/internal/domain"
)

const decisionColumns = `id, work_item_id, technician_id, score, algorithm_version,
		decision_factors, alternative_candidates, assigned_by, created_at`

// SQLiteAssignmentDecisionRepo implements AssignmentDecisionRepo.
type SQLiteAssignmentDecisionRepo struct {
	db db.DBTX
}

func NewSQLiteAssignmentDecisionRepo(conn db.DBTX) *SQLiteAssignmentDecisionRepo {
	return &SQLiteAssignmentDecisionRepo{db: conn}
}

func (r *SQLiteAssignmentDecisionRepo) Create(ctx context.Context, d *domain.AssignmentDecision) error {
	factors, err := marshalJSON(d.Factors)
	if err != nil {
		return fmt.Errorf("encoding decision factors: %w", err)
	}
	alts := d.Alternatives
	if alts == nil {
		alts = []domain.CandidateScore{}
	}
	altStr, err := marshalJSON(alts)
	if err != nil {
		return fmt.Errorf("encoding alternatives: %w", err)
	}
	query := `INSERT INTO assignment_decisions (` + decisionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		d.ID,
		d.WorkItemID,
		d.TechnicianID,
		d.Score,
		d.AlgorithmVersion,
		factors,
		altStr,
		d.AssignedBy,
		formatTime(d.CreatedAt),
	)
	if err != nil {
		return storeErr("inserting assignment decision", err)
	}
	return nil
}

func (r *SQLiteAssignmentDecisionRepo) ListByWorkItem(ctx context.Context, workItemID string) ([]*domain.AssignmentDecision, error) {
	query := `SELECT ` + decisionColumns + ` FROM assignment_decisions
		WHERE work_item_id = ? ORDER BY created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, workItemID)
	if err != nil {
		return nil, storeErr("listing assignment decisions", err)
	}
	defer rows.Close()

	var out []*domain.AssignmentDecision
	for rows.Next() {
		var d domain.AssignmentDecision
		var factorsStr, altStr, createdAtStr string
		if err := rows.Scan(&d.ID, &d.WorkItemID, &d.TechnicianID, &d.Score, &d.AlgorithmVersion,
			&factorsStr, &altStr, &d.AssignedBy, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning assignment decision: %w", err)
		}
		if err := json.Unmarshal([]byte(factorsStr), &d.Factors); err != nil {
			return nil, fmt.Errorf("decoding decision factors: %w", err)
		}
		if err := json.Unmarshal([]byte(altStr), &d.Alternatives); err != nil {
			return nil, fmt.Errorf("decoding alternatives: %w", err)
		}
		if d.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating assignment decisions", err)
	}
	return out, nil
}
