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

const technicianColumns = `id, name, specialization, max_daily_tasks, location_preference,
		active, created_at, updated_at`

// SQLiteTechnicianRepo implements TechnicianRepo using a SQLite database.
// Specialization tags are stored as a JSON array.
type SQLiteTechnicianRepo struct {
	db db.DBTX
}

func NewSQLiteTechnicianRepo(conn db.DBTX) *SQLiteTechnicianRepo {
	return &SQLiteTechnicianRepo{db: conn}
}

func (r *SQLiteTechnicianRepo) Create(ctx context.Context, t *domain.Technician) error {
	spec, err := marshalJSON(nonNilTags(t.Specialization))
	if err != nil {
		return fmt.Errorf("encoding specialization: %w", err)
	}
	query := `INSERT INTO technicians (` + technicianColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		t.ID,
		t.Name,
		spec,
		t.MaxDailyTasks,
		t.LocationPreference,
		boolToInt(t.Active),
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		return storeErr("inserting technician", err)
	}
	return nil
}

func (r *SQLiteTechnicianRepo) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+technicianColumns+` FROM technicians WHERE id = ?`, id)
	t, err := scanTechnician(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("technician: %w", ErrNotFound)
		}
		return nil, storeErr("scanning technician", err)
	}
	return t, nil
}

func (r *SQLiteTechnicianRepo) Update(ctx context.Context, t *domain.Technician) error {
	spec, err := marshalJSON(nonNilTags(t.Specialization))
	if err != nil {
		return fmt.Errorf("encoding specialization: %w", err)
	}
	query := `UPDATE technicians SET name = ?, specialization = ?, max_daily_tasks = ?,
		location_preference = ?, active = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		t.Name,
		spec,
		t.MaxDailyTasks,
		t.LocationPreference,
		boolToInt(t.Active),
		formatTime(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return storeErr("updating technician", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("technician %s: %w", t.ID, ErrNotFound)
	}
	return nil
}

func (r *SQLiteTechnicianRepo) List(ctx context.Context, activeOnly bool) ([]*domain.Technician, error) {
	query := `SELECT ` + technicianColumns + ` FROM technicians`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("listing technicians", err)
	}
	defer rows.Close()

	var techs []*domain.Technician
	for rows.Next() {
		t, err := scanTechnician(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning technician row: %w", err)
		}
		techs = append(techs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterating technicians", err)
	}
	return techs, nil
}

func scanTechnician(s rowScanner) (*domain.Technician, error) {
	var t domain.Technician
	var specStr, createdAtStr, updatedAtStr string
	var activeInt int
	if err := s.Scan(&t.ID, &t.Name, &specStr, &t.MaxDailyTasks, &t.LocationPreference,
		&activeInt, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(specStr), &t.Specialization); err != nil {
		return nil, fmt.Errorf("decoding specialization: %w", err)
	}
	t.Active = intToBool(activeInt)

	var err error
	if t.CreatedAt, err = parseTime("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &t, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
