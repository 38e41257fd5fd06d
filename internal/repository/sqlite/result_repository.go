package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"health-metrics/internal/domain"
	"health-metrics/internal/repository"
)

const createResultsTable = `
CREATE TABLE IF NOT EXISTS test_results (
	result_id INTEGER PRIMARY KEY AUTOINCREMENT,
	patient_id INTEGER NOT NULL,
	item_id INTEGER NOT NULL,
	technician_id INTEGER NOT NULL,
	score REAL NOT NULL,
	test_date TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	FOREIGN KEY (patient_id) REFERENCES users(user_id) ON DELETE CASCADE,
	FOREIGN KEY (item_id) REFERENCES test_items(item_id) ON DELETE CASCADE,
	FOREIGN KEY (technician_id) REFERENCES users(user_id) ON DELETE CASCADE,
	UNIQUE (patient_id, item_id)
);
`

const resultViewSelect = `
SELECT tr.result_id, tr.score, tr.test_date, tr.notes,
       tr.patient_id, u1.name, u1.account,
       tr.item_id, ti.item_name, ti.description,
       u2.name
FROM test_results tr
JOIN users u1 ON tr.patient_id = u1.user_id AND u1.role = 'patient'
JOIN test_items ti ON tr.item_id = ti.item_id
JOIN users u2 ON tr.technician_id = u2.user_id AND u2.role = 'technician'`

type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) repository.ResultRepository {
	return &ResultRepository{db: db}
}

func (r *ResultRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createResultsTable); err != nil {
		return fmt.Errorf("create test_results table: %w", err)
	}
	return nil
}

func (r *ResultRepository) ListAll(ctx context.Context) ([]domain.ResultView, error) {
	rows, err := r.db.QueryContext(ctx, resultViewSelect+`
ORDER BY tr.test_date DESC, u1.name, ti.item_name`)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()
	return scanResultViews(rows)
}

func (r *ResultRepository) ListByPatient(ctx context.Context, patientID int64) ([]domain.ResultView, error) {
	rows, err := r.db.QueryContext(ctx, resultViewSelect+`
WHERE tr.patient_id = ?
ORDER BY tr.test_date DESC, ti.item_name`,
		patientID,
	)
	if err != nil {
		return nil, fmt.Errorf("list patient results: %w", err)
	}
	defer rows.Close()
	return scanResultViews(rows)
}

func (r *ResultRepository) ExistsForPair(ctx context.Context, patientID, itemID int64) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM test_results WHERE patient_id = ? AND item_id = ?`,
		patientID, itemID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count result pair: %w", err)
	}
	return count > 0, nil
}

func (r *ResultRepository) Create(ctx context.Context, result *domain.TestResult) (int64, error) {
	result.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO test_results (patient_id, item_id, technician_id, score, test_date, notes, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.PatientID,
		result.ItemID,
		result.TechnicianID,
		result.Score,
		result.TestDate,
		result.Notes,
		result.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrDuplicate
		}
		return 0, fmt.Errorf("insert result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("result last insert id: %w", err)
	}
	result.ID = id
	return id, nil
}

func (r *ResultRepository) Update(ctx context.Context, id int64, score float64, testDate, notes string, technicianID int64) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE test_results SET score = ?, test_date = ?, notes = ?, technician_id = ?
WHERE result_id = ?`,
		score, testDate, notes, technicianID, id,
	)
	if err != nil {
		return fmt.Errorf("update result: %w", err)
	}
	return requireRowChanged(res, "update result")
}

func (r *ResultRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM test_results WHERE result_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete result: %w", err)
	}
	return requireRowChanged(res, "delete result")
}

func scanResultViews(rows *sql.Rows) ([]domain.ResultView, error) {
	var views []domain.ResultView
	for rows.Next() {
		var v domain.ResultView
		if err := rows.Scan(
			&v.ID,
			&v.Score,
			&v.TestDate,
			&v.Notes,
			&v.PatientID,
			&v.PatientName,
			&v.PatientAccount,
			&v.ItemID,
			&v.ItemName,
			&v.ItemDescription,
			&v.TechnicianName,
		); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return views, nil
}
