package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"health-metrics/internal/domain"
	"health-metrics/internal/repository"
)

const createItemsTable = `
CREATE TABLE IF NOT EXISTS test_items (
	item_id INTEGER PRIMARY KEY AUTOINCREMENT,
	item_name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	score_range_min INTEGER NOT NULL DEFAULT 1,
	score_range_max INTEGER NOT NULL DEFAULT 10,
	created_at DATETIME NOT NULL
);
`

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createItemsTable); err != nil {
		return fmt.Errorf("create test_items table: %w", err)
	}
	return nil
}

func (r *ItemRepository) List(ctx context.Context) ([]domain.TestItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT item_id, item_name, description, score_range_min, score_range_max, created_at
FROM test_items
ORDER BY item_name`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []domain.TestItem
	for rows.Next() {
		var item domain.TestItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.ScoreRangeMin, &item.ScoreRangeMax, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*domain.TestItem, error) {
	var item domain.TestItem
	err := r.db.QueryRowContext(ctx, `
SELECT item_id, item_name, description, score_range_min, score_range_max, created_at
FROM test_items
WHERE item_id = ?`,
		id,
	).Scan(&item.ID, &item.Name, &item.Description, &item.ScoreRangeMin, &item.ScoreRangeMax, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan item: %w", err)
	}
	return &item, nil
}

func (r *ItemRepository) Create(ctx context.Context, item *domain.TestItem) (int64, error) {
	item.CreatedAt = time.Now().UTC()
	if item.ScoreRangeMin == 0 {
		item.ScoreRangeMin = 1
	}
	if item.ScoreRangeMax == 0 {
		item.ScoreRangeMax = 10
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO test_items (item_name, description, score_range_min, score_range_max, created_at)
VALUES (?, ?, ?, ?, ?)`,
		item.Name,
		item.Description,
		item.ScoreRangeMin,
		item.ScoreRangeMax,
		item.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("item last insert id: %w", err)
	}
	item.ID = id
	return id, nil
}

func (r *ItemRepository) Update(ctx context.Context, id int64, name, description string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE test_items SET item_name = ?, description = ?
WHERE item_id = ?`,
		name, description, id,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return requireRowChanged(res, "update item")
}

func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM test_items WHERE item_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireRowChanged(res, "delete item")
}
