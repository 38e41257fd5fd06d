package repository

import (
	"context"

	"health-metrics/internal/domain"
)

// ItemRepository defines persistence operations for test-item definitions.
type ItemRepository interface {
	Init(ctx context.Context) error
	// List returns all items ordered by name.
	List(ctx context.Context) ([]domain.TestItem, error)
	GetByID(ctx context.Context, id int64) (*domain.TestItem, error)
	Create(ctx context.Context, item *domain.TestItem) (int64, error)
	Update(ctx context.Context, id int64, name, description string) error
	Delete(ctx context.Context, id int64) error
}
