package service

import (
	"context"
	"errors"
	"strings"

	"health-metrics/internal/domain"
	"health-metrics/internal/repository"
	"health-metrics/internal/session"
)

// ItemService manages test-item definitions. Technician only.
type ItemService interface {
	List(ctx context.Context, sess *session.Session) ([]domain.TestItem, error)
	Create(ctx context.Context, sess *session.Session, name, description string) (*domain.TestItem, error)
	Update(ctx context.Context, sess *session.Session, id int64, name, description string) error
	Delete(ctx context.Context, sess *session.Session, id int64) error
}

type itemService struct {
	items repository.ItemRepository
}

func NewItemService(items repository.ItemRepository) ItemService {
	return &itemService{items: items}
}

func (s *itemService) List(ctx context.Context, sess *session.Session) ([]domain.TestItem, error) {
	if err := sess.RequireRole(domain.RoleTechnician); err != nil {
		return nil, err
	}

	items, err := s.items.List(ctx)
	if err != nil {
		return nil, domain.WrapStore("list items", err)
	}
	return items, nil
}

func (s *itemService) Create(ctx context.Context, sess *session.Session, name, description string) (*domain.TestItem, error) {
	if err := sess.RequireRole(domain.RoleTechnician); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("item_name")
	}

	item := &domain.TestItem{
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if _, err := s.items.Create(ctx, item); err != nil {
		return nil, domain.WrapStore("create item", err)
	}
	return item, nil
}

func (s *itemService) Update(ctx context.Context, sess *session.Session, id int64, name, description string) error {
	if err := sess.RequireRole(domain.RoleTechnician); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	if id <= 0 {
		return domain.NewValidationError("item_id")
	}
	if name == "" {
		return domain.NewValidationError("item_name")
	}

	if err := s.items.Update(ctx, id, name, strings.TrimSpace(description)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return domain.WrapStore("update item", err)
	}
	return nil
}

func (s *itemService) Delete(ctx context.Context, sess *session.Session, id int64) error {
	if err := sess.RequireRole(domain.RoleTechnician); err != nil {
		return err
	}

	if id <= 0 {
		return domain.NewValidationError("item_id")
	}

	if err := s.items.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return domain.WrapStore("delete item", err)
	}
	return nil
}
