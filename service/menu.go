package service

import (
	"context"
	"fmt"

	"bokaap-reservations/models"
	"bokaap-reservations/store"
)

type MenuService struct {
	menu store.MenuStore
}

func NewMenuService(menu store.MenuStore) *MenuService {
	return &MenuService{menu: menu}
}

func (s *MenuService) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.menu.ListMenuItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	return items, nil
}
