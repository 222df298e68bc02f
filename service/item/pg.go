package item

import (
	"context"
	"errors"
	"strings"

	"github.com/webuild-community/honor/model"
	"gorm.io/gorm"
)

type pg struct {
	db *gorm.DB
}

// NewPGService --
func NewPGService(db *gorm.DB) Service {
	return &pg{db: db}
}

func (s *pg) Catalog(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("cost asc").Order("id asc").
		Find(&items).Error
	return items, err
}

func (s *pg) List(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := s.db.WithContext(ctx).Order("id asc").Find(&items).Error
	return items, err
}

func (s *pg) Find(ctx context.Context, id uint) (model.Item, error) {
	var item model.Item
	err := s.db.WithContext(ctx).First(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, ErrNotFound
	}
	return item, err
}

func (s *pg) Create(ctx context.Context, item model.Item) (model.Item, error) {
	item.ID = 0
	item.Name = strings.TrimSpace(item.Name)
	if err := validate(item.Name, item.Cost, item.Stock); err != nil {
		return model.Item{}, err
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.Item{}, err
	}
	return item, nil
}

func (s *pg) Update(ctx context.Context, id uint, changes Changes) (model.Item, error) {
	updates := map[string]interface{}{}
	if changes.Name != nil {
		updates["name"] = strings.TrimSpace(*changes.Name)
	}
	if changes.Description != nil {
		updates["description"] = *changes.Description
	}
	if changes.Cost != nil {
		updates["cost"] = *changes.Cost
	}
	if changes.Stock != nil {
		updates["stock"] = *changes.Stock
	}
	if changes.IsActive != nil {
		updates["is_active"] = *changes.IsActive
	}
	if changes.NotionPageID != nil {
		updates["notion_page_id"] = strings.TrimSpace(*changes.NotionPageID)
	}

	var item model.Item
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		name, cost, stock := item.Name, item.Cost, item.Stock
		if v, ok := updates["name"].(string); ok {
			name = v
		}
		if changes.Cost != nil {
			cost = *changes.Cost
		}
		if changes.Stock != nil {
			stock = *changes.Stock
		}
		if err := validate(name, cost, stock); err != nil {
			return err
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&item).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&item, id).Error
	})
	return item, err
}

func (s *pg) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Item{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func validate(name string, cost, stock int64) error {
	if name == "" || cost < 0 || stock < model.UnlimitedStock {
		return ErrInvalidInput
	}
	return nil
}
