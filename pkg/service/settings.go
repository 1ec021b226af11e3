package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

type SettingsService struct {
	store  SettingsStore
	logger *zap.Logger
}

func NewSettingsService(store SettingsStore, logger *zap.Logger) *SettingsService {
	return &SettingsService{store: store, logger: logger.Named("settings")}
}

// Get returns the singleton, creating it with defaults on first use.
func (s *SettingsService) Get(ctx context.Context) (models.Settings, error) {
	return s.store.Get(ctx)
}

// Update loads the current settings, lets apply overwrite fields on a copy
// and saves the result. Identity and creation time are kept.
func (s *SettingsService) Update(ctx context.Context, apply func(*models.Settings) error) (models.Settings, error) {
	current, err := s.store.Get(ctx)
	if err != nil {
		return models.Settings{}, err
	}

	next := current
	if err := apply(&next); err != nil {
		return models.Settings{}, apperr.Validation(err.Error())
	}
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt

	switch {
	case next.TaxRate < 0 || next.TaxRate > 100:
		return models.Settings{}, apperr.Validation("Tax rate must be between 0 and 100")
	case next.ShippingCost < 0:
		return models.Settings{}, apperr.Validation("Shipping cost must not be negative")
	case next.FreeShippingThreshold < 0:
		return models.Settings{}, apperr.Validation("Free shipping threshold must not be negative")
	case next.LowStockThreshold < 0:
		return models.Settings{}, apperr.Validation("Low stock threshold must not be negative")
	}

	saved, err := s.store.Save(ctx, next)
	if err != nil {
		return models.Settings{}, err
	}
	s.logger.Info("settings updated")
	return saved, nil
}
