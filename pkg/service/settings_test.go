package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/service/servicetest"
)

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	svc := NewSettingsService(servicetest.NewSettings(), zap.NewNop())
	ctx := context.Background()

	first, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pujnam Store", first.StoreName)
	assert.Equal(t, 18.0, first.TaxRate)

	again, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "singleton")

	saved, err := svc.Update(ctx, func(s *models.Settings) error {
		s.ID = primitive.NewObjectID()
		s.TaxRate = 5
		s.StoreName = "Pujnam Varanasi"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, saved.ID)
	assert.Equal(t, first.CreatedAt, saved.CreatedAt)
	assert.Equal(t, 5.0, saved.TaxRate)

	current, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pujnam Varanasi", current.StoreName)
}

func TestSettingsUpdateValidation(t *testing.T) {
	svc := NewSettingsService(servicetest.NewSettings(), zap.NewNop())
	ctx := context.Background()

	tests := map[string]func(*models.Settings) error{
		"tax over 100":       func(s *models.Settings) error { s.TaxRate = 101; return nil },
		"negative tax":       func(s *models.Settings) error { s.TaxRate = -1; return nil },
		"negative shipping":  func(s *models.Settings) error { s.ShippingCost = -5; return nil },
		"negative threshold": func(s *models.Settings) error { s.FreeShippingThreshold = -1; return nil },
		"bind failure":       func(*models.Settings) error { return errors.New("bad json") },
	}
	for name, apply := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Update(ctx, apply)
			assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
		})
	}

	current, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 18.0, current.TaxRate)
}

func TestCustomers(t *testing.T) {
	orders := servicetest.NewOrders()
	asha := models.User{ID: primitive.NewObjectID(), Email: "asha@example.com", Name: "Asha", Role: models.RoleUser}
	admin := models.User{ID: primitive.NewObjectID(), Email: "admin@example.com", Role: models.RoleAdmin}
	users := servicetest.NewUsers(asha, admin)
	users.Orders = orders
	ctx := context.Background()

	for _, total := range []float64{100, 250.5} {
		require.NoError(t, orders.Create(ctx, &models.Order{ID: primitive.NewObjectID(), User: &asha.ID, Total: total, CreatedAt: fixedNow}))
	}

	svc := NewCustomerService(users, orders)
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].TotalOrders)
	assert.Equal(t, 350.5, list[0].TotalSpent)
	require.NotNil(t, list[0].LastOrderAt)

	detail, err := svc.Get(ctx, asha.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Asha", detail.Customer.Name)
	assert.Len(t, detail.Orders, 2)

	_, err = svc.Get(ctx, primitive.NewObjectID().Hex())
	assert.Equal(t, apperr.CodeUserNotFound, apperr.CodeOf(err))
}
