package service

import (
	"context"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
)

type CustomerService struct {
	users  UserStore
	orders OrderStore
}

func NewCustomerService(users UserStore, orders OrderStore) *CustomerService {
	return &CustomerService{users: users, orders: orders}
}

// List returns every non-admin account with its order count, spend and
// last order time, newest account first.
func (s *CustomerService) List(ctx context.Context) ([]models.CustomerStats, error) {
	return s.users.Customers(ctx)
}

type CustomerDetail struct {
	Customer *models.User   `json:"customer"`
	Orders   []models.Order `json:"orders"`
}

func (s *CustomerService) Get(ctx context.Context, idHex string) (*CustomerDetail, error) {
	id, err := parseID(idHex, "customer")
	if err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.CodeUserNotFound, "Customer not found")
	}
	orders, err := s.orders.ListByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CustomerDetail{Customer: u, Orders: orders}, nil
}
