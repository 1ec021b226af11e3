// Package service holds the storefront business rules. Services depend on
// the store ports in ports.go and return *apperr.Error values the gateway
// renders directly.
package service

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
)

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func newPagination(p repository.Page, total int64) Pagination {
	pages := int64(0)
	if p.Size > 0 {
		pages = (total + int64(p.Size) - 1) / int64(p.Size)
	}
	return Pagination{Page: p.Number, Limit: p.Size, Total: total, Pages: pages}
}

func parseID(hex, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Validationf("Invalid %s ID: %s", what, hex)
	}
	return id, nil
}

// notFound turns repository.ErrNotFound into a typed 404 and passes any
// other error through.
func notFound(err error, code, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(code, message)
	}
	return err
}

func systemClock() time.Time { return time.Now() }

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return systemClock
	}
	return c
}

func errorsIsDuplicate(err error) bool {
	return errors.Is(err, repository.ErrDuplicate)
}
