package repository

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrDuplicate         = errors.New("duplicate key")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCouponUnusable    = errors.New("coupon is not usable")
	ErrNotCancellable    = errors.New("order is not cancellable")
)

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
