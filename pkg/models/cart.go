package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

// Cart is owned by exactly one user.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Items     []CartItem         `bson:"items" json:"items"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (Cart) CollectionName() string {
	return "carts"
}

func (c *Cart) Find(productID primitive.ObjectID) (int, bool) {
	for i, it := range c.Items {
		if it.Product == productID {
			return i, true
		}
	}
	return -1, false
}

func (c *Cart) Remove(productID primitive.ObjectID) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.Product != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}
