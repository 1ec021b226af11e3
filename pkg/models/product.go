package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Ratings struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Product struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description" json:"description"`
	Price          float64            `bson:"price" json:"price"`
	OriginalPrice  *float64           `bson:"originalPrice,omitempty" json:"originalPrice,omitempty"`
	Category       primitive.ObjectID `bson:"category" json:"category"`
	Images         []string           `bson:"images" json:"images"`
	Stock          int                `bson:"stock" json:"stock"`
	Featured       bool               `bson:"featured" json:"featured"`
	IsBestseller   bool               `bson:"isBestseller" json:"isBestseller"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	Ratings        Ratings            `bson:"ratings" json:"ratings"`
	Specifications map[string]string  `bson:"specifications,omitempty" json:"specifications,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`

	// CategoryInfo is filled on reads, never stored.
	CategoryInfo *CategoryRef `bson:"-" json:"categoryInfo,omitempty"`
}

func (Product) CollectionName() string {
	return "products"
}

// ProductRef is the short form embedded in festival and cart responses.
type ProductRef struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Price  float64            `json:"price"`
	Images []string           `json:"images,omitempty"`
	Stock  int                `json:"stock"`
}

func (p *Product) Ref() ProductRef {
	return ProductRef{ID: p.ID, Name: p.Name, Price: p.Price, Images: p.Images, Stock: p.Stock}
}
