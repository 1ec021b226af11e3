package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Settings is the store-wide singleton document.
type Settings struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	StoreName    string `bson:"storeName" json:"storeName"`
	StoreEmail   string `bson:"storeEmail" json:"storeEmail"`
	StorePhone   string `bson:"storePhone" json:"storePhone"`
	StoreAddress string `bson:"storeAddress" json:"storeAddress"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	Pincode      string `bson:"pincode" json:"pincode"`
	Logo         string `bson:"logo" json:"logo"`
	Tagline      string `bson:"tagline" json:"tagline"`

	Currency              string  `bson:"currency" json:"currency"`
	TaxRate               float64 `bson:"taxRate" json:"taxRate"`
	FreeShippingThreshold float64 `bson:"freeShippingThreshold" json:"freeShippingThreshold"`
	ShippingCost          float64 `bson:"shippingCost" json:"shippingCost"`
	LowStockThreshold     int     `bson:"lowStockThreshold" json:"lowStockThreshold"`
	EnableReviews         bool    `bson:"enableReviews" json:"enableReviews"`
	EnableNewsletter      bool    `bson:"enableNewsletter" json:"enableNewsletter"`
	MaintenanceMode       bool    `bson:"maintenanceMode" json:"maintenanceMode"`

	FacebookURL  string `bson:"facebookUrl" json:"facebookUrl"`
	InstagramURL string `bson:"instagramUrl" json:"instagramUrl"`
	TwitterURL   string `bson:"twitterUrl" json:"twitterUrl"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (Settings) CollectionName() string {
	return "settings"
}

// DefaultSettings is the document created the first time settings are read.
func DefaultSettings() Settings {
	return Settings{
		StoreName:             "Pujnam Store",
		StoreEmail:            "info@pujnamstore.com",
		StorePhone:            "+91 98765 43210",
		Logo:                  "https://images.pexels.com/photos/8989571/pexels-photo-8989571.jpeg",
		Tagline:               "AAPKI AASTHA KA SAARTHI",
		Currency:              "INR",
		TaxRate:               18,
		FreeShippingThreshold: 499,
		ShippingCost:          50,
		LowStockThreshold:     10,
		EnableReviews:         true,
		EnableNewsletter:      true,
	}
}
