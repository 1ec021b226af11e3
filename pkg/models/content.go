package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BannerPosition string

const (
	BannerHero    BannerPosition = "hero"
	BannerBanner  BannerPosition = "banner"
	BannerSidebar BannerPosition = "sidebar"
)

func (p BannerPosition) Valid() bool {
	return p == BannerHero || p == BannerBanner || p == BannerSidebar
}

type Banner struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title" binding:"required"`
	Subtitle     string             `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	ImageURL     string             `bson:"image_url" json:"image_url" binding:"required"`
	LinkURL      string             `bson:"link_url" json:"link_url"`
	ButtonText   string             `bson:"button_text" json:"button_text"`
	Position     BannerPosition     `bson:"position" json:"position" binding:"omitempty,oneof=hero banner sidebar"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	DisplayOrder int                `bson:"display_order" json:"display_order"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

func (Banner) CollectionName() string { return "banners" }

type Festival struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name         string               `bson:"name" json:"name"`
	Slug         string               `bson:"slug" json:"slug"`
	Description  string               `bson:"description,omitempty" json:"description,omitempty"`
	Image        string               `bson:"image,omitempty" json:"image,omitempty"`
	Products     []primitive.ObjectID `bson:"products" json:"products"`
	StartDate    *time.Time           `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate      *time.Time           `bson:"endDate,omitempty" json:"endDate,omitempty"`
	IsActive     bool                 `bson:"isActive" json:"isActive"`
	DisplayOrder int                  `bson:"displayOrder" json:"displayOrder"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`

	ProductInfo []ProductRef `bson:"-" json:"productInfo,omitempty"`
}

func (Festival) CollectionName() string { return "festivals" }

type PromoBlock struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title" binding:"required"`
	Description  string             `bson:"description" json:"description"`
	ImageURL     string             `bson:"image_url" json:"image_url" binding:"required"`
	ButtonText   string             `bson:"button_text" json:"button_text"`
	LinkURL      string             `bson:"link_url" json:"link_url"`
	DisplayOrder int                `bson:"display_order" json:"display_order"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

func (PromoBlock) CollectionName() string { return "promoblocks" }

type SectionVideo struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	VideoURL     string             `bson:"video_url" json:"video_url" binding:"required"`
	DisplayOrder int                `bson:"display_order" json:"display_order"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

func (SectionVideo) CollectionName() string { return "sectionvideos" }

// MediaFile describes an upload stored in the media bucket.
type MediaFile struct {
	ID          primitive.ObjectID `json:"id"`
	Filename    string             `json:"filename"`
	ContentType string             `json:"contentType"`
	Size        int64              `json:"size"`
	URL         string             `json:"url"`
}
