package models

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Slug        string              `bson:"slug" json:"slug"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Image       string              `bson:"image,omitempty" json:"image,omitempty"`
	Parent      *primitive.ObjectID `bson:"parent,omitempty" json:"parent,omitempty"`
	IsActive    bool                `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`

	ParentInfo *CategoryRef `bson:"-" json:"parentInfo,omitempty"`
}

func (Category) CollectionName() string {
	return "categories"
}

type CategoryRef struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
	Slug string             `json:"slug"`
}

func (c *Category) Ref() *CategoryRef {
	return &CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slug lowercases name and turns each whitespace run into a hyphen.
func Slug(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
}

// StrictSlug is Slug with everything outside [a-z0-9-] removed.
func StrictSlug(name string) string {
	return nonSlugChars.ReplaceAllString(Slug(name), "")
}
