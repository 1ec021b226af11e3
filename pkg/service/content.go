package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
)

// ContentHooks tailor a Collection to one content kind.
type ContentHooks[T any] struct {
	// Stamp sets identity and timestamps. created is the creation time,
	// fresh on create and preserved on update.
	Stamp func(doc *T, id primitive.ObjectID, created, now time.Time)
	// Prepare normalizes and validates doc before every write. prev is nil
	// on create.
	Prepare func(doc, prev *T) error
	// Expand fills read-only fields after a read.
	Expand func(ctx context.Context, docs []T) error
	// Key and Created read back what Stamp wrote.
	Key     func(doc *T) primitive.ObjectID
	Created func(doc *T) time.Time
}

// Collection is admin CRUD over one kind of storefront content.
type Collection[T any] struct {
	kind   string
	store  ContentStore[T]
	hooks  ContentHooks[T]
	logger *zap.Logger
	now    Clock
}

func NewCollection[T any](kind string, store ContentStore[T], hooks ContentHooks[T], logger *zap.Logger, clock Clock) *Collection[T] {
	return &Collection[T]{
		kind:   kind,
		store:  store,
		hooks:  hooks,
		logger: logger.Named("content").With(zap.String("kind", kind)),
		now:    clockOrDefault(clock),
	}
}

func (c *Collection[T]) notFound(err error) error {
	return notFound(err, apperr.CodeNotFound, c.kind+" not found")
}

func (c *Collection[T]) expand(ctx context.Context, docs []T) error {
	if c.hooks.Expand == nil || len(docs) == 0 {
		return nil
	}
	return c.hooks.Expand(ctx, docs)
}

func (c *Collection[T]) List(ctx context.Context, q repository.ContentQuery) ([]T, error) {
	docs, err := c.store.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := c.expand(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Collection[T]) Get(ctx context.Context, idHex string) (*T, error) {
	id, err := parseID(idHex, strings.ToLower(c.kind))
	if err != nil {
		return nil, err
	}
	doc, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, c.notFound(err)
	}
	docs := []T{*doc}
	if err := c.expand(ctx, docs); err != nil {
		return nil, err
	}
	return &docs[0], nil
}

func (c *Collection[T]) prepare(doc, prev *T) error {
	if c.hooks.Prepare == nil {
		return nil
	}
	return c.hooks.Prepare(doc, prev)
}

func (c *Collection[T]) Create(ctx context.Context, doc *T) (*T, error) {
	now := c.now()
	c.hooks.Stamp(doc, primitive.NewObjectID(), now, now)
	if err := c.prepare(doc, nil); err != nil {
		return nil, err
	}
	if err := c.store.Create(ctx, doc); err != nil {
		return nil, err
	}
	docs := []T{*doc}
	if err := c.expand(ctx, docs); err != nil {
		return nil, err
	}
	c.logger.Info("content created", zap.String("id", c.hooks.Key(doc).Hex()))
	return &docs[0], nil
}

// Update lets bind overwrite fields of the stored document and replaces it.
// Fields bind leaves alone keep their stored values.
func (c *Collection[T]) Update(ctx context.Context, idHex string, bind func(*T) error) (*T, error) {
	id, err := parseID(idHex, strings.ToLower(c.kind))
	if err != nil {
		return nil, err
	}
	prev, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, c.notFound(err)
	}

	next := *prev
	if err := bind(&next); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	c.hooks.Stamp(&next, id, c.hooks.Created(prev), c.now())
	if err := c.prepare(&next, prev); err != nil {
		return nil, err
	}
	if err := c.store.Replace(ctx, id, &next); err != nil {
		return nil, c.notFound(err)
	}
	docs := []T{next}
	if err := c.expand(ctx, docs); err != nil {
		return nil, err
	}
	return &docs[0], nil
}

func (c *Collection[T]) Delete(ctx context.Context, idHex string) error {
	id, err := parseID(idHex, strings.ToLower(c.kind))
	if err != nil {
		return err
	}
	if err := c.store.Delete(ctx, id); err != nil {
		return c.notFound(err)
	}
	c.logger.Info("content deleted", zap.String("id", id.Hex()))
	return nil
}

type ContentService struct {
	Banners       *Collection[models.Banner]
	Festivals     *Collection[models.Festival]
	PromoBlocks   *Collection[models.PromoBlock]
	SectionVideos *Collection[models.SectionVideo]
}

type ContentStores struct {
	Banners       ContentStore[models.Banner]
	Festivals     ContentStore[models.Festival]
	PromoBlocks   ContentStore[models.PromoBlock]
	SectionVideos ContentStore[models.SectionVideo]
	Products      ProductStore
}

func NewContentService(stores ContentStores, logger *zap.Logger, clock Clock) *ContentService {
	return &ContentService{
		Banners:       NewCollection("Banner", stores.Banners, bannerHooks(), logger, clock),
		Festivals:     NewCollection("Festival", stores.Festivals, festivalHooks(stores.Products), logger, clock),
		PromoBlocks:   NewCollection("Promo block", stores.PromoBlocks, promoBlockHooks(), logger, clock),
		SectionVideos: NewCollection("Section video", stores.SectionVideos, sectionVideoHooks(), logger, clock),
	}
}

func bannerHooks() ContentHooks[models.Banner] {
	return ContentHooks[models.Banner]{
		Stamp: func(b *models.Banner, id primitive.ObjectID, created, _ time.Time) {
			b.ID, b.CreatedAt = id, created
		},
		Prepare: func(b, _ *models.Banner) error {
			if b.Position == "" {
				b.Position = models.BannerHero
			}
			switch {
			case strings.TrimSpace(b.Title) == "":
				return apperr.Validation("Title is required")
			case strings.TrimSpace(b.ImageURL) == "":
				return apperr.Validation("Image URL is required")
			case !b.Position.Valid():
				return apperr.Validationf("Invalid banner position: %s", b.Position)
			}
			return nil
		},
		Key:     func(b *models.Banner) primitive.ObjectID { return b.ID },
		Created: func(b *models.Banner) time.Time { return b.CreatedAt },
	}
}

func promoBlockHooks() ContentHooks[models.PromoBlock] {
	return ContentHooks[models.PromoBlock]{
		Stamp: func(p *models.PromoBlock, id primitive.ObjectID, created, _ time.Time) {
			p.ID, p.CreatedAt = id, created
		},
		Prepare: func(p, _ *models.PromoBlock) error {
			if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.ImageURL) == "" {
				return apperr.Validation("Title and image URL are required")
			}
			return nil
		},
		Key:     func(p *models.PromoBlock) primitive.ObjectID { return p.ID },
		Created: func(p *models.PromoBlock) time.Time { return p.CreatedAt },
	}
}

func sectionVideoHooks() ContentHooks[models.SectionVideo] {
	return ContentHooks[models.SectionVideo]{
		Stamp: func(v *models.SectionVideo, id primitive.ObjectID, created, _ time.Time) {
			v.ID, v.CreatedAt = id, created
		},
		Prepare: func(v, _ *models.SectionVideo) error {
			if strings.TrimSpace(v.VideoURL) == "" {
				return apperr.Validation("Video URL is required")
			}
			return nil
		},
		Key:     func(v *models.SectionVideo) primitive.ObjectID { return v.ID },
		Created: func(v *models.SectionVideo) time.Time { return v.CreatedAt },
	}
}

// festivalHooks derive the slug from the name and resolve product
// references on every read.
func festivalHooks(products ProductStore) ContentHooks[models.Festival] {
	return ContentHooks[models.Festival]{
		Stamp: func(f *models.Festival, id primitive.ObjectID, created, now time.Time) {
			f.ID, f.CreatedAt, f.UpdatedAt = id, created, now
		},
		Prepare: func(f, prev *models.Festival) error {
			f.Name = strings.TrimSpace(f.Name)
			if f.Name == "" {
				return apperr.Validation("Festival name is required")
			}
			if prev == nil || prev.Name != f.Name || f.Slug == "" {
				f.Slug = models.StrictSlug(f.Name)
			}
			if f.Products == nil {
				f.Products = []primitive.ObjectID{}
			}
			if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
				return apperr.Validation("endDate must not be before startDate")
			}
			f.ProductInfo = nil
			return nil
		},
		Expand: func(ctx context.Context, festivals []models.Festival) error {
			var ids []primitive.ObjectID
			for _, f := range festivals {
				ids = append(ids, f.Products...)
			}
			if len(ids) == 0 {
				return nil
			}
			found, err := products.GetMany(ctx, ids)
			if err != nil {
				return err
			}
			byID := make(map[primitive.ObjectID]models.ProductRef, len(found))
			for i := range found {
				byID[found[i].ID] = found[i].Ref()
			}
			for i := range festivals {
				refs := make([]models.ProductRef, 0, len(festivals[i].Products))
				for _, id := range festivals[i].Products {
					if ref, ok := byID[id]; ok {
						refs = append(refs, ref)
					}
				}
				festivals[i].ProductInfo = refs
			}
			return nil
		},
		Key:     func(f *models.Festival) primitive.ObjectID { return f.ID },
		Created: func(f *models.Festival) time.Time { return f.CreatedAt },
	}
}
