package servicetest

import (
	"bytes"
	"context"
	"io"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
)

// Content is an in-memory content collection. Insertion order is list
// order.
type Content[T any] struct {
	mu     sync.Mutex
	docs   []T
	key    func(*T) primitive.ObjectID
	active func(*T) bool
}

func NewContent[T any](key func(*T) primitive.ObjectID, active func(*T) bool) *Content[T] {
	return &Content[T]{key: key, active: active}
}

func NewBanners() *Content[models.Banner] {
	return NewContent(
		func(b *models.Banner) primitive.ObjectID { return b.ID },
		func(b *models.Banner) bool { return b.IsActive },
	)
}

func NewFestivals() *Content[models.Festival] {
	return NewContent(
		func(f *models.Festival) primitive.ObjectID { return f.ID },
		func(f *models.Festival) bool { return f.IsActive },
	)
}

func NewPromoBlocks() *Content[models.PromoBlock] {
	return NewContent(
		func(p *models.PromoBlock) primitive.ObjectID { return p.ID },
		func(p *models.PromoBlock) bool { return p.IsActive },
	)
}

func NewSectionVideos() *Content[models.SectionVideo] {
	return NewContent(
		func(v *models.SectionVideo) primitive.ObjectID { return v.ID },
		func(v *models.SectionVideo) bool { return v.IsActive },
	)
}

func (s *Content[T]) index(id primitive.ObjectID) int {
	for i := range s.docs {
		if s.key(&s.docs[i]) == id {
			return i
		}
	}
	return -1
}

// List honours ActiveOnly. Position is ignored.
func (s *Content[T]) List(_ context.Context, q repository.ContentQuery) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []T{}
	for i := range s.docs {
		if !q.ActiveOnly || s.active(&s.docs[i]) {
			out = append(out, s.docs[i])
		}
	}
	return out, nil
}

func (s *Content[T]) Get(_ context.Context, id primitive.ObjectID) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	doc := s.docs[i]
	return &doc, nil
}

func (s *Content[T]) Create(_ context.Context, doc *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, *doc)
	return nil
}

func (s *Content[T]) Replace(_ context.Context, id primitive.ObjectID, doc *T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.docs[i] = *doc
	return nil
}

func (s *Content[T]) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.docs = append(s.docs[:i], s.docs[i+1:]...)
	return nil
}

type mediaFile struct {
	name        string
	contentType string
	data        []byte
}

type Media struct {
	mu    sync.Mutex
	files map[primitive.ObjectID]mediaFile
}

func NewMedia() *Media {
	return &Media{files: map[primitive.ObjectID]mediaFile{}}
}

func (s *Media) Upload(_ context.Context, filename, contentType string, body io.Reader) (primitive.ObjectID, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id := primitive.NewObjectID()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = mediaFile{name: filename, contentType: contentType, data: data}
	return id, nil
}

func (s *Media) Open(_ context.Context, id primitive.ObjectID) (*repository.MediaObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &repository.MediaObject{
		ID:          id,
		Filename:    f.name,
		ContentType: f.contentType,
		Length:      int64(len(f.data)),
		Body:        io.NopCloser(bytes.NewReader(f.data)),
	}, nil
}
