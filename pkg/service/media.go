package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/config"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/models"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/repository"
)

// MediaKind selects the size limit and accepted content family.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"

	sniffLen = 3072
)

// MediaFilePath is the public route that serves uploads by id.
const MediaFilePath = "/api/upload/files/"

type MediaService struct {
	store  MediaStore
	limits config.UploadConfig
	logger *zap.Logger
}

func NewMediaService(store MediaStore, limits config.UploadConfig, logger *zap.Logger) *MediaService {
	return &MediaService{store: store, limits: limits, logger: logger.Named("media")}
}

func (s *MediaService) limit(kind MediaKind) int64 {
	if kind == MediaVideo {
		return s.limits.MaxVideoBytes
	}
	return s.limits.MaxImageBytes
}

func (s *MediaService) MaxImages() int {
	if s.limits.MaxImages <= 0 {
		return 10
	}
	return s.limits.MaxImages
}

// Upload stores one file after checking its size and sniffed content type.
func (s *MediaService) Upload(ctx context.Context, kind MediaKind, fh *multipart.FileHeader) (*models.MediaFile, error) {
	if lim := s.limit(kind); lim > 0 && fh.Size > lim {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeFileTooLarge,
			fmt.Sprintf("File too large. Maximum size is %d MB", lim>>20))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	if !strings.HasPrefix(detected.String(), string(kind)+"/") {
		return nil, apperr.New(apperr.KindValidation, apperr.CodeUnsupportedMedia,
			fmt.Sprintf("Only %s files are allowed!", kind))
	}
	contentType := strings.SplitN(detected.String(), ";", 2)[0]

	name := path.Base(fh.Filename)
	if name == "." || name == "/" {
		name = string(kind) + detected.Extension()
	}

	id, err := s.store.Upload(ctx, name, contentType, io.MultiReader(bytes.NewReader(head), f))
	if err != nil {
		return nil, err
	}
	s.logger.Info("media stored",
		zap.String("id", id.Hex()),
		zap.String("content_type", contentType),
		zap.Int64("size", fh.Size),
	)
	return &models.MediaFile{
		ID:          id,
		Filename:    name,
		ContentType: contentType,
		Size:        fh.Size,
		URL:         MediaFilePath + id.Hex(),
	}, nil
}

// UploadImages stores each image in order and stops at the first failure.
func (s *MediaService) UploadImages(ctx context.Context, files []*multipart.FileHeader) ([]models.MediaFile, error) {
	if len(files) == 0 {
		return nil, apperr.Validation("No image files provided")
	}
	if len(files) > s.MaxImages() {
		return nil, apperr.Validationf("At most %d images can be uploaded at once", s.MaxImages())
	}
	out := make([]models.MediaFile, 0, len(files))
	for _, fh := range files {
		m, err := s.Upload(ctx, MediaImage, fh)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

// Open returns the stored file. The caller closes Body.
func (s *MediaService) Open(ctx context.Context, idHex string) (*repository.MediaObject, error) {
	id, err := parseID(idHex, "file")
	if err != nil {
		return nil, err
	}
	obj, err := s.store.Open(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.CodeNotFound, "File not found")
	}
	return obj, nil
}
