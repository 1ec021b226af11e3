package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/config"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/service/servicetest"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00"), bytes.Repeat([]byte{0}, 64)...)

type upload struct {
	name string
	data []byte
}

// formFiles round-trips uploads through a real multipart body.
func formFiles(t *testing.T, uploads ...upload) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, u := range uploads {
		part, err := w.CreateFormFile("images", u.name)
		require.NoError(t, err)
		_, err = part.Write(u.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["images"]
}

func newMediaService(limits config.UploadConfig) *MediaService {
	return NewMediaService(servicetest.NewMedia(), limits, zap.NewNop())
}

func TestUploadImage(t *testing.T) {
	svc := newMediaService(config.UploadConfig{MaxImageBytes: 1 << 20})
	ctx := context.Background()

	files := formFiles(t, upload{"../../diya.png", pngBytes})
	m, err := svc.Upload(ctx, MediaImage, files[0])
	require.NoError(t, err)
	assert.Equal(t, "image/png", m.ContentType)
	assert.Equal(t, "diya.png", m.Filename)
	assert.Equal(t, MediaFilePath+m.ID.Hex(), m.URL)
	assert.Equal(t, int64(len(pngBytes)), m.Size)

	obj, err := svc.Open(ctx, m.ID.Hex())
	require.NoError(t, err)
	defer obj.Body.Close()
	stored, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored, "sniffed head is not lost")
	assert.Equal(t, "image/png", obj.ContentType)
}

func TestUploadRejects(t *testing.T) {
	svc := newMediaService(config.UploadConfig{MaxImageBytes: 32, MaxVideoBytes: 1 << 20})
	ctx := context.Background()

	big := formFiles(t, upload{"big.png", pngBytes})[0]
	_, err := svc.Upload(ctx, MediaImage, big)
	assert.Equal(t, apperr.CodeFileTooLarge, apperr.CodeOf(err))

	text := formFiles(t, upload{"note.png", []byte(strings.Repeat("plain text ", 2))})[0]
	_, err = svc.Upload(ctx, MediaImage, text)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUnsupportedMedia, apperr.CodeOf(err))
	assert.Equal(t, "Only image files are allowed!", apperr.From(err).Message)

	_, err = svc.Upload(ctx, MediaVideo, big)
	assert.Equal(t, "Only video files are allowed!", apperr.From(err).Message)

	_, err = svc.Open(ctx, "65f000000000000000000000")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestUploadImages(t *testing.T) {
	svc := newMediaService(config.UploadConfig{MaxImages: 2})
	ctx := context.Background()

	_, err := svc.UploadImages(ctx, nil)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	three := formFiles(t, upload{"a.png", pngBytes}, upload{"b.png", pngBytes}, upload{"c.png", pngBytes})
	_, err = svc.UploadImages(ctx, three)
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))

	out, err := svc.UploadImages(ctx, three[:2])
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.NotEqual(t, out[0].ID, out[1].ID)

	assert.Equal(t, 10, newMediaService(config.UploadConfig{}).MaxImages())
}
