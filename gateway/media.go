package gateway

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/service"
)

// formOverhead bounds the bytes a multipart body may carry beyond its files.
const formOverhead = 1 << 20

func (g *Gateway) limitBody(c *gin.Context, max int64) {
	if max > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max+formOverhead)
	}
}

func formError(err error, missing string) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return apperr.New(apperr.KindValidation, apperr.CodeFileTooLarge, "File too large")
	}
	return apperr.Validation(missing)
}

func (g *Gateway) uploadSingle(c *gin.Context, field string, kind service.MediaKind, limit int64, missing string) {
	g.limitBody(c, limit)
	fh, err := c.FormFile(field)
	if err != nil {
		abort(c, formError(err, missing))
		return
	}
	m, err := g.services.Media.Upload(c.Request.Context(), kind, fh)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": m.URL, "public_id": m.ID.Hex(), "file": m})
}

// @Summary Upload one image to the media store
// @Tags upload
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Image"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorResponse
// @Router /upload/image [post]
func (g *Gateway) uploadImage(c *gin.Context) {
	g.uploadSingle(c, "image", service.MediaImage, g.config.Upload.MaxImageBytes, "No image file provided")
}

func (g *Gateway) uploadVideo(c *gin.Context) {
	g.uploadSingle(c, "video", service.MediaVideo, g.config.Upload.MaxVideoBytes, "No video file provided")
}

func (g *Gateway) uploadImages(c *gin.Context) {
	g.limitBody(c, g.config.Upload.MaxImageBytes*int64(g.services.Media.MaxImages()))
	form, err := c.MultipartForm()
	if err != nil {
		abort(c, formError(err, "No image files provided"))
		return
	}
	files, err := g.services.Media.UploadImages(c.Request.Context(), form.File["images"])
	if err != nil {
		abort(c, err)
		return
	}

	urls := make([]string, len(files))
	ids := make([]string, len(files))
	for i, f := range files {
		urls[i] = f.URL
		ids[i] = f.ID.Hex()
	}
	c.JSON(http.StatusOK, gin.H{"urls": urls, "public_ids": ids, "files": files})
}

// serveFile streams a stored upload back by id.
func (g *Gateway) serveFile(c *gin.Context) {
	obj, err := g.services.Media.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	defer obj.Body.Close()

	h := c.Writer.Header()
	h.Set("Content-Type", obj.ContentType)
	h.Set("Content-Length", strconv.FormatInt(obj.Length, 10))
	h.Set("Cache-Control", "public, max-age=31536000, immutable")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, obj.Body); err != nil {
		g.logger.Warn("media stream interrupted", zap.String("id", obj.ID.Hex()), zap.Error(err))
	}
}
