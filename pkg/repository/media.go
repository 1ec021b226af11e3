package repository

import (
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MediaObject is an open download from the media bucket. Callers must
// close Body.
type MediaObject struct {
	ID          primitive.ObjectID
	Filename    string
	ContentType string
	Length      int64
	Body        io.ReadCloser
}

// MediaRepository keeps uploaded images and videos in a GridFS bucket.
type MediaRepository struct {
	database *mongo.Database
	name     string
}

func NewMediaRepository(m *MongoRepository) *MediaRepository {
	return &MediaRepository{database: m.database, name: m.config.MediaBucket}
}

// A bucket per call keeps ctx deadlines request-local.
func (r *MediaRepository) bucket(ctx context.Context, write bool) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(r.database, options.GridFSBucket().SetName(r.name))
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if write {
			err = b.SetWriteDeadline(deadline)
		} else {
			err = b.SetReadDeadline(deadline)
		}
	}
	return b, err
}

func (r *MediaRepository) Upload(ctx context.Context, filename, contentType string, body io.Reader) (primitive.ObjectID, error) {
	b, err := r.bucket(ctx, true)
	if err != nil {
		return primitive.NilObjectID, err
	}
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	return b.UploadFromStream(filename, body, opts)
}

func (r *MediaRepository) Open(ctx context.Context, id primitive.ObjectID) (*MediaObject, error) {
	b, err := r.bucket(ctx, false)
	if err != nil {
		return nil, err
	}
	stream, err := b.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	file := stream.GetFile()
	obj := &MediaObject{
		ID:          id,
		Filename:    file.Name,
		ContentType: "application/octet-stream",
		Length:      file.Length,
		Body:        stream,
	}
	if v, err := file.Metadata.LookupErr("contentType"); err == nil {
		if ct, ok := v.StringValueOK(); ok {
			obj.ContentType = ct
		}
	}
	return obj, nil
}
