package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStorage implements FileStore on a MongoDB GridFS bucket. Files are
// served back by the API under urlPrefix.
type GridFSStorage struct {
	bucket    *gridfs.Bucket
	urlPrefix string
}

func NewGridFSStorage(db *mongo.Database, urlPrefix string) (*GridFSStorage, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("uploads"))
	if err != nil {
		return nil, fmt.Errorf("failed to open GridFS bucket: %w", err)
	}
	return &GridFSStorage{bucket: bucket, urlPrefix: urlPrefix}, nil
}

func (g *GridFSStorage) URL(name string) string {
	return g.urlPrefix + "/" + name
}

func (g *GridFSStorage) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	if _, err := g.bucket.UploadFromStream(name, bytes.NewReader(data), opts); err != nil {
		return "", fmt.Errorf("failed to store %s in GridFS: %w", name, err)
	}
	return g.URL(name), nil
}

type gridFile struct {
	ID       any `bson:"_id"`
	Metadata struct {
		ContentType string `bson:"contentType"`
	} `bson:"metadata"`
}

func (g *GridFSStorage) find(ctx context.Context, name string) (*gridFile, error) {
	cursor, err := g.bucket.FindContext(ctx, bson.M{"filename": name})
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s in GridFS: %w", name, err)
	}
	defer cursor.Close(ctx)
	if !cursor.Next(ctx) {
		return nil, ErrNotFound
	}
	var f gridFile
	if err := cursor.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode GridFS file %s: %w", name, err)
	}
	return &f, nil
}

func (g *GridFSStorage) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	f, err := g.find(ctx, name)
	if err != nil {
		return nil, "", err
	}
	stream, err := g.bucket.OpenDownloadStream(f.ID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to open %s from GridFS: %w", name, err)
	}
	return stream, f.Metadata.ContentType, nil
}

func (g *GridFSStorage) Delete(ctx context.Context, name string) error {
	f, err := g.find(ctx, name)
	if err != nil {
		return err
	}
	if err := g.bucket.DeleteContext(ctx, f.ID); err != nil {
		return fmt.Errorf("failed to delete %s from GridFS: %w", name, err)
	}
	return nil
}
