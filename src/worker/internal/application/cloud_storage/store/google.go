package store

import (
	"context"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	cloudstorage "github.com/2highsebas/openarms-backend/src/worker/internal/application/cloud_storage/entity"
	"google.golang.org/api/option"
)

var _ cloudstorage.FileStore = GoogleFileStore{}

func NewGoogleFileStore(storageHost string, opts ...option.ClientOption) (GoogleFileStore, error) {
	client, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return GoogleFileStore{}, cerr.Wrap(err).Error("Failed to create Google Cloud Storage client")
	}

	return GoogleFileStore{
		storageHost: storageHost,
		client:      client,
	}, nil
}

type GoogleFileStore struct {
	storageHost string
	client      *storage.Client
}

func (g GoogleFileStore) GetFile(ctx context.Context, url string) ([]byte, error) {
	objectHandle, err := g.objectHandle(url)
	if err != nil {
		return nil, cerr.Wrap(err).Error("Failed to resolve the storage object for this URL")
	}

	reader, err := objectHandle.NewReader(ctx)
	if err != nil {
		return nil, cerr.Field("url", url).
			Wrap(err).Error("Failed to open the storage object for reading")
	}
	defer reader.Close()

	contents, err := io.ReadAll(reader)
	if err != nil {
		return nil, cerr.Field("url", url).
			Wrap(err).Error("Failed to read the storage object")
	}

	return contents, nil
}

func (g GoogleFileStore) WriteFile(ctx context.Context, url string, fileContent []byte) error {
	objectHandle, err := g.objectHandle(url)
	if err != nil {
		return cerr.Wrap(err).Error("Failed to resolve the storage object for this URL")
	}

	writer := objectHandle.NewWriter(ctx)
	if _, err := writer.Write(fileContent); err != nil {
		_ = writer.Close()
		return cerr.Field("url", url).
			Wrap(err).Error("Failed to write contents to the storage object")
	}

	if err := writer.Close(); err != nil {
		return cerr.Field("url", url).
			Wrap(err).Error("Failed to flush the storage object write")
	}

	return nil
}

// objectHandle maps a public URL of the form host/bucket/objectpath back
// to its bucket and object.
func (g GoogleFileStore) objectHandle(url string) (*storage.ObjectHandle, error) {
	hostPrefix := g.storageHost + "/"
	if !strings.HasPrefix(url, hostPrefix) {
		return nil, cerr.Fields(cerr.F{
			"url":          url,
			"storage_host": g.storageHost,
		}).Error("URL does not belong to this storage host")
	}

	bucketAndPath := strings.TrimPrefix(url, hostPrefix)
	bucket, objectPath, found := strings.Cut(bucketAndPath, "/")
	if !found || objectPath == "" {
		return nil, cerr.Field("url", url).
			Error("URL does not contain a bucket and object path")
	}

	return g.client.Bucket(bucket).Object(objectPath), nil
}
