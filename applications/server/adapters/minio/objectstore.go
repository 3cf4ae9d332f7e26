// Package minio adapts an S3-compatible object store (MinIO, S3, and
// friends) to the ObjectStore interface.
package minio

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mpetrov/filedrop/applications/server/config"
	"github.com/mpetrov/filedrop/applications/server/interfaces"
)

const noSuchKeyCode = "NoSuchKey"

type ObjectStore struct {
	client *miniogo.Client
	bucket string
	log    log.Logger
}

func NewObjectStore(cfg config.Minio, logger log.Logger) (*ObjectStore, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("can't create minio client: %w", err)
	}

	return &ObjectStore{
		client: client,
		bucket: cfg.Bucket,
		log:    logger,
	}, nil
}

// Write stores body under key. The key is probed first so an occupied key
// surfaces as ErrKeyCollision rather than a silent overwrite.
//
// The probe and the put are not atomic: two writers racing on the same
// key can both pass the probe and the later put wins. Callers feed keys
// from fresh random uuids, so a same-key race requires a uuid collision
// inside one probe-to-put window; a store-side conditional put would be
// needed to close the window on servers that support it.
func (s *ObjectStore) Write(ctx context.Context, key string, contentType string, body []byte) error {
	_, err := s.client.StatObject(ctx, s.bucket, key, miniogo.StatObjectOptions{})
	if err == nil {
		return fmt.Errorf("write %s: %w", key, interfaces.ErrKeyCollision)
	}
	if resp := miniogo.ToErrorResponse(err); resp.Code != noSuchKeyCode {
		return fmt.Errorf("can't stat object %s: %w", key, err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(body), int64(len(body)),
		miniogo.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("can't put object %s: %w", key, err)
	}

	level.Info(s.log).Log("msg", "object stored",
		"key", key,
		"bucket", s.bucket,
		"content_type", contentType,
		"size", humanize.Bytes(uint64(len(body))),
	)

	return nil
}

var _ interfaces.ObjectStore = (*ObjectStore)(nil)
