package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"

	"github.com/mpetrov/filedrop/applications/server"
	"github.com/mpetrov/filedrop/applications/server/domain"
	"github.com/mpetrov/filedrop/applications/server/interfaces"
	"github.com/mpetrov/filedrop/applications/server/multipart"
)

// defaultContentType is used for parts that carried no Content-Type
// header of their own.
const defaultContentType = "application/octet-stream"

type service struct {
	store   interfaces.ObjectStore
	keys    interfaces.KeyGenerator
	decoder *multipart.Decoder
	logger  log.Logger
}

func NewService(store interfaces.ObjectStore, keys interfaces.KeyGenerator, limits multipart.Limits, logger log.Logger) server.UploadService {
	return &service{
		store:   store,
		keys:    keys,
		decoder: multipart.NewDecoder(limits, logger),
		logger:  logger,
	}
}

// Upload decodes the request body into file descriptors and resolves each
// of them against the object store. A decoding failure aborts the request
// before any store write is issued.
func (s *service) Upload(ctx context.Context, upload domain.Upload) (domain.BatchResult, error) {
	files, err := s.decoder.Decode(upload.ContentLength, upload.ContentType, upload.Body)
	if err != nil {
		return nil, err
	}

	return s.uploadAll(ctx, files), nil
}

// uploadAll writes all files concurrently, one task per file with no cap,
// and collects outcomes in completion order. The errgroup join guarantees
// exactly one outcome per input file before the batch is returned.
func (s *service) uploadAll(ctx context.Context, files []domain.FileDescriptor) domain.BatchResult {
	outcomes := make(chan domain.UploadOutcome, len(files))

	var group errgroup.Group
	for _, file := range files {
		file := file
		group.Go(func() error {
			outcomes <- s.uploadOne(ctx, file)
			return nil
		})
	}

	// upload tasks never return an error; failures become outcomes
	_ = group.Wait()
	close(outcomes)

	result := make(domain.BatchResult, 0, len(files))
	for outcome := range outcomes {
		result = append(result, outcome)
	}

	return result
}

// uploadOne drives a single file to resolution: key generation, store
// write, and a regenerate-and-retry loop on key collisions. The loop is
// unbounded; each retry uses an independent random key, so consecutive
// collisions are vanishingly rare.
func (s *service) uploadOne(ctx context.Context, file domain.FileDescriptor) domain.UploadOutcome {
	contentType := file.Mime
	if contentType == "" {
		contentType = defaultContentType
	}

	for {
		key := s.keys.Key(file.Extension)

		err := s.store.Write(ctx, key, contentType, file.Data)
		if errors.Is(err, interfaces.ErrKeyCollision) {
			level.Warn(s.logger).Log("msg", "storage key collision, regenerating",
				"key", key,
				"name", file.Filename,
			)
			continue
		}
		if err != nil {
			level.Error(s.logger).Log("msg", "store write failed",
				"key", key,
				"name", file.Filename,
				"err", err,
			)

			return domain.UploadOutcome{
				Failed:      true,
				Name:        file.Filename,
				ErrorCode:   domain.ErrInternal.Code,
				Description: domain.ErrInternal.Description,
			}
		}

		digest := sha1.Sum(file.Data)

		return domain.UploadOutcome{
			Hash: hex.EncodeToString(digest[:]),
			Name: file.Filename,
			Key:  key,
			Size: file.Size(),
		}
	}
}
