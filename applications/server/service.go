package server

import (
	"context"

	"github.com/mpetrov/filedrop/applications/server/domain"
)

// UploadService ingests one multipart upload request and resolves every
// accepted file to an outcome. A returned error is a whole-request
// failure (*domain.Error); per-file store failures are reported inside
// the BatchResult instead.
type UploadService interface {
	Upload(ctx context.Context, upload domain.Upload) (domain.BatchResult, error)
}
