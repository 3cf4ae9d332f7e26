package multipart

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/mpetrov/filedrop/applications/server/domain"
)

// Limits bound a single upload request.
type Limits struct {
	// MaxFilesize is the byte limit for one file's body.
	MaxFilesize int64
	// MaxFilesPerUpload is the number of files accepted per request.
	MaxFilesPerUpload int
}

// Decoder splits one multipart request body into finalized
// FileDescriptors, enforcing the request and per-file limits. Quota and
// protocol violations fail the whole request; partially parsed files are
// never salvaged.
type Decoder struct {
	limits Limits
	logger log.Logger
}

func NewDecoder(limits Limits, logger log.Logger) *Decoder {
	return &Decoder{
		limits: limits,
		logger: logger,
	}
}

// Decode validates the declared request headers, then consumes the body
// part by part. The declared checks are terminal and happen before any
// byte of the body is read.
func (d *Decoder) Decode(contentLength int64, contentType string, body io.Reader) ([]domain.FileDescriptor, error) {
	if contentLength < 0 {
		return nil, domain.ErrBadContentLength
	}
	if contentLength > d.limits.MaxFilesize*int64(d.limits.MaxFilesPerUpload) {
		return nil, domain.ErrPayloadTooLarge
	}

	boundary, ok := boundaryFrom(contentType)
	if !ok {
		return nil, domain.ErrBadContentType
	}

	reader := multipart.NewReader(body, boundary)

	var files []domain.FileDescriptor
	for {
		part, err := reader.NextRawPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			level.Error(d.logger).Log("msg", "malformed multipart stream", "err", err)
			return nil, domain.ErrInternal
		}

		fields, err := parsePartHeader(part.Header)
		if err != nil {
			return nil, err
		}

		// an over-limit part fails the request instead of being silently
		// dropped; the count wins over any per-file condition of the same
		// part, and its body is doomed either way, so don't buffer it
		if len(files) >= d.limits.MaxFilesPerUpload {
			return nil, domain.ErrTooManyFiles
		}

		data, err := d.readPartBody(part)
		if err != nil {
			return nil, err
		}

		files = append(files, domain.FileDescriptor{
			Data:      data,
			Filename:  fields.Filename,
			Extension: fields.Extension,
			Mime:      fields.Mime,
		})
	}

	if len(files) == 0 {
		return nil, domain.ErrNoInput
	}

	return files, nil
}

// readPartBody accumulates one part's bytes, failing the whole request
// once the per-file limit is exceeded.
func (d *Decoder) readPartBody(part io.Reader) ([]byte, error) {
	var buf bytes.Buffer

	n, err := io.Copy(&buf, io.LimitReader(part, d.limits.MaxFilesize+1))
	if err != nil {
		level.Error(d.logger).Log("msg", "can't read part body", "err", err)
		return nil, domain.ErrInternal
	}
	if n > d.limits.MaxFilesize {
		return nil, domain.ErrPayloadTooLarge
	}

	return buf.Bytes(), nil
}
