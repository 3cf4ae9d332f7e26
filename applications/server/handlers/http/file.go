package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"

	"github.com/mpetrov/filedrop/applications/server"
	"github.com/mpetrov/filedrop/applications/server/domain"
)

func NewRouter(svc server.UploadService, logger log.Logger) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/files", PostFilesHandler(svc, logger)).Methods(http.MethodPost)
	return r
}

type successResponse struct {
	Success bool               `json:"success"`
	Files   domain.BatchResult `json:"files"`
}

type failureResponse struct {
	Success     bool   `json:"success"`
	ErrorCode   int    `json:"errorcode"`
	Description string `json:"description"`
}

// PostFilesHandler ingests a multipart batch upload and writes exactly
// one terminal JSON response: 200 with the outcome array, or a failure
// body whose status equals its errorcode.
func PostFilesHandler(svc server.UploadService, logger log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upload := domain.Upload{
			ContentLength: r.ContentLength,
			ContentType:   r.Header.Get("Content-Type"),
			Body:          r.Body,
		}

		result, err := svc.Upload(r.Context(), upload)
		if err != nil {
			level.Error(logger).Log("msg", "upload rejected",
				"err", err,
			)
			writeFailure(w, logger, toDomainError(err))
			return
		}

		// one outcome per accepted file is guaranteed by the upload
		// service; an empty batch here is a broken invariant
		if len(result) == 0 {
			level.Error(logger).Log("msg", "empty batch result for accepted upload")
			writeFailure(w, logger, domain.ErrInternal)
			return
		}

		// a single file whose upload failed fails the whole request;
		// with more files per-file failures ride along in the array
		if outcome, ok := result.SoleFailure(); ok {
			writeFailure(w, logger, &domain.Error{
				Code:        outcome.ErrorCode,
				Description: outcome.Description,
			})
			return
		}

		writeJSON(w, logger, http.StatusOK, successResponse{
			Success: true,
			Files:   result,
		})
	}
}

func toDomainError(err error) *domain.Error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr
	}

	return domain.ErrInternal
}

func writeFailure(w http.ResponseWriter, logger log.Logger, derr *domain.Error) {
	writeJSON(w, logger, derr.Code, failureResponse{
		Success:     false,
		ErrorCode:   derr.Code,
		Description: derr.Description,
	})
}

func writeJSON(w http.ResponseWriter, logger log.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		level.Error(logger).Log("msg", "can't write response", "err", err)
	}
}
