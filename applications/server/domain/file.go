package domain

import "encoding/json"

// FileDescriptor is one uploaded file extracted from a multipart request.
// The decoder mutates it while the part is being read; once the part ends
// it is handed to the upload service and must not change.
type FileDescriptor struct {
	Data      []byte
	Filename  string
	Extension string
	Mime      string
}

// Size returns the byte length of the file body.
func (f FileDescriptor) Size() int64 {
	return int64(len(f.Data))
}

// UploadOutcome is the per-file result of a batch upload: either a stored
// file (hash, name, key, size) or a per-file failure.
type UploadOutcome struct {
	Failed      bool
	Hash        string
	Name        string
	Key         string
	Size        int64
	ErrorCode   int
	Description string
}

type successOutcome struct {
	Hash string `json:"hash"`
	Name string `json:"name"`
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

type failureOutcome struct {
	Error       bool   `json:"error"`
	Name        string `json:"name"`
	ErrorCode   int    `json:"errorcode"`
	Description string `json:"description"`
}

func (o UploadOutcome) MarshalJSON() ([]byte, error) {
	if o.Failed {
		return json.Marshal(failureOutcome{
			Error:       true,
			Name:        o.Name,
			ErrorCode:   o.ErrorCode,
			Description: o.Description,
		})
	}

	return json.Marshal(successOutcome{
		Hash: o.Hash,
		Name: o.Name,
		Key:  o.Key,
		Size: o.Size,
	})
}

// BatchResult holds one outcome per input file. Outcomes are appended in
// completion order, which may differ from input order; callers must not
// rely on positional correspondence with the submitted files.
type BatchResult []UploadOutcome

// SoleFailure reports whether the batch consists of exactly one outcome
// and that outcome failed. Such a batch is reported as a whole-request
// failure instead of a 200 with an embedded error.
func (b BatchResult) SoleFailure() (UploadOutcome, bool) {
	if len(b) == 1 && b[0].Failed {
		return b[0], true
	}

	return UploadOutcome{}, false
}
