package domain

import "io"

// Upload is an inbound upload request: the declared transport headers
// plus the raw multipart body stream.
type Upload struct {
	ContentLength int64
	ContentType   string
	Body          io.Reader
}
