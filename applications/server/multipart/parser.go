package multipart

import (
	"net/textproto"
	"strings"

	"github.com/mpetrov/filedrop/applications/server/domain"
)

// fileFieldName is the only multipart field accepted by the upload
// endpoint. Any other disposition name is a protocol violation.
const fileFieldName = "files[]"

// partFields is the structured view of one part's headers.
type partFields struct {
	FieldName string
	Filename  string
	Extension string
	Mime      string
}

// parsePartHeader extracts the disposition field name, filename, derived
// extension and MIME type from a part's headers. A field name other than
// fileFieldName fails with domain.ErrBadField, which aborts the whole
// request rather than the single part.
func parsePartHeader(h textproto.MIMEHeader) (partFields, error) {
	params := parseHeaderParams(h.Get("Content-Disposition"))

	fields := partFields{
		FieldName: params["name"],
		Filename:  params["filename"],
		Mime:      h.Get("Content-Type"),
	}
	if fields.FieldName != fileFieldName {
		return partFields{}, domain.ErrBadField
	}

	fields.Extension = extensionOf(fields.Filename)

	return fields, nil
}

// extensionOf returns the lower-cased suffix after the last dot, or ""
// when the filename has no dot or an empty suffix.
func extensionOf(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 || i == len(filename)-1 {
		return ""
	}

	return strings.ToLower(filename[i+1:])
}

// boundaryFrom extracts the boundary token, quoted or bare, from a
// request Content-Type. The media type must be multipart/form-data.
func boundaryFrom(contentType string) (string, bool) {
	mediaType, rest := nextSegment(contentType)
	if !strings.EqualFold(strings.TrimSpace(mediaType), "multipart/form-data") {
		return "", false
	}

	boundary := parseHeaderParams(rest)["boundary"]
	if boundary == "" {
		return "", false
	}

	return boundary, true
}

// parseHeaderParams tokenizes a header value on ';' into key=value pairs.
// Values may be quoted; quoting protects ';' and escaped quotes. Bare
// tokens without '=' (such as the leading "form-data") are skipped.
func parseHeaderParams(v string) map[string]string {
	params := map[string]string{}

	rest := v
	for rest != "" {
		var seg string
		seg, rest = nextSegment(rest)

		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}

		eq := strings.IndexByte(seg, '=')
		if eq < 0 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(seg[:eq]))
		params[key] = unquote(strings.TrimSpace(seg[eq+1:]))
	}

	return params
}

// nextSegment cuts the input at the first ';' that is outside double
// quotes, returning the segment and the remainder.
func nextSegment(s string) (string, string) {
	var inQuotes, escaped bool
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case inQuotes && s[i] == '\\':
			escaped = true
		case s[i] == '"':
			inQuotes = !inQuotes
		case s[i] == ';' && !inQuotes:
			return s[:i], s[i+1:]
		}
	}

	return s, ""
}

// unquote strips surrounding double quotes and resolves backslash
// escapes. Unquoted input is returned as is.
func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' {
		return s
	}

	var b strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			}
		case '"':
			return b.String()
		default:
			b.WriteByte(s[i])
		}
	}

	return b.String()
}
