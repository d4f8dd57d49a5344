package buffer

import (
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// CharsetOf extracts the charset parameter from a Content-Type header
// value. It returns an empty string when the header declares none.
func CharsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// DecodeString converts raw body bytes into a UTF-8 string using the named
// charset. An empty or unknown charset name falls back to the given
// default; an empty or unknown default decodes as UTF-8.
func DecodeString(raw []byte, charset, defaultCharset string) string {
	if len(raw) == 0 {
		return ""
	}
	if s, ok := decode(raw, charset); ok {
		return s
	}
	if s, ok := decode(raw, defaultCharset); ok {
		return s
	}
	return string(raw)
}

func decode(raw []byte, charset string) (string, bool) {
	if charset == "" {
		return "", false
	}
	if isUTF8Name(charset) {
		return string(raw), true
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", false
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}

func isUTF8Name(name string) bool {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return true
	}
	return false
}

// IsTextContent reports whether a Content-Type value denotes textual
// content whose bytes are meaningful in a log line.
func IsTextContent(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	mediaType = strings.ToLower(mediaType)
	if strings.HasPrefix(mediaType, "text/") {
		return true
	}
	switch mediaType {
	case "application/json", "application/xml", "application/xhtml+xml",
		"application/x-www-form-urlencoded", "application/javascript":
		return true
	}
	return strings.HasSuffix(mediaType, "+json") || strings.HasSuffix(mediaType, "+xml")
}

// IsAttachment reports whether a Content-Disposition header value denotes
// a file download.
func IsAttachment(disposition string) bool {
	if disposition == "" {
		return false
	}
	dtype, _, err := mime.ParseMediaType(disposition)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(disposition), "attachment")
	}
	return strings.EqualFold(dtype, "attachment")
}
