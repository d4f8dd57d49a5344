// Package buffer provides request and response decorators that capture the
// body bytes in memory so they can be consumed more than once during a
// single request/response lifecycle. Once filled, a buffer is never
// modified for the remainder of the lifecycle.
package buffer

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// defaultMultipartMemory is the in-memory threshold handed to
// ParseMultipartForm; larger parts spill to temporary files.
const defaultMultipartMemory = 32 << 20

// Request wraps an *http.Request after reading its body into an immutable
// byte slice. The wrapped request's Body is replaced with a fresh reader
// over the buffer, so downstream handlers can read it as usual, and the
// buffered bytes remain available through Body and BodyString.
type Request struct {
	*http.Request

	body           []byte
	defaultCharset string
}

// NewRequest buffers the body of r and returns the wrapping Request.
//
// The buffering is content-type aware:
//   - multipart/* requests are parsed into parts and parameters; the raw
//     body (uploaded file content) is not captured.
//   - application/x-www-form-urlencoded requests have both the raw body
//     captured and the parameters parsed.
//   - all other requests have the raw body captured.
//
// defaultCharset names the charset used to decode the body when the
// request declares none (or an unknown one). A multipart parse failure is
// reported through the returned error, but the Request is still usable;
// callers that want the original permissive behavior log the error and
// continue.
func NewRequest(r *http.Request, defaultCharset string) (*Request, error) {
	req := &Request{
		Request:        r,
		defaultCharset: defaultCharset,
	}
	switch {
	case IsMultipart(r):
		if err := r.ParseMultipartForm(defaultMultipartMemory); err != nil {
			return req, fmt.Errorf("parse multipart request: %w", err)
		}
	case IsWWWForm(r):
		body, err := readAndRestore(r)
		if err != nil {
			return req, err
		}
		req.body = body
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("parse form request: %w", err)
		}
		// ParseForm consumed the body; restore it once more.
		r.Body = io.NopCloser(bytes.NewReader(body))
	default:
		body, err := readAndRestore(r)
		if err != nil {
			return req, err
		}
		req.body = body
	}
	return req, nil
}

// readAndRestore drains r.Body and replaces it with a reader over the
// drained bytes.
func readAndRestore(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// Body returns the buffered body bytes. The slice must not be modified.
func (req *Request) Body() []byte {
	return req.body
}

// BodyString decodes the buffered body into a string, using the charset
// declared by the request's Content-Type header and falling back to the
// configured default charset when none is declared or the declared one is
// unknown.
func (req *Request) BodyString() string {
	charset := CharsetOf(req.Header.Get("Content-Type"))
	return DecodeString(req.body, charset, req.defaultCharset)
}

// Params returns the request parameters parsed during buffering. For
// requests that carry no form payload this is the parsed query string.
func (req *Request) Params() url.Values {
	if req.Form != nil {
		return req.Form
	}
	return req.URL.Query()
}

// IsMultipart reports whether the request carries a multipart body.
func IsMultipart(r *http.Request) bool {
	return hasContentTypePrefix(r, "multipart/")
}

// IsWWWForm reports whether the request carries a URL-encoded form body.
func IsWWWForm(r *http.Request) bool {
	return hasContentTypePrefix(r, "application/x-www-form-urlencoded")
}

func hasContentTypePrefix(r *http.Request, prefix string) bool {
	ct := r.Header.Get("Content-Type")
	return len(ct) >= len(prefix) && strings.EqualFold(ct[:len(prefix)], prefix)
}
