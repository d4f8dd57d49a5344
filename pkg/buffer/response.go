package buffer

import (
	"bytes"
	"net/http"
)

// ResponseRecorder wraps an http.ResponseWriter, passing every write
// through to the client while keeping a copy in an internal buffer. The
// captured status code and body remain available after the handler
// returns.
type ResponseRecorder struct {
	http.ResponseWriter

	statusCode     int
	buf            bytes.Buffer
	defaultCharset string
}

// NewResponseRecorder creates a recorder over w. defaultCharset names the
// charset used by BodyString when the response declares none.
func NewResponseRecorder(w http.ResponseWriter, defaultCharset string) *ResponseRecorder {
	return &ResponseRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		defaultCharset: defaultCharset,
	}
}

// WriteHeader captures the status code and calls the underlying
// ResponseWriter.WriteHeader
func (rw *ResponseRecorder) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Write copies b into the capture buffer and forwards it to the underlying
// ResponseWriter.
func (rw *ResponseRecorder) Write(b []byte) (int, error) {
	rw.buf.Write(b)
	return rw.ResponseWriter.Write(b)
}

// Flush calls the underlying ResponseWriter.Flush if it implements http.Flusher
func (rw *ResponseRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Status returns the captured status code. It defaults to 200 OK when the
// handler never called WriteHeader.
func (rw *ResponseRecorder) Status() int {
	return rw.statusCode
}

// Body returns the captured body bytes. The slice must not be modified.
func (rw *ResponseRecorder) Body() []byte {
	return rw.buf.Bytes()
}

// BodyString decodes the captured body into a string using the charset
// declared by the response's Content-Type header, falling back to the
// configured default charset.
func (rw *ResponseRecorder) BodyString() string {
	charset := CharsetOf(rw.Header().Get("Content-Type"))
	return DecodeString(rw.buf.Bytes(), charset, rw.defaultCharset)
}

// IsFileDownload reports whether the captured response is a file download,
// identified by a Content-Disposition attachment header.
func (rw *ResponseRecorder) IsFileDownload() bool {
	return IsAttachment(rw.Header().Get("Content-Disposition"))
}

// IsBinary reports whether the captured response carries non-textual
// content.
func (rw *ResponseRecorder) IsBinary() bool {
	ct := rw.Header().Get("Content-Type")
	if ct == "" {
		return true
	}
	return !IsTextContent(ct)
}
