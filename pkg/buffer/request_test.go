package buffer

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewRequestBuffersRawBody(t *testing.T) {
	body := `{"name":"alice"}`
	r := httptest.NewRequest("POST", "/users", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	req, err := NewRequest(r, "utf-8")
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}

	if got := string(req.Body()); got != body {
		t.Errorf("Expected buffered body %q, got %q", body, got)
	}
	if got := req.BodyString(); got != body {
		t.Errorf("Expected body string %q, got %q", body, got)
	}

	// The wrapped request body must still be readable by a downstream
	// consumer.
	first, err := io.ReadAll(req.Request.Body)
	if err != nil {
		t.Fatalf("Failed to read restored body: %v", err)
	}
	if string(first) != body {
		t.Errorf("Expected restored body %q, got %q", body, string(first))
	}
}

func TestNewRequestEmptyBody(t *testing.T) {
	r := httptest.NewRequest("GET", "/users", nil)

	req, err := NewRequest(r, "utf-8")
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}
	if len(req.Body()) != 0 {
		t.Errorf("Expected empty buffered body, got %q", string(req.Body()))
	}
	if req.BodyString() != "" {
		t.Errorf("Expected empty body string, got %q", req.BodyString())
	}
}

func TestNewRequestParsesForm(t *testing.T) {
	form := "user_name=alice&age=30"
	r := httptest.NewRequest("POST", "/users", strings.NewReader(form))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	req, err := NewRequest(r, "utf-8")
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}

	if got := string(req.Body()); got != form {
		t.Errorf("Expected buffered body %q, got %q", form, got)
	}
	params := req.Params()
	if got := params.Get("user_name"); got != "alice" {
		t.Errorf("Expected user_name=alice, got %q", got)
	}
	if got := params.Get("age"); got != "30" {
		t.Errorf("Expected age=30, got %q", got)
	}

	// The body must still be readable after form parsing.
	rest, err := io.ReadAll(req.Request.Body)
	if err != nil {
		t.Fatalf("Failed to read restored body: %v", err)
	}
	if string(rest) != form {
		t.Errorf("Expected restored body %q, got %q", form, string(rest))
	}
}

func TestNewRequestParsesMultipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("description", "profile picture"); err != nil {
		t.Fatalf("Failed to write field: %v", err)
	}
	fw, err := mw.CreateFormFile("file", "avatar.png")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := fw.Write([]byte{0x89, 0x50, 0x4e, 0x47}); err != nil {
		t.Fatalf("Failed to write file content: %v", err)
	}
	mw.Close()

	r := httptest.NewRequest("POST", "/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	req, err := NewRequest(r, "utf-8")
	if err != nil {
		t.Fatalf("NewRequest returned error: %v", err)
	}

	// Uploaded file content is not captured as the raw body.
	if len(req.Body()) != 0 {
		t.Errorf("Expected empty buffered body for multipart, got %d bytes", len(req.Body()))
	}
	if req.MultipartForm == nil {
		t.Fatalf("Expected multipart form to be parsed")
	}
	if got := req.Params().Get("description"); got != "profile picture" {
		t.Errorf("Expected description field, got %q", got)
	}
	files := req.MultipartForm.File["file"]
	if len(files) != 1 {
		t.Fatalf("Expected one uploaded file, got %d", len(files))
	}
	if files[0].Filename != "avatar.png" {
		t.Errorf("Expected filename avatar.png, got %q", files[0].Filename)
	}
}

func TestNewRequestMalformedMultipart(t *testing.T) {
	r := httptest.NewRequest("POST", "/upload", strings.NewReader("not multipart"))
	r.Header.Set("Content-Type", "multipart/form-data; boundary=broken")

	req, err := NewRequest(r, "utf-8")
	if err == nil {
		t.Errorf("Expected error for malformed multipart request")
	}
	// The request remains usable despite the failure.
	if req == nil {
		t.Fatalf("Expected a usable request despite the parse error")
	}
}

func TestIsMultipartAndIsWWWForm(t *testing.T) {
	tests := []struct {
		contentType string
		multipart   bool
		wwwForm     bool
	}{
		{"multipart/form-data; boundary=x", true, false},
		{"MULTIPART/mixed", true, false},
		{"application/x-www-form-urlencoded", false, true},
		{"application/x-www-form-urlencoded; charset=utf-8", false, true},
		{"application/json", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("POST", "/", nil)
		if tt.contentType != "" {
			r.Header.Set("Content-Type", tt.contentType)
		}
		if got := IsMultipart(r); got != tt.multipart {
			t.Errorf("IsMultipart(%q) = %v, want %v", tt.contentType, got, tt.multipart)
		}
		if got := IsWWWForm(r); got != tt.wwwForm {
			t.Errorf("IsWWWForm(%q) = %v, want %v", tt.contentType, got, tt.wwwForm)
		}
	}
}
