// internal/api/client_test.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

func TestNew(t *testing.T) {
	c := New("http://localhost:5000", Config{})

	if c == nil {
		t.Fatal("New returned nil")
	}
	if c.baseURL != "http://localhost:5000" {
		t.Errorf("expected baseURL=http://localhost:5000, got %s", c.baseURL)
	}
	if c.httpClient == nil {
		t.Error("httpClient is nil")
	}
	want := DefaultConnectTimeout + DefaultReadTimeout + DefaultWriteTimeout
	if c.httpClient.Timeout != want {
		t.Errorf("expected timeout %v, got %v", want, c.httpClient.Timeout)
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:5000/", Config{})
	if c.BaseURL() != "http://localhost:5000" {
		t.Errorf("expected trailing slash trimmed, got %s", c.BaseURL())
	}
}

func TestHealthcheck_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthcheck" {
			t.Errorf("expected path /healthcheck, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(server.URL, Config{})
	if err := c.Healthcheck(context.Background()); err != nil {
		t.Errorf("Healthcheck failed: %v", err)
	}
}

func TestHealthcheck_ServerDown(t *testing.T) {
	c := New("http://localhost:59999", Config{ConnectTimeout: time.Second}) // unlikely to be listening
	if err := c.Healthcheck(context.Background()); err == nil {
		t.Error("expected error for unreachable server")
	}
}

func TestHealthcheck_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL, Config{})
	if err := c.Healthcheck(context.Background()); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestUpload_Success(t *testing.T) {
	var receivedFilename, receivedContentType string
	var receivedFileContent []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload" {
			t.Errorf("expected path /upload, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("failed to get file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		receivedFilename = header.Filename
		receivedContentType = header.Header.Get("Content-Type")
		receivedFileContent, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"message": "ok",
			"waypoints": []map[string]any{
				{"waypoint_id": 1, "x": 0.5, "y": 0, "z": -1},
				{"waypoint_id": 2, "x": 1.5, "y": 0, "z": -2},
			},
		})
	}))
	defer server.Close()

	testFile := filepath.Join(t.TempDir(), "hallway.jpg")
	writeTestFile(t, testFile, []byte("jpeg bytes"))

	c := New(server.URL, Config{})
	resp, err := c.Upload(context.Background(), testFile)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if !resp.Success() || !resp.HasBody {
		t.Fatalf("expected successful response with body, got %+v", resp)
	}
	if resp.Message != "ok" {
		t.Errorf("expected message=ok, got %s", resp.Message)
	}
	want := []core.Waypoint{{ID: 1, X: 0.5, Y: 0, Z: -1}, {ID: 2, X: 1.5, Y: 0, Z: -2}}
	if diff := cmp.Diff(want, resp.Waypoints); diff != "" {
		t.Errorf("waypoints mismatch (-want +got):\n%s", diff)
	}
	if receivedFilename != "hallway.jpg" {
		t.Errorf("expected filename=hallway.jpg, got %s", receivedFilename)
	}
	if receivedContentType != "image/jpeg" {
		t.Errorf("expected content type image/jpeg, got %s", receivedContentType)
	}
	if string(receivedFileContent) != "jpeg bytes" {
		t.Errorf("expected file content 'jpeg bytes', got '%s'", string(receivedFileContent))
	}
}

func TestUpload_EmptySuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(10 << 20)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	testFile := filepath.Join(t.TempDir(), "img.png")
	writeTestFile(t, testFile, []byte("png"))

	resp, err := New(server.URL, Config{}).Upload(context.Background(), testFile)
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if resp.HasBody {
		t.Error("expected no body")
	}
	if resp.Waypoints != nil {
		t.Errorf("expected nil waypoints, got %v", resp.Waypoints)
	}
}

func TestUpload_MalformedSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(10 << 20)
		w.Write([]byte(`{"waypoints": "not a list"}`))
	}))
	defer server.Close()

	testFile := filepath.Join(t.TempDir(), "img.png")
	writeTestFile(t, testFile, []byte("png"))

	_, err := New(server.URL, Config{}).Upload(context.Background(), testFile)
	if err == nil {
		t.Error("expected decode error")
	}
}

func TestUpload_FileNotFound(t *testing.T) {
	c := New("http://localhost:5000", Config{})
	_, err := c.Upload(context.Background(), "/nonexistent/image.jpg")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestUpload_ServerErrorIsResponseMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(10 << 20)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	testFile := filepath.Join(t.TempDir(), "img.jpg")
	writeTestFile(t, testFile, []byte("content"))

	resp, err := New(server.URL, Config{}).Upload(context.Background(), testFile)
	if err != nil {
		t.Fatalf("expected no error for 500 response, got %v", err)
	}
	if resp.Success() {
		t.Error("expected unsuccessful response")
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
	if resp.Status != "Internal Server Error" {
		t.Errorf("expected reason phrase, got %q", resp.Status)
	}
}

func TestUpload_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	testFile := filepath.Join(t.TempDir(), "img.jpg")
	writeTestFile(t, testFile, []byte("content"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(server.URL, Config{}).Upload(ctx, testFile)
	if err == nil {
		t.Error("expected error for cancelled request")
	}
}

func TestImageContentType(t *testing.T) {
	if got := imageContentType("a.png"); got != "image/png" {
		t.Errorf("expected image/png, got %s", got)
	}
	if got := imageContentType("a.bin"); got != "image/*" {
		t.Errorf("expected image/*, got %s", got)
	}
}

func writeTestFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
}
