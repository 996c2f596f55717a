// Package httpapi exposes a running session over HTTP for debugging and remote
// control.
package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/kunalpal97/ar-indoor-nav/internal/session"
)

// maxUploadBytes caps the multipart body accepted by POST /upload.
const maxUploadBytes = 32 << 20

// Server serves one session.
type Server struct {
	sess      *session.Session
	uploadDir string
	logger    *slog.Logger
}

// NewServer creates a Server. Uploaded images are staged under uploadDir, or the
// OS temp dir when empty.
func NewServer(sess *session.Session, uploadDir string, logger *slog.Logger) *Server {
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{sess: sess, uploadDir: uploadDir, logger: logger}
}

// NewRouter builds the route table.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods("GET")
	r.HandleFunc("/status", s.handleStatus).Methods("GET")
	r.HandleFunc("/markers", s.handleMarkers).Methods("GET")
	r.HandleFunc("/markers/{seq:[0-9]+}", s.handleMarker).Methods("GET")
	r.HandleFunc("/scene", s.handleScene).Methods("GET")
	r.HandleFunc("/touch", s.handleTouch).Methods("POST")
	r.HandleFunc("/waypoints", s.handleWaypoints).Methods("GET")
	r.HandleFunc("/upload", s.handleUpload).Methods("POST")
	r.HandleFunc("/events", s.handleEvents).Methods("GET")
	r.Use(s.logRequests)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
