package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/kunalpal97/ar-indoor-nav/internal/notify"
	"github.com/kunalpal97/ar-indoor-nav/internal/waypoint"
	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// TouchRequest is the body of POST /touch. Action defaults to "down".
type TouchRequest struct {
	Action string  `json:"action"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// ErrorResponse is returned for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Text  string `json:"text,omitempty"`
}

// UploadResponse is the body of POST /upload.
type UploadResponse struct {
	StatusCode int             `json:"statusCode,omitempty"`
	Message    string          `json:"message,omitempty"`
	Waypoints  []core.Waypoint `json:"waypoints"`
	Stored     bool            `json:"stored"`
	Text       string          `json:"text"`
	Error      string          `json:"error,omitempty"`
}

// EventResponse is one notification in GET /events.
type EventResponse struct {
	Kind      string    `json:"kind"`
	Time      time.Time `json:"time"`
	Text      string    `json:"text"`
	Seq       *int      `json:"seq,omitempty"`
	ErrorKind string    `json:"errorKind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error(), Kind: core.ErrorKind(err)})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Status())
}

func (s *Server) handleMarkers(w http.ResponseWriter, r *http.Request) {
	markers, err := s.sess.Markers()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, markers)
}

func (s *Server) handleMarker(w http.ResponseWriter, r *http.Request) {
	seq, err := strconv.Atoi(mux.Vars(r)["seq"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	markers, err := s.sess.Markers()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if seq >= len(markers) {
		writeError(w, http.StatusNotFound, fmt.Errorf("marker %d not found", seq))
		return
	}
	writeJSON(w, http.StatusOK, markers[seq])
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	lines, err := s.sess.Scene()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

// handleTouch queues the touch and answers 202. With ?wait=true a down touch is
// placed synchronously and the new marker is returned.
func (s *Server) handleTouch(w http.ResponseWriter, r *http.Request) {
	var req TouchRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid touch body: %w", err))
			return
		}
	}
	if req.Action == "" {
		req.Action = "down"
	}
	action, ok := core.ParseTouchAction(req.Action)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown touch action %q", req.Action))
		return
	}
	ev := core.TouchEvent{Action: action, X: req.X, Y: req.Y, Time: time.Now()}

	if r.URL.Query().Get("wait") != "true" {
		if err := s.sess.Touch(ev); err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if action != core.TouchDown {
		writeError(w, http.StatusBadRequest, fmt.Errorf("only down touches place markers"))
		return
	}
	rec, err := s.sess.Place(ev)
	if err != nil {
		text := notify.Event{Kind: notify.PlacementFailed, Err: err}.Text()
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Kind: core.ErrorKind(err), Text: text})
		return
	}
	writeJSON(w, http.StatusCreated, rec.Snapshot())
}

func (s *Server) handleWaypoints(w http.ResponseWriter, r *http.Request) {
	wps := s.sess.Waypoints().Get()
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, waypoint.Format(wps))
		return
	}
	writeJSON(w, http.StatusOK, wps)
}

// handleUpload stages the multipart "image" file under its base name and runs the
// upload flow against it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing image: %w", err))
		return
	}
	defer file.Close()

	dir, err := os.MkdirTemp(s.uploadDir, "upload-*")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer os.RemoveAll(dir)

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) {
		name = "image.jpg"
	}
	path := filepath.Join(dir, name)
	if err := saveFile(path, file); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	res := s.sess.Upload(r.Context(), path)
	out := UploadResponse{Waypoints: s.sess.Waypoints().Get(), Stored: res.Stored}
	ev := notify.Event{Kind: notify.UploadSucceeded, Err: res.Err}
	status := http.StatusOK
	switch {
	case res.Err != nil:
		ev.Kind = notify.UploadFailed
		out.Error = res.Err.Error()
		status = http.StatusBadGateway
	case !res.Response.Success():
		ev.Kind = notify.UploadFailed
		ev.StatusCode = res.Response.StatusCode
		ev.Message = res.Response.Status
		out.StatusCode = res.Response.StatusCode
		out.Message = res.Response.Status
		status = http.StatusBadGateway
	default:
		out.StatusCode = res.Response.StatusCode
		out.Message = res.Response.Message
	}
	out.Text = ev.Text()
	writeJSON(w, status, out)
}

func saveFile(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events := s.sess.Notifications().Events()
	out := make([]EventResponse, len(events))
	for i, e := range events {
		out[i] = EventResponse{
			Kind:      e.Kind.String(),
			Time:      e.Time,
			Text:      e.Text(),
			ErrorKind: core.ErrorKind(e.Err),
		}
		if e.Record != nil {
			seq := e.Record.Seq
			out[i].Seq = &seq
		}
	}
	writeJSON(w, http.StatusOK, out)
}
