// internal/api/client.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kunalpal97/ar-indoor-nav/pkg/core"
)

// Default timeouts of the recognition service client.
const (
	DefaultConnectTimeout = 500 * time.Second
	DefaultReadTimeout    = 120 * time.Second
	DefaultWriteTimeout   = 120 * time.Second
)

// Config holds client timeouts. Zero values fall back to the defaults.
type Config struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Client handles communication with the waypoint recognition service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Response is the outcome of an upload the service answered. A non-2xx status is
// reported here, not as an error.
type Response struct {
	StatusCode int
	// Status is the reason phrase, e.g. "Internal Server Error".
	Status    string
	Message   string
	Waypoints []core.Waypoint
	// HasBody is false when a successful response carried no JSON body.
	HasBody bool
}

// Success reports a 2xx status
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type uploadBody struct {
	Message   string          `json:"message"`
	Waypoints []core.Waypoint `json:"waypoints"`
}

// New creates a new API client.
func New(baseURL string, cfg Config) *Client {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext
	transport.ResponseHeaderTimeout = cfg.WriteTimeout + cfg.ReadTimeout

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.ConnectTimeout + cfg.WriteTimeout + cfg.ReadTimeout,
		},
	}
}

// BaseURL returns the service root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Healthcheck checks if the recognition service is reachable.
func (c *Client) Healthcheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthcheck", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck returned status %d", resp.StatusCode)
	}
	return nil
}

// Upload sends one image to the recognition service as multipart field "image".
// The error is non-nil only when the request could not be made or a successful
// response could not be decoded.
func (c *Client) Upload(ctx context.Context, filePath string) (*Response, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Create multipart form
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	// Write the file part in a goroutine
	errCh := make(chan error, 1)
	go func() {
		defer pw.Close()
		defer writer.Close()

		name := filepath.Base(filePath)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(name)))
		h.Set("Content-Type", imageContentType(name))

		part, err := writer.CreatePart(h)
		if err != nil {
			errCh <- fmt.Errorf("failed to create form file: %w", err)
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			errCh <- fmt.Errorf("failed to copy file: %w", err)
			pw.CloseWithError(err)
			return
		}
		errCh <- nil
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	// The service may answer before consuming the whole body.
	pr.Close()
	writeErr := <-errCh

	out := &Response{
		StatusCode: resp.StatusCode,
		Status:     reason(resp),
	}
	if !out.Success() {
		return out, nil
	}
	if writeErr != nil {
		return nil, writeErr
	}

	var body uploadBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	out.HasBody = true
	out.Message = body.Message
	out.Waypoints = body.Waypoints
	if out.Waypoints == nil {
		out.Waypoints = []core.Waypoint{}
	}
	return out, nil
}

func reason(resp *http.Response) string {
	// resp.Status is "500 Internal Server Error"
	if _, text, ok := strings.Cut(resp.Status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

func imageContentType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/*"
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
